package status

import "strings"

// Kind define el dominio de estados al que pertenece un código.
// Los vocabularios de kit y consulta son independientes: el mismo string
// (ej. "confirmed") puede renderizar distinto según el Kind.
type Kind string

const (
	KindKit          Kind = "kit"
	KindConsultation Kind = "consultation"
)

// Code es un código de estado ya normalizado (lowercase).
type Code string

// Vocabulario de pedidos de kit.
const (
	KitInReview       Code = "in_review"
	KitConfirmed      Code = "confirmed"
	KitAccepted       Code = "accepted"
	KitShipping       Code = "shipping"
	KitProcessing     Code = "processing"
	KitShipped        Code = "shipped"
	KitOutForDelivery Code = "out_for_delivery"
	KitReturning      Code = "returning"
	KitReceived       Code = "received"
	KitCompleted      Code = "completed"
	KitDelivered      Code = "delivered"
	KitCancelled      Code = "cancelled"
	KitRejected       Code = "rejected"
)

// Vocabulario de consultas.
const (
	ConsultInReview     Code = "in_review"
	ConsultPending      Code = "pending"
	ConsultConfirmed    Code = "confirmed"
	ConsultAccepted     Code = "accepted"
	ConsultAssigned     Code = "assigned"
	ConsultCoordinating Code = "coordinating"
	ConsultInProgress   Code = "in_progress"
	ConsultReminderSent Code = "reminder_sent"
	ConsultFinished     Code = "finished"
	ConsultCompleted    Code = "completed"
	ConsultCancelled    Code = "cancelled"
	ConsultRejected     Code = "rejected"
)

// Icon identifica el ícono que la UI debe renderizar para un estado.
type Icon string

const (
	IconClock         Icon = "clock"
	IconCheckCircle   Icon = "check_circle"
	IconPackage       Icon = "package"
	IconTruck         Icon = "truck"
	IconHome          Icon = "home"
	IconRotateCcw     Icon = "rotate_ccw"
	IconInbox         Icon = "inbox"
	IconXCircle       Icon = "x_circle"
	IconUserCheck     Icon = "user_check"
	IconMessageCircle Icon = "message_circle"
	IconActivity      Icon = "activity"
	IconBell          Icon = "bell"
)

// Display es el bundle de presentación de un estado.
// Se deriva de forma determinista de (Kind, código); nunca de estado mutable.
type Display struct {
	Icon        Icon   `json:"icon"`
	Color       string `json:"color"`
	Background  string `json:"background"`
	Border      string `json:"border"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// tone agrupa los tres tokens de color que comparte cada paleta.
type tone struct {
	color      string
	background string
	border     string
}

var (
	toneAmber  = tone{"text-amber-600", "bg-amber-50", "border-amber-200"}
	toneBlue   = tone{"text-blue-600", "bg-blue-50", "border-blue-200"}
	toneIndigo = tone{"text-indigo-600", "bg-indigo-50", "border-indigo-200"}
	tonePurple = tone{"text-purple-600", "bg-purple-50", "border-purple-200"}
	toneViolet = tone{"text-violet-600", "bg-violet-50", "border-violet-200"}
	toneOrange = tone{"text-orange-600", "bg-orange-50", "border-orange-200"}
	toneTeal   = tone{"text-teal-600", "bg-teal-50", "border-teal-200"}
	toneGreen  = tone{"text-green-600", "bg-green-50", "border-green-200"}
	toneRed    = tone{"text-red-600", "bg-red-50", "border-red-200"}
	toneGray   = tone{"text-gray-500", "bg-gray-50", "border-gray-200"}
)

type entry struct {
	icon        Icon
	tone        tone
	label       string
	description string
}

// Tablas fijas por Kind. Lookup puro, sin branching por llamada.
var kitTable = map[Code]entry{
	KitInReview:       {IconClock, toneAmber, "In Review", "Your kit order is being reviewed by our care team."},
	KitConfirmed:      {IconCheckCircle, toneBlue, "Confirmed", "Your kit order has been confirmed."},
	KitAccepted:       {IconCheckCircle, toneBlue, "Accepted", "Your kit order was accepted and is being prepared."},
	KitShipping:       {IconPackage, toneIndigo, "Preparing Shipment", "Your kit is being packed for shipment."},
	KitProcessing:     {IconPackage, toneIndigo, "Processing", "Your kit order is being processed."},
	KitShipped:        {IconTruck, tonePurple, "Shipped", "Your kit is on its way."},
	KitOutForDelivery: {IconTruck, toneViolet, "Out for Delivery", "The courier is delivering your kit today."},
	KitReturning:      {IconRotateCcw, toneOrange, "Kit Returning", "Your sample kit is on its way back to the lab."},
	KitReceived:       {IconInbox, toneTeal, "Kit Received", "The lab has received your sample kit."},
	KitCompleted:      {IconCheckCircle, toneGreen, "Completed", "Your order is complete and your results are available."},
	KitDelivered:      {IconHome, toneGreen, "Delivered", "Your kit was delivered."},
	KitCancelled:      {IconXCircle, toneGray, "Cancelled", "This order was cancelled."},
	KitRejected:       {IconXCircle, toneRed, "Rejected", "This order could not be processed."},
}

var consultationTable = map[Code]entry{
	ConsultInReview:     {IconClock, toneAmber, "In Review", "Your consultation request is being reviewed."},
	ConsultPending:      {IconClock, toneAmber, "Pending", "Waiting for an available clinician."},
	ConsultConfirmed:    {IconCheckCircle, toneBlue, "Confirmed", "Your consultation schedule is confirmed."},
	ConsultAccepted:     {IconCheckCircle, toneBlue, "Accepted", "Your consultation request was accepted."},
	ConsultAssigned:     {IconUserCheck, toneIndigo, "Clinician Assigned", "A clinician has been assigned to your consultation."},
	ConsultCoordinating: {IconMessageCircle, tonePurple, "Coordinating", "We are coordinating the schedule with you."},
	ConsultInProgress:   {IconActivity, toneViolet, "In Progress", "Your consultation is in progress."},
	ConsultReminderSent: {IconBell, toneTeal, "Reminder Sent", "A reminder for your consultation was sent."},
	ConsultFinished:     {IconCheckCircle, toneGreen, "Finished", "Your consultation has finished."},
	ConsultCompleted:    {IconCheckCircle, toneGreen, "Completed", "Your consultation is complete."},
	ConsultCancelled:    {IconXCircle, toneGray, "Cancelled", "This consultation was cancelled."},
	ConsultRejected:     {IconXCircle, toneRed, "Rejected", "This request could not be accommodated."},
}

// Normalize baja a lowercase y recorta espacios. Todos los lookups pasan por acá.
func Normalize(raw string) Code {
	return Code(strings.ToLower(strings.TrimSpace(raw)))
}

// Project resuelve el Display de un estado para un Kind dado.
// Total: códigos fuera del vocabulario caen al fallback genérico (reloj, gris,
// label derivado del código crudo) en vez de fallar.
func Project(k Kind, raw string) Display {
	code := Normalize(raw)

	var e entry
	var ok bool
	switch k {
	case KindConsultation:
		e, ok = consultationTable[code]
	default:
		e, ok = kitTable[code]
	}

	if !ok {
		label := FormatStatus(raw)
		e = entry{IconClock, toneGray, label, label}
	}

	return Display{
		Icon:        e.icon,
		Color:       e.tone.color,
		Background:  e.tone.background,
		Border:      e.tone.border,
		Label:       e.label,
		Description: e.description,
	}
}

// Known indica si el código pertenece al vocabulario cerrado del Kind.
// Lo usan los updates de admin para rechazar estados inventados.
func Known(k Kind, raw string) bool {
	code := Normalize(raw)
	switch k {
	case KindConsultation:
		_, ok := consultationTable[code]
		return ok
	default:
		_, ok := kitTable[code]
		return ok
	}
}

// FormatStatus convierte un código crudo en label legible:
// "_" => espacio, primera letra de cada palabra en mayúscula.
// Se usa también standalone para badges sin ícono/color.
func FormatStatus(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}

	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
