package status

import (
	"testing"
)

var kitCodes = []Code{
	KitInReview, KitConfirmed, KitAccepted, KitShipping, KitProcessing,
	KitShipped, KitOutForDelivery, KitReturning, KitReceived,
	KitCompleted, KitDelivered, KitCancelled, KitRejected,
}

var consultationCodes = []Code{
	ConsultInReview, ConsultPending, ConsultConfirmed, ConsultAccepted,
	ConsultAssigned, ConsultCoordinating, ConsultInProgress,
	ConsultReminderSent, ConsultFinished, ConsultCompleted,
	ConsultCancelled, ConsultRejected,
}

func TestProject_TotalSobreVocabularios(t *testing.T) {
	check := func(k Kind, codes []Code) {
		for _, c := range codes {
			d := Project(k, string(c))
			if d.Label == "" || d.Description == "" {
				t.Fatalf("%s/%s: label/description vacíos: %+v", k, c, d)
			}
			if d.Icon == "" || d.Color == "" || d.Background == "" || d.Border == "" {
				t.Fatalf("%s/%s: tokens incompletos: %+v", k, c, d)
			}

			// Idempotente: misma entrada => mismo Display en llamadas repetidas
			if again := Project(k, string(c)); again != d {
				t.Fatalf("%s/%s: Project no es determinista: %+v vs %+v", k, c, d, again)
			}
		}
	}

	check(KindKit, kitCodes)
	check(KindConsultation, consultationCodes)
}

func TestProject_CaseInsensitive(t *testing.T) {
	a := Project(KindKit, "SHIPPED")
	b := Project(KindKit, "shipped")
	if a != b {
		t.Fatalf("lookup debe ser case-insensitive: %+v vs %+v", a, b)
	}
}

func TestProject_VocabulariosIndependientes(t *testing.T) {
	// "confirmed" existe en ambos Kinds pero con metadata propia
	kit := Project(KindKit, "confirmed")
	consult := Project(KindConsultation, "confirmed")
	if kit.Description == consult.Description {
		t.Fatalf("kit y consultation no deben compartir tabla: %q", kit.Description)
	}
}

func TestProject_FallbackDesconocido(t *testing.T) {
	d := Project(KindKit, "frobnicated")
	if d.Label != "Frobnicated" {
		t.Fatalf("expected label Frobnicated, got %q", d.Label)
	}
	if d.Icon != IconClock {
		t.Fatalf("fallback debe usar reloj, got %q", d.Icon)
	}
	if d.Color != "text-gray-500" {
		t.Fatalf("fallback debe ser gris, got %q", d.Color)
	}
}

func TestFormatStatus(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"in_review", "In Review"},
		{"out_for_delivery", "Out For Delivery"},
		{"REMINDER_SENT", "Reminder Sent"},
		{"frobnicated", "Frobnicated"},
		{"  shipped  ", "Shipped"},
		{"", ""},
	}
	for _, c := range cases {
		if got := FormatStatus(c.in); got != c.want {
			t.Fatalf("FormatStatus(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		kind   Kind
		status string
		action Action
		want   bool
	}{
		{KindKit, "in_review", ActionCancel, true},
		{KindKit, "IN_REVIEW", ActionCancel, true},
		{KindKit, "accepted", ActionCancel, false},
		{KindKit, "accepted", ActionSetReturnDetails, true},
		{KindKit, "in_review", ActionSetReturnDetails, false},
		{KindKit, "in_review", ActionReschedule, false},
		{KindConsultation, "in_review", ActionReschedule, true},
		{KindConsultation, "coordinating", ActionReschedule, true},
		{KindConsultation, "confirmed", ActionReschedule, true},
		{KindConsultation, "finished", ActionReschedule, false},
		{KindConsultation, "in_review", ActionCancel, false},
		{KindConsultation, "frobnicated", ActionReschedule, false},
	}

	for _, c := range cases {
		if got := CanTransition(c.kind, c.status, c.action); got != c.want {
			t.Fatalf("CanTransition(%s, %s, %s) = %v, want %v",
				c.kind, c.status, c.action, got, c.want)
		}
	}
}

func TestAllowedActions(t *testing.T) {
	if got := AllowedActions(KindKit, "in_review"); len(got) != 1 || got[0] != ActionCancel {
		t.Fatalf("in_review debe permitir solo cancel, got %v", got)
	}
	if got := AllowedActions(KindKit, "shipped"); len(got) != 0 {
		t.Fatalf("shipped no debe permitir acciones, got %v", got)
	}
	if got := AllowedActions(KindConsultation, "confirmed"); len(got) != 1 || got[0] != ActionReschedule {
		t.Fatalf("confirmed debe permitir solo reschedule, got %v", got)
	}
}
