package orders

import (
	"time"

	"kaupod/internal/domain/status"
)

// KitVariant define los kits soportados.
// @Enum standard, advanced
type KitVariant string

const (
	VariantStandard KitVariant = "standard"
	VariantAdvanced KitVariant = "advanced"
)

// PaymentMethod define los medios de pago soportados.
// @Enum gcash, cod
type PaymentMethod string

const (
	PaymentGCash PaymentMethod = "gcash"
	PaymentCOD   PaymentMethod = "cod"
)

// ReturnMethod define cómo vuelve el kit de muestra al laboratorio.
type ReturnMethod string

const (
	ReturnDropOff       ReturnMethod = "drop_off"
	ReturnCourierPickup ReturnMethod = "courier_pickup"
)

// ReturnDetails son los datos de devolución del kit de muestra.
// Solo se pueden fijar mientras el pedido está en "accepted".
type ReturnDetails struct {
	Method      ReturnMethod
	Courier     string
	TrackingRef string
	ScheduledAt *time.Time
	Notes       string
}

// KitOrder representa un pedido de kit de testeo.
// History es la bolsa timestamp => status que alimenta el timeline;
// la clave repetida pisa a la anterior (last-write-wins).
type KitOrder struct {
	ID     string
	UserID string

	KitVariant KitVariant
	Quantity   int

	Phone           string
	DeliveryAddress string
	Latitude        *float64
	Longitude       *float64
	AddressLabel    string // reverse-geocoded, best effort

	PaymentMethod PaymentMethod
	PaymentRef    string // referencia GCash; no hay integración de pasarela

	Status  status.Code
	History map[string]string

	ReturnDetails *ReturnDetails

	CreatedAt time.Time
	UpdatedAt time.Time
}
