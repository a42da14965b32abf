package consultations

import (
	"time"

	"kaupod/internal/domain/status"
)

// Mode define cómo se realiza la consulta.
// @Enum online, in_person
type Mode string

const (
	ModeOnline   Mode = "online"
	ModeInPerson Mode = "in_person"
)

// Consultation representa una solicitud de consulta médica.
type Consultation struct {
	ID     string
	UserID string

	Mode  Mode
	Topic string
	Phone string

	// PreferredAt es el horario pedido por el usuario; reschedule lo reemplaza.
	PreferredAt time.Time

	// Asignados por admin durante la coordinación
	ClinicianName string
	MeetingLink   string

	Status  status.Code
	History map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}
