package consultations

import (
	"context"
	"errors"
	"strings"
	"time"

	"kaupod/internal/domain/status"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type RequestInput struct {
	Mode        string
	Topic       string
	Phone       string
	PreferredAt time.Time
}

// Request crea una consulta en in_review con el history sembrado.
func (s *Service) Request(ctx context.Context, userID string, in RequestInput) (Consultation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Consultation{}, ErrInvalidInput
	}
	if in.PreferredAt.IsZero() {
		return Consultation{}, ErrInvalidInput
	}

	mode := Mode(strings.TrimSpace(in.Mode))
	if mode == "" {
		mode = ModeOnline
	}
	if mode != ModeOnline && mode != ModeInPerson {
		return Consultation{}, ErrInvalidInput
	}

	now := s.now()

	c := Consultation{
		ID:          uuid.NewString(),
		UserID:      userID,
		Mode:        mode,
		Topic:       strings.TrimSpace(in.Topic),
		Phone:       strings.TrimSpace(in.Phone),
		PreferredAt: in.PreferredAt,
		Status:      status.ConsultInReview,
		History:     map[string]string{historyKey(now): string(status.ConsultInReview)},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Consultation{}, err
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Consultation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Consultation{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Consultation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]Consultation, error) {
	return s.repo.ListAll(ctx)
}

type UpdateStatusInput struct {
	Status string

	// Opcionales: asignación durante la coordinación. nil = no tocar.
	ClinicianName *string
	MeetingLink   *string
}

// UpdateStatus mueve la consulta dentro del vocabulario de consultas (admin)
// y permite fijar clínico/link de reunión en el mismo paso.
func (s *Service) UpdateStatus(ctx context.Context, id string, in UpdateStatusInput) (Consultation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Consultation{}, ErrInvalidInput
	}
	if !status.Known(status.KindConsultation, in.Status) {
		return Consultation{}, ErrInvalidInput
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Consultation{}, ErrNotFound
	}

	now := s.now()
	code := status.Normalize(in.Status)

	if c.Status != code {
		c.Status = code
		appendHistory(&c, now, code)
	}
	if in.ClinicianName != nil {
		c.ClinicianName = strings.TrimSpace(*in.ClinicianName)
	}
	if in.MeetingLink != nil {
		c.MeetingLink = strings.TrimSpace(*in.MeetingLink)
	}
	c.UpdatedAt = now

	if err := s.repo.Update(ctx, c); err != nil {
		return Consultation{}, err
	}
	return c, nil
}

// Reschedule lo ejecuta el dueño; legal solo en in_review/coordinating/confirmed.
// Cambia el horario pedido, no el estado: mover el estado es del admin.
func (s *Service) Reschedule(ctx context.Context, id, userID string, preferredAt time.Time) (Consultation, error) {
	id = strings.TrimSpace(id)
	userID = strings.TrimSpace(userID)
	if id == "" || userID == "" || preferredAt.IsZero() {
		return Consultation{}, ErrInvalidInput
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Consultation{}, ErrNotFound
	}
	if c.UserID != userID {
		return Consultation{}, ErrForbidden
	}

	if !status.CanTransition(status.KindConsultation, string(c.Status), status.ActionReschedule) {
		return Consultation{}, ErrBadState
	}

	c.PreferredAt = preferredAt
	c.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, c); err != nil {
		return Consultation{}, err
	}
	return c, nil
}

// Timeline proyecta el history como escalera cronológica.
func (s *Service) Timeline(c Consultation) []status.Entry {
	return status.OrderTimeline(status.KindConsultation, c.History)
}

// AllowedActions lista las acciones habilitadas para la UI.
func (s *Service) AllowedActions(c Consultation) []status.Action {
	return status.AllowedActions(status.KindConsultation, string(c.Status))
}

func appendHistory(c *Consultation, at time.Time, code status.Code) {
	if c.History == nil {
		c.History = map[string]string{}
	}
	c.History[historyKey(at)] = string(code)
}

func historyKey(t time.Time) string {
	// Nano: dos cambios en el mismo segundo no deben pisarse
	return t.UTC().Format(time.RFC3339Nano)
}
