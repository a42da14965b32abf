package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"kaupod/internal/domain/status"
	"kaupod/internal/platform/logger"
	"kaupod/internal/ports/geocode"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	repo     Repository
	geocoder geocode.Resolver // puede ser nil
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, geocoder geocode.Resolver, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		geocoder: geocoder,
		log:      log,
		now:      time.Now,
	}
}

type RequestInput struct {
	KitVariant      string
	Quantity        int
	Phone           string
	DeliveryAddress string
	Latitude        *float64
	Longitude       *float64
	PaymentMethod   string
	PaymentRef      string
}

// Request crea un pedido en in_review con el history sembrado.
// Si vienen coordenadas y hay geocoder, resuelve la etiqueta de dirección
// best-effort: una falla solo se loguea.
func (s *Service) Request(ctx context.Context, userID string, in RequestInput) (KitOrder, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return KitOrder{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return KitOrder{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Phone) == "" {
		return KitOrder{}, ErrInvalidInput
	}

	variant := KitVariant(strings.TrimSpace(in.KitVariant))
	if variant == "" {
		variant = VariantStandard
	}
	if variant != VariantStandard && variant != VariantAdvanced {
		return KitOrder{}, ErrInvalidInput
	}

	payment := PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if payment == "" {
		payment = PaymentCOD
	}
	if payment != PaymentGCash && payment != PaymentCOD {
		return KitOrder{}, ErrInvalidInput
	}

	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}

	now := s.now()

	o := KitOrder{
		ID:              uuid.NewString(),
		UserID:          userID,
		KitVariant:      variant,
		Quantity:        qty,
		Phone:           strings.TrimSpace(in.Phone),
		DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		PaymentMethod:   payment,
		PaymentRef:      strings.TrimSpace(in.PaymentRef),
		Status:          status.KitInReview,
		History:         map[string]string{historyKey(now): string(status.KitInReview)},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if s.geocoder != nil && in.Latitude != nil && in.Longitude != nil {
		label, err := s.geocoder.ReverseGeocode(ctx, *in.Latitude, *in.Longitude)
		if err != nil {
			s.log.Warn("reverse geocode failed", map[string]any{"order_id": o.ID, "error": err.Error()})
		} else {
			o.AddressLabel = label
		}
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return KitOrder{}, err
	}
	return o, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (KitOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return KitOrder{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]KitOrder, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]KitOrder, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus mueve el pedido a un estado del vocabulario de kit (admin).
// Estados fuera del vocabulario cerrado se rechazan; el history se extiende.
func (s *Service) UpdateStatus(ctx context.Context, id, newStatus string) (KitOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return KitOrder{}, ErrInvalidInput
	}
	if !status.Known(status.KindKit, newStatus) {
		return KitOrder{}, ErrInvalidInput
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return KitOrder{}, ErrNotFound
	}

	code := status.Normalize(newStatus)

	// Idempotente
	if o.Status == code {
		return o, nil
	}

	now := s.now()
	o.Status = code
	o.UpdatedAt = now
	appendHistory(&o, now, code)

	if err := s.repo.Update(ctx, o); err != nil {
		return KitOrder{}, err
	}
	return o, nil
}

// Cancel lo ejecuta el dueño y solo es legal en in_review.
// La misma regla que la UI consulta vía CanTransition; acá es la autoritativa.
func (s *Service) Cancel(ctx context.Context, id, userID string) (KitOrder, error) {
	o, err := s.ownedOrder(ctx, id, userID)
	if err != nil {
		return KitOrder{}, err
	}

	// Idempotente
	if o.Status == status.KitCancelled {
		return o, nil
	}

	if !status.CanTransition(status.KindKit, string(o.Status), status.ActionCancel) {
		return KitOrder{}, ErrBadState
	}

	now := s.now()
	o.Status = status.KitCancelled
	o.UpdatedAt = now
	appendHistory(&o, now, status.KitCancelled)

	if err := s.repo.Update(ctx, o); err != nil {
		return KitOrder{}, err
	}
	return o, nil
}

type ReturnDetailsInput struct {
	Method      string
	Courier     string
	TrackingRef string
	ScheduledAt *time.Time
	Notes       string
}

// SetReturnDetails fija los datos de devolución del kit de muestra (dueño).
// Solo legal mientras el pedido está en accepted.
func (s *Service) SetReturnDetails(ctx context.Context, id, userID string, in ReturnDetailsInput) (KitOrder, error) {
	o, err := s.ownedOrder(ctx, id, userID)
	if err != nil {
		return KitOrder{}, err
	}

	if !status.CanTransition(status.KindKit, string(o.Status), status.ActionSetReturnDetails) {
		return KitOrder{}, ErrBadState
	}

	method := ReturnMethod(strings.TrimSpace(in.Method))
	if method != ReturnDropOff && method != ReturnCourierPickup {
		return KitOrder{}, ErrInvalidInput
	}

	o.ReturnDetails = &ReturnDetails{
		Method:      method,
		Courier:     strings.TrimSpace(in.Courier),
		TrackingRef: strings.TrimSpace(in.TrackingRef),
		ScheduledAt: in.ScheduledAt,
		Notes:       strings.TrimSpace(in.Notes),
	}
	o.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, o); err != nil {
		return KitOrder{}, err
	}
	return o, nil
}

// Timeline proyecta el history como escalera cronológica lista para la UI.
func (s *Service) Timeline(o KitOrder) []status.Entry {
	return status.OrderTimeline(status.KindKit, o.History)
}

// AllowedActions lista las acciones que la UI puede ofrecer sobre el pedido.
func (s *Service) AllowedActions(o KitOrder) []status.Action {
	return status.AllowedActions(status.KindKit, string(o.Status))
}

func (s *Service) ownedOrder(ctx context.Context, id, userID string) (KitOrder, error) {
	id = strings.TrimSpace(id)
	userID = strings.TrimSpace(userID)
	if id == "" || userID == "" {
		return KitOrder{}, ErrInvalidInput
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return KitOrder{}, ErrNotFound
	}
	if o.UserID != userID {
		return KitOrder{}, ErrForbidden
	}
	return o, nil
}

func appendHistory(o *KitOrder, at time.Time, code status.Code) {
	if o.History == nil {
		o.History = map[string]string{}
	}
	o.History[historyKey(at)] = string(code)
}

func historyKey(t time.Time) string {
	// Nano: dos cambios en el mismo segundo no deben pisarse
	return t.UTC().Format(time.RFC3339Nano)
}
