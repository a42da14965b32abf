package consultations

import "context"

type Repository interface {
	Create(ctx context.Context, c Consultation) error
	Update(ctx context.Context, c Consultation) error
	GetByID(ctx context.Context, id string) (Consultation, error)
	ListByUser(ctx context.Context, userID string) ([]Consultation, error)
	ListAll(ctx context.Context) ([]Consultation, error)
}
