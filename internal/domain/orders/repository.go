package orders

import "context"

type Repository interface {
	Create(ctx context.Context, o KitOrder) error
	Update(ctx context.Context, o KitOrder) error
	GetByID(ctx context.Context, id string) (KitOrder, error)
	ListByUser(ctx context.Context, userID string) ([]KitOrder, error)
	ListAll(ctx context.Context) ([]KitOrder, error)
}
