package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"kaupod/internal/domain/orders"
)

var (
	ErrNotFound = errors.New("not found")
)

type kitOrderRepo struct {
	mu   sync.RWMutex
	byID map[string]orders.KitOrder
}

func NewKitOrderRepo() orders.Repository {
	return &kitOrderRepo{
		byID: make(map[string]orders.KitOrder),
	}
}

func (r *kitOrderRepo) Create(ctx context.Context, o orders.KitOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("order id required")
	}
	if _, exists := r.byID[o.ID]; exists {
		return errors.New("order already exists")
	}
	r.byID[o.ID] = cloneOrder(o)
	return nil
}

func (r *kitOrderRepo) Update(ctx context.Context, o orders.KitOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(o.ID) == "" {
		return errors.New("order id required")
	}
	if _, exists := r.byID[o.ID]; !exists {
		return ErrNotFound
	}
	r.byID[o.ID] = cloneOrder(o)
	return nil
}

func (r *kitOrderRepo) GetByID(ctx context.Context, id string) (orders.KitOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return orders.KitOrder{}, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *kitOrderRepo) ListByUser(ctx context.Context, userID string) ([]orders.KitOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]orders.KitOrder, 0)
	for _, o := range r.byID {
		if o.UserID == userID {
			out = append(out, cloneOrder(o))
		}
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *kitOrderRepo) ListAll(ctx context.Context) ([]orders.KitOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]orders.KitOrder, 0, len(r.byID))
	for _, o := range r.byID {
		out = append(out, cloneOrder(o))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

// cloneOrder copia el history y los detalles de devolución para que los
// callers no compartan mapas con el repo.
func cloneOrder(o orders.KitOrder) orders.KitOrder {
	if o.History != nil {
		history := make(map[string]string, len(o.History))
		for k, v := range o.History {
			history[k] = v
		}
		o.History = history
	}
	if o.ReturnDetails != nil {
		rd := *o.ReturnDetails
		o.ReturnDetails = &rd
	}
	return o
}
