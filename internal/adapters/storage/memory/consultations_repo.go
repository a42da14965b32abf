package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"kaupod/internal/domain/consultations"
)

type consultationRepo struct {
	mu   sync.RWMutex
	byID map[string]consultations.Consultation
}

func NewConsultationRepo() consultations.Repository {
	return &consultationRepo{
		byID: make(map[string]consultations.Consultation),
	}
}

func (r *consultationRepo) Create(ctx context.Context, c consultations.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("consultation id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("consultation already exists")
	}
	r.byID[c.ID] = cloneConsultation(c)
	return nil
}

func (r *consultationRepo) Update(ctx context.Context, c consultations.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("consultation id required")
	}
	if _, exists := r.byID[c.ID]; !exists {
		return ErrNotFound
	}
	r.byID[c.ID] = cloneConsultation(c)
	return nil
}

func (r *consultationRepo) GetByID(ctx context.Context, id string) (consultations.Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return consultations.Consultation{}, ErrNotFound
	}
	return cloneConsultation(c), nil
}

func (r *consultationRepo) ListByUser(ctx context.Context, userID string) ([]consultations.Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]consultations.Consultation, 0)
	for _, c := range r.byID {
		if c.UserID == userID {
			out = append(out, cloneConsultation(c))
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *consultationRepo) ListAll(ctx context.Context) ([]consultations.Consultation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]consultations.Consultation, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, cloneConsultation(c))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func cloneConsultation(c consultations.Consultation) consultations.Consultation {
	if c.History != nil {
		history := make(map[string]string, len(c.History))
		for k, v := range c.History {
			history[k] = v
		}
		c.History = history
	}
	return c
}
