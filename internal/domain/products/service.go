package products

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
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

type CreateInput struct {
	Name        string
	Category    string
	Description string
	PriceCents  int64
	ImageURL    string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Product{}, ErrInvalidInput
	}
	if in.PriceCents < 0 {
		return Product{}, ErrInvalidInput
	}

	category := Category(strings.TrimSpace(in.Category))
	if category == "" {
		category = CategoryWellness
	}
	if category != CategoryProtection && category != CategoryWellness && category != CategoryTesting {
		return Product{}, ErrInvalidInput
	}

	now := s.now()
	p := Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Category:    category,
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListActive(ctx context.Context) ([]Product, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) ListAll(ctx context.Context) ([]Product, error) {
	return s.repo.ListAll(ctx)
}

// patchImageURL distingue "no enviado" de "enviado null" (limpiar imagen).
type patchImageURL struct {
	Present bool
	Value   *string
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name        *string
	Category    *string
	Description *string
	PriceCents  *int64
	Active      *bool
	ImageURL    patchImageURL
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, ErrInvalidInput
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Product{}, ErrNotFound
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Product{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Category != nil {
		category := Category(strings.TrimSpace(*in.Category))
		if category != CategoryProtection && category != CategoryWellness && category != CategoryTesting {
			return Product{}, ErrInvalidInput
		}
		p.Category = category
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return Product{}, ErrInvalidInput
		}
		p.PriceCents = *in.PriceCents
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if in.ImageURL.Present {
		if in.ImageURL.Value == nil {
			p.ImageURL = ""
		} else {
			p.ImageURL = strings.TrimSpace(*in.ImageURL.Value)
		}
	}

	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}
