package products

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Product
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Product{}}
}

func (r *testRepo) Create(ctx context.Context, p Product) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Product) error {
	if _, ok := r.byID[p.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return Product{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) ListActive(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0)
	for _, p := range r.byID {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) ListAll(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0)
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

func newTestService() *Service {
	svc := NewService(newTestRepo())
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	return svc
}

func strPtr(s string) *string { return &s }

// -------------------------
// Tests
// -------------------------

func TestCreate_Defaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, err := svc.Create(ctx, CreateInput{Name: "  Pride Kit  ", PriceCents: 19900})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Pride Kit" {
		t.Fatalf("name debe recortarse: %q", p.Name)
	}
	if p.Category != CategoryWellness {
		t.Fatalf("category default debe ser wellness, got %s", p.Category)
	}
	if !p.Active {
		t.Fatalf("nuevo producto debe nacer activo")
	}
}

func TestCreate_Validaciones(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.Create(ctx, CreateInput{Name: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("sin nombre debe rechazarse, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "Kit", PriceCents: -1}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("precio negativo debe rechazarse, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "Kit", Category: "gadgets"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("categoría inventada debe rechazarse, got %v", err)
	}
}

func TestUpdate_PatchParcial(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, _ := svc.Create(ctx, CreateInput{
		Name:       "Condoms 12-pack",
		Category:   "protection",
		PriceCents: 25000,
		ImageURL:   "https://img.example/condoms.png",
	})

	price := int64(22000)
	got, err := svc.Update(ctx, p.ID, UpdateInput{PriceCents: &price})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PriceCents != 22000 {
		t.Fatalf("precio no actualizado: %d", got.PriceCents)
	}
	// Campos no enviados no se tocan
	if got.Name != "Condoms 12-pack" || got.Category != CategoryProtection || got.ImageURL != p.ImageURL {
		t.Fatalf("patch parcial tocó otros campos: %+v", got)
	}
}

func TestUpdate_LimpiarImagenConNull(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, _ := svc.Create(ctx, CreateInput{Name: "Lube", PriceCents: 9900, ImageURL: "https://img.example/lube.png"})

	// Present=true con Value=nil equivale a "image_url": null
	got, err := svc.Update(ctx, p.ID, UpdateInput{ImageURL: patchImageURL{Present: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ImageURL != "" {
		t.Fatalf("null explícito debe limpiar la imagen: %q", got.ImageURL)
	}

	// Present=false no la toca
	name := "Lube Plus"
	got, err = svc.Update(ctx, p.ID, UpdateInput{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ImageURL != "" || got.Name != "Lube Plus" {
		t.Fatalf("ausencia del campo no debe tocar la imagen: %+v", got)
	}
}

func TestUpdate_Validaciones(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, _ := svc.Create(ctx, CreateInput{Name: "Vitamins", PriceCents: 5000})

	if _, err := svc.Update(ctx, p.ID, UpdateInput{Name: strPtr("  ")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("nombre vacío debe rechazarse, got %v", err)
	}
	bad := int64(-5)
	if _, err := svc.Update(ctx, p.ID, UpdateInput{PriceCents: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("precio negativo debe rechazarse, got %v", err)
	}
	if _, err := svc.Update(ctx, p.ID, UpdateInput{Category: strPtr("gadgets")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("categoría inventada debe rechazarse, got %v", err)
	}
	if _, err := svc.Update(ctx, "missing", UpdateInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListActive_FiltraInactivos(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	a, _ := svc.Create(ctx, CreateInput{Name: "A", PriceCents: 100})
	_, _ = svc.Create(ctx, CreateInput{Name: "B", PriceCents: 200})

	off := false
	if _, err := svc.Update(ctx, a.ID, UpdateInput{Active: &off}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != 1 || active[0].Name != "B" {
		t.Fatalf("solo B debe estar activo: %+v", active)
	}

	all, _ := svc.ListAll(ctx)
	if len(all) != 2 {
		t.Fatalf("admin debe ver todo: %+v", all)
	}
}
