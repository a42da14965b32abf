package products

import "time"

// Category define las categorías de la tienda.
// @Enum protection, wellness, testing
type Category string

const (
	CategoryProtection Category = "protection"
	CategoryWellness   Category = "wellness"
	CategoryTesting    Category = "testing"
)

// Product representa un producto de salud de la tienda.
type Product struct {
	ID string

	Name        string
	Category    Category
	Description string

	// Precio en centavos para evitar aritmética en flotantes
	PriceCents int64

	ImageURL string
	Active   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
