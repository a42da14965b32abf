package geocode

import "context"

// Resolver traduce coordenadas a una etiqueta de dirección legible.
type Resolver interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}
