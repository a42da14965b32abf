package nominatim

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"kaupod/internal/platform/httpclient"
	"kaupod/internal/ports/geocode"
)

var (
	ErrNotConfigured = errors.New("nominatim client not configured")
)

const (
	// Nominatim público pide máximo 1 req/s; nuestro uso es best-effort
	// al crear pedidos, así que un timeout corto alcanza.
	defaultTimeout = 4 * time.Second
)

// Config del cliente Nominatim (OpenStreetMap reverse geocoding).
type Config struct {
	BaseURL string

	// UserAgent identifica la app ante Nominatim (requerido por su política).
	// Si está vacío se usa "kaupod".
	UserAgent string

	Timeout time.Duration
}

type Client struct {
	http      *httpclient.Client
	userAgent string
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, timeout)
	if err != nil {
		return nil, err
	}

	ua := strings.TrimSpace(cfg.UserAgent)
	if ua == "" {
		ua = "kaupod"
	}

	return &Client{http: hc, userAgent: ua}, nil
}

var _ geocode.Resolver = (*Client)(nil)

// ReverseGeocode resuelve lat/lon a una dirección legible.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	if c == nil || c.http == nil {
		return "", ErrNotConfigured
	}

	path := fmt.Sprintf("/reverse?format=jsonv2&lat=%f&lon=%f", lat, lon)

	var out struct {
		DisplayName string `json:"display_name"`
	}

	headers := map[string]string{
		"User-Agent": c.userAgent,
	}

	if err := c.http.DoJSON(ctx, "GET", path, headers, nil, &out); err != nil {
		return "", err
	}

	name := strings.TrimSpace(out.DisplayName)
	if name == "" {
		return "", errors.New("nominatim: empty display_name")
	}
	return name, nil
}
