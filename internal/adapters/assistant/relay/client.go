package relay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kaupod/internal/ports/assistant"
)

var (
	ErrRelayNotConfigured = errors.New("assistant relay not configured")
	ErrRelayUnauthorized  = errors.New("assistant relay unauthorized")
	ErrRelayUpstream      = errors.New("assistant relay upstream error")
)

// dataPrefix es el literal de 6 bytes que marca las líneas de interés del stream.
const dataPrefix = "data: "

// Config del cliente hacia el motor de asistente.
// BaseURL y APIKey normalmente vendrán de env vars en quien lo instancie.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	// Timeout HTTP. Aplica al POST de clear; el stream se gobierna por ctx
	// (un timeout de http.Client cortaría respuestas largas a mitad).
	Timeout time.Duration
}

// Client consume el stream del motor de asistente línea por línea.
// Protocolo: líneas "data: {json}" con type ∈ {start, chunk, complete, error}.
type Client struct {
	baseURL      string
	apiKey       string
	apiKeyHeader string

	streamClient *http.Client // sin timeout global
	jsonClient   *http.Client // con timeout, para clear
}

var _ assistant.Streamer = (*Client)(nil)

func NewClient(cfg Config) *Client {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		streamClient: &http.Client{},
		jsonClient:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// sign agrega la firma de requests (API key). Inyectado acá y no leído de
// ambiente global para que el cliente sea testeable sin wiring externo.
func (c *Client) sign(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set(c.apiKeyHeader, c.apiKey)
	}
}

// streamEvent es una línea de protocolo ya decodificada.
type streamEvent struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// StreamReply manda el mensaje al upstream y consume la respuesta incremental.
// Reglas de parsing:
//   - solo cuentan las líneas con prefijo "data: "; el resto se ignora
//   - JSON inválido tras el prefijo se saltea en silencio (tolera chunks partidos)
//   - chunk => onChunk(content), en orden de llegada, sin reordenar ni bufferear
//   - complete => fin normal; error => ReplyError; EOF sin complete => fin normal
//
// El body se cierra en todos los caminos de salida.
func (c *Client) StreamReply(ctx context.Context, message string, onChunk func(string) error) (string, error) {
	if !c.IsConfigured() {
		return "", ErrRelayNotConfigured
	}

	body, _ := json.Marshal(map[string]string{"message": message})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/stream", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRelayUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")
	c.sign(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRelayUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// ok
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrRelayUnauthorized
	default:
		return "", fmt.Errorf("%w: status=%d", ErrRelayUpstream, resp.StatusCode)
	}

	var reply strings.Builder

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(line[len(dataPrefix):]), &ev); err != nil {
			// línea partida o basura: no es fatal
			continue
		}

		switch ev.Type {
		case "start":
			// marca el inicio del exchange; no muta nada
		case "chunk":
			reply.WriteString(ev.Content)
			if onChunk != nil {
				if err := onChunk(ev.Content); err != nil {
					return reply.String(), fmt.Errorf("%w: %v", ErrRelayUpstream, err)
				}
			}
		case "complete":
			return reply.String(), nil
		case "error":
			return reply.String(), &assistant.ReplyError{Content: ev.Content}
		}
	}

	if err := scanner.Err(); err != nil {
		return reply.String(), fmt.Errorf("%w: %v", ErrRelayUpstream, err)
	}

	// El transporte señaló fin sin evento complete: lo tratamos como fin normal.
	return reply.String(), nil
}

// Clear pide al upstream descartar el contexto de conversación.
func (c *Client) Clear(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrRelayNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/clear", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRelayUpstream, err)
	}
	c.sign(req)

	resp, err := c.jsonClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRelayUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrRelayUnauthorized
	default:
		return fmt.Errorf("%w: status=%d", ErrRelayUpstream, resp.StatusCode)
	}
}
