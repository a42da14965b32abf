package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kaupod/internal/middleware"
	"kaupod/internal/ports/assistant"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/chatbot", func(cr chi.Router) {
		cr.Post("/message/stream", streamMessageHandler(svc))
		cr.Post("/clear", clearHandler(svc))
		cr.Get("/history", historyHandler(svc))
	})
}

type streamMessageRequest struct {
	Message string `json:"message"`
}

type historyResponse struct {
	Messages []Message `json:"messages"`
	Error    string    `json:"error,omitempty"`
}

// streamMessageHandler godoc
// @Summary Enviar mensaje al asistente
// @Description Envía un mensaje y recibe la respuesta en streaming como líneas `data: {json}` con type start/chunk/complete/error. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags chatbot
// @Accept json
// @Produce plain
// @Param payload body streamMessageRequest true "Mensaje del usuario"
// @Success 200 {string} string "stream de líneas data:"
// @Failure 400 {string} string "invalid json / mensaje vacío"
// @Failure 401 {string} string "unauthorized"
// @Router /chatbot/message/stream [post]
func streamMessageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req streamMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			http.Error(w, "message required", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("X-Accel-Buffering", "no")

		// El write timeout global del server cortaría respuestas largas
		rc := http.NewResponseController(w)
		_ = rc.SetWriteDeadline(time.Time{})

		writeEvent(w, rc, map[string]string{"type": "start"})

		err := svc.Stream(r.Context(), claims.UserID, req.Message, func(chunk string) error {
			return writeEvent(w, rc, map[string]string{"type": "chunk", "content": chunk})
		})
		if err != nil {
			writeEvent(w, rc, map[string]string{"type": "error", "content": streamErrorContent(err)})
			return
		}

		writeEvent(w, rc, map[string]string{"type": "complete"})
	}
}

// writeEvent emite una línea de protocolo y la flushea de inmediato
// para que el cliente la vea apenas existe.
func writeEvent(w http.ResponseWriter, rc *http.ResponseController, ev map[string]string) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n", b); err != nil {
		return err
	}
	return rc.Flush()
}

func streamErrorContent(err error) string {
	var re *assistant.ReplyError
	switch {
	case errors.As(err, &re):
		return re.Content
	case errors.Is(err, ErrBusy):
		return "Another message is still being answered. Please wait for it to finish."
	case errors.Is(err, ErrInvalidInput):
		return "Please type a message first."
	default:
		return "The assistant is unavailable right now. Please try again."
	}
}

func clearHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		msgs, err := svc.Clear(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "assistant unavailable", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, historyResponse{Messages: msgs})
	}
}

func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		msgs, lastErr, err := svc.History(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, historyResponse{Messages: msgs, Error: lastErr})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
