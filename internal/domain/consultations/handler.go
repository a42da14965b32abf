package consultations

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"kaupod/internal/domain/status"
	"kaupod/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/consultations", func(cr chi.Router) {
		cr.Post("/", requestConsultationHandler(svc))
		cr.Get("/", listConsultationsHandler(svc))
		cr.Get("/{consultationID}", getConsultationHandler(svc))
		cr.Post("/{consultationID}/reschedule", rescheduleHandler(svc))
	})

	r.Route("/admin/consultations", func(ar chi.Router) {
		ar.Get("/", adminListConsultationsHandler(svc))
		ar.Post("/{consultationID}/status", adminUpdateStatusHandler(svc))
	})
}

type requestConsultationRequest struct {
	Mode        string `json:"mode" enums:"online,in_person"`
	Topic       string `json:"topic"`
	Phone       string `json:"phone"`
	PreferredAt string `json:"preferred_at"` // RFC3339
}

type rescheduleRequest struct {
	PreferredAt string `json:"preferred_at"` // RFC3339
}

type updateStatusRequest struct {
	Status        string  `json:"status"`
	ClinicianName *string `json:"clinician_name"`
	MeetingLink   *string `json:"meeting_link"`
}

type consultationResponse struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Mode          Mode        `json:"mode"`
	Topic         string      `json:"topic,omitempty"`
	Phone         string      `json:"phone,omitempty"`
	PreferredAt   time.Time   `json:"preferred_at"`
	ClinicianName string      `json:"clinician_name,omitempty"`
	MeetingLink   string      `json:"meeting_link,omitempty"`
	Status        status.Code `json:"status"`
	StatusLabel   string      `json:"status_label"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type consultationDetailResponse struct {
	consultationResponse
	Display        status.Display  `json:"display"`
	Timeline       []status.Entry  `json:"timeline"`
	AllowedActions []status.Action `json:"allowed_actions"`
}

func requestConsultationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req requestConsultationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		preferredAt, err := time.Parse(time.RFC3339, req.PreferredAt)
		if err != nil {
			http.Error(w, "preferred_at must be RFC3339", http.StatusBadRequest)
			return
		}

		c, err := svc.Request(r.Context(), claims.UserID, RequestInput{
			Mode:        req.Mode,
			Topic:       req.Topic,
			Phone:       req.Phone,
			PreferredAt: preferredAt,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toConsultationResponse(c))
	}
}

func listConsultationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByUser(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]consultationResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toConsultationResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getConsultationHandler(svc *Service) http.HandlerFunc {
	// Owner o admin
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "consultationID"))
		if err != nil {
			http.Error(w, "consultation not found", http.StatusNotFound)
			return
		}

		if c.UserID != claims.UserID && !claims.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toConsultationDetailResponse(svc, c))
	}
}

func rescheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req rescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		preferredAt, err := time.Parse(time.RFC3339, req.PreferredAt)
		if err != nil {
			http.Error(w, "preferred_at must be RFC3339", http.StatusBadRequest)
			return
		}

		c, err := svc.Reschedule(r.Context(), chi.URLParam(r, "consultationID"), claims.UserID, preferredAt)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "consultation not found", http.StatusNotFound)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrBadState):
				http.Error(w, "reschedule not allowed in current status", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toConsultationDetailResponse(svc, c))
	}
}

func adminListConsultationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || !claims.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListAll(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]consultationResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toConsultationResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminUpdateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || !claims.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "consultationID"), UpdateStatusInput{
			Status:        req.Status,
			ClinicianName: req.ClinicianName,
			MeetingLink:   req.MeetingLink,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "unknown status", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "consultation not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toConsultationDetailResponse(svc, c))
	}
}

func toConsultationResponse(c Consultation) consultationResponse {
	return consultationResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		Mode:          c.Mode,
		Topic:         c.Topic,
		Phone:         c.Phone,
		PreferredAt:   c.PreferredAt,
		ClinicianName: c.ClinicianName,
		MeetingLink:   c.MeetingLink,
		Status:        c.Status,
		StatusLabel:   status.FormatStatus(string(c.Status)),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toConsultationDetailResponse(svc *Service, c Consultation) consultationDetailResponse {
	return consultationDetailResponse{
		consultationResponse: toConsultationResponse(c),
		Display:              status.Project(status.KindConsultation, string(c.Status)),
		Timeline:             svc.Timeline(c),
		AllowedActions:       svc.AllowedActions(c),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
