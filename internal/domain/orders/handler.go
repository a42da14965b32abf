package orders

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
	// Pedidos del usuario
	r.Route("/kit-orders", func(or chi.Router) {
		or.Post("/", requestOrderHandler(svc))
		or.Get("/", listOrdersHandler(svc))
		or.Get("/{orderID}", getOrderHandler(svc))
		or.Post("/{orderID}/cancel", cancelOrderHandler(svc))
		or.Post("/{orderID}/return-details", setReturnDetailsHandler(svc))
	})

	// Admin
	r.Route("/admin/kit-orders", func(ar chi.Router) {
		ar.Get("/", adminListOrdersHandler(svc))
		ar.Post("/{orderID}/status", adminUpdateStatusHandler(svc))
	})
}

type requestOrderRequest struct {
	KitVariant      string   `json:"kit_variant" enums:"standard,advanced"`
	Quantity        int      `json:"quantity"`
	Phone           string   `json:"phone"`
	DeliveryAddress string   `json:"delivery_address"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	PaymentMethod   string   `json:"payment_method" enums:"gcash,cod"`
	PaymentRef      string   `json:"payment_ref"`
}

type returnDetailsRequest struct {
	Method      string `json:"method" enums:"drop_off,courier_pickup"`
	Courier     string `json:"courier"`
	TrackingRef string `json:"tracking_ref"`
	ScheduledAt string `json:"scheduled_at"` // RFC3339 opcional
	Notes       string `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type returnDetailsResponse struct {
	Method      string     `json:"method"`
	Courier     string     `json:"courier,omitempty"`
	TrackingRef string     `json:"tracking_ref,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

type orderResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	KitVariant      KitVariant             `json:"kit_variant"`
	Quantity        int                    `json:"quantity"`
	Phone           string                 `json:"phone"`
	DeliveryAddress string                 `json:"delivery_address"`
	Latitude        *float64               `json:"latitude,omitempty"`
	Longitude       *float64               `json:"longitude,omitempty"`
	AddressLabel    string                 `json:"address_label,omitempty"`
	PaymentMethod   PaymentMethod          `json:"payment_method"`
	PaymentRef      string                 `json:"payment_ref,omitempty"`
	Status          status.Code            `json:"status"`
	StatusLabel     string                 `json:"status_label"`
	ReturnDetails   *returnDetailsResponse `json:"return_details,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// orderDetailResponse agrega lo que la página de detalle necesita:
// la escalera de estados proyectada y las acciones habilitadas.
type orderDetailResponse struct {
	orderResponse
	Display        status.Display  `json:"display"`
	Timeline       []status.Entry  `json:"timeline"`
	AllowedActions []status.Action `json:"allowed_actions"`
}

// requestOrderHandler godoc
// @Summary Pedir un kit de testeo
// @Description Crea un pedido de kit en estado in_review. Si vienen coordenadas se resuelve la dirección vía geocoding (best effort). Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags kit-orders
// @Accept json
// @Produce json
// @Param payload body requestOrderRequest true "Datos del pedido"
// @Success 201 {object} orderResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Router /kit-orders [post]
func requestOrderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req requestOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		o, err := svc.Request(r.Context(), claims.UserID, RequestInput{
			KitVariant:      req.KitVariant,
			Quantity:        req.Quantity,
			Phone:           req.Phone,
			DeliveryAddress: req.DeliveryAddress,
			Latitude:        req.Latitude,
			Longitude:       req.Longitude,
			PaymentMethod:   req.PaymentMethod,
			PaymentRef:      req.PaymentRef,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toOrderResponse(o))
	}
}

func listOrdersHandler(svc *Service) http.HandlerFunc {
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

		out := make([]orderResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOrderResponse(o))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getOrderHandler(svc *Service) http.HandlerFunc {
	// Owner o admin
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		o, err := svc.GetByID(r.Context(), chi.URLParam(r, "orderID"))
		if err != nil {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}

		if o.UserID != claims.UserID && !claims.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toOrderDetailResponse(svc, o))
	}
}

func cancelOrderHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		o, err := svc.Cancel(r.Context(), chi.URLParam(r, "orderID"), claims.UserID)
		if err != nil {
			writeServiceError(w, err, "cancel not allowed in current status")
			return
		}

		writeJSON(w, http.StatusOK, toOrderDetailResponse(svc, o))
	}
}

func setReturnDetailsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req returnDetailsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var scheduledAt *time.Time
		if strings.TrimSpace(req.ScheduledAt) != "" {
			t, err := time.Parse(time.RFC3339, req.ScheduledAt)
			if err != nil {
				http.Error(w, "scheduled_at must be RFC3339", http.StatusBadRequest)
				return
			}
			scheduledAt = &t
		}

		o, err := svc.SetReturnDetails(r.Context(), chi.URLParam(r, "orderID"), claims.UserID, ReturnDetailsInput{
			Method:      req.Method,
			Courier:     req.Courier,
			TrackingRef: req.TrackingRef,
			ScheduledAt: scheduledAt,
			Notes:       req.Notes,
		})
		if err != nil {
			writeServiceError(w, err, "return details only allowed while accepted")
			return
		}

		writeJSON(w, http.StatusOK, toOrderDetailResponse(svc, o))
	}
}

func adminListOrdersHandler(svc *Service) http.HandlerFunc {
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

		out := make([]orderResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOrderResponse(o))
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

		o, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "orderID"), req.Status)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, "unknown status", http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toOrderDetailResponse(svc, o))
	}
}

func writeServiceError(w http.ResponseWriter, err error, badStateMsg string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrBadState):
		http.Error(w, badStateMsg, http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toOrderResponse(o KitOrder) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		KitVariant:      o.KitVariant,
		Quantity:        o.Quantity,
		Phone:           o.Phone,
		DeliveryAddress: o.DeliveryAddress,
		Latitude:        o.Latitude,
		Longitude:       o.Longitude,
		AddressLabel:    o.AddressLabel,
		PaymentMethod:   o.PaymentMethod,
		PaymentRef:      o.PaymentRef,
		Status:          o.Status,
		StatusLabel:     status.FormatStatus(string(o.Status)),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}

	if o.ReturnDetails != nil {
		resp.ReturnDetails = &returnDetailsResponse{
			Method:      string(o.ReturnDetails.Method),
			Courier:     o.ReturnDetails.Courier,
			TrackingRef: o.ReturnDetails.TrackingRef,
			ScheduledAt: o.ReturnDetails.ScheduledAt,
			Notes:       o.ReturnDetails.Notes,
		}
	}
	return resp
}

func toOrderDetailResponse(svc *Service, o KitOrder) orderDetailResponse {
	return orderDetailResponse{
		orderResponse:  toOrderResponse(o),
		Display:        status.Project(status.KindKit, string(o.Status)),
		Timeline:       svc.Timeline(o),
		AllowedActions: svc.AllowedActions(o),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
