package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// e2e contra el router completo en modo dev:
// sin verifier (X-Debug-User-ID / X-Debug-Role), repos in-memory,
// asistente scripted.

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(NewRouter(Options{}))
	t.Cleanup(ts.Close)
	return ts
}

func doReq(t *testing.T, ts *httptest.Server, method, path, userID, role string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}
	if role != "" {
		req.Header.Set("X-Debug-Role", role)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	_ = resp.Body.Close()

	return resp, raw
}

func decode(t *testing.T, raw []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, raw)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := doReq(t, ts, http.MethodGet, "/health", "", "", nil)
	if resp.StatusCode != http.StatusOK || string(raw) != "ok" {
		t.Fatalf("health: status=%d body=%q", resp.StatusCode, raw)
	}
}

func TestKitOrderLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// 1. El usuario pide un kit
	resp, raw := doReq(t, ts, http.MethodPost, "/kit-orders", "user-1", "", map[string]any{
		"kit_variant":      "advanced",
		"quantity":         1,
		"phone":            "+63 917 555 0101",
		"delivery_address": "123 Mabini St, Quezon City",
		"payment_method":   "gcash",
		"payment_ref":      "GC-2024-0001",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: status=%d body=%s", resp.StatusCode, raw)
	}

	var created struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		StatusLabel string `json:"status_label"`
	}
	decode(t, raw, &created)
	if created.Status != "in_review" {
		t.Fatalf("expected in_review, got %s", created.Status)
	}
	if created.StatusLabel != "In Review" {
		t.Fatalf("expected label In Review, got %q", created.StatusLabel)
	}

	// 2. Sin user => 401
	resp, _ = doReq(t, ts, http.MethodPost, "/kit-orders", "", "", map[string]any{})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous create: status=%d", resp.StatusCode)
	}

	// 3. Admin lo mueve a accepted
	resp, raw = doReq(t, ts, http.MethodPost, "/admin/kit-orders/"+created.ID+"/status", "admin-1", "admin", map[string]any{
		"status": "accepted",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin update: status=%d body=%s", resp.StatusCode, raw)
	}

	// 4. Cancelar fuera de in_review => 409
	resp, _ = doReq(t, ts, http.MethodPost, "/kit-orders/"+created.ID+"/cancel", "user-1", "", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("cancel after accepted: status=%d", resp.StatusCode)
	}

	// 5. En accepted sí se pueden fijar datos de devolución
	resp, raw = doReq(t, ts, http.MethodPost, "/kit-orders/"+created.ID+"/return-details", "user-1", "", map[string]any{
		"method":  "courier_pickup",
		"courier": "LBC",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("return details: status=%d body=%s", resp.StatusCode, raw)
	}

	// 6. El detalle trae timeline y acciones
	resp, raw = doReq(t, ts, http.MethodGet, "/kit-orders/"+created.ID, "user-1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get detail: status=%d body=%s", resp.StatusCode, raw)
	}

	var detail struct {
		Status   string `json:"status"`
		Timeline []struct {
			Status  string `json:"status"`
			Display struct {
				Icon string `json:"icon"`
			} `json:"display"`
		} `json:"timeline"`
		AllowedActions []string `json:"allowed_actions"`
	}
	decode(t, raw, &detail)

	if detail.Status != "accepted" {
		t.Fatalf("expected accepted, got %s", detail.Status)
	}
	if len(detail.Timeline) != 2 {
		t.Fatalf("expected 2 escalones, got %d: %s", len(detail.Timeline), raw)
	}
	if detail.Timeline[0].Status != "in_review" || detail.Timeline[1].Status != "accepted" {
		t.Fatalf("timeline fuera de orden: %s", raw)
	}
	for _, a := range detail.AllowedActions {
		if a == "cancel" {
			t.Fatalf("cancel no debe estar habilitado en accepted: %v", detail.AllowedActions)
		}
	}

	// 7. Otro usuario no ve el pedido
	resp, _ = doReq(t, ts, http.MethodGet, "/kit-orders/"+created.ID, "user-2", "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("other user detail: status=%d", resp.StatusCode)
	}
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := doReq(t, ts, http.MethodGet, "/admin/kit-orders", "user-1", "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer on admin list: status=%d", resp.StatusCode)
	}

	resp, _ = doReq(t, ts, http.MethodGet, "/admin/kit-orders", "admin-1", "admin", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin list: status=%d", resp.StatusCode)
	}

	resp, _ = doReq(t, ts, http.MethodGet, "/admin/consultations", "user-1", "", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer on admin consultations: status=%d", resp.StatusCode)
	}

	resp, _ = doReq(t, ts, http.MethodPost, "/admin/products", "user-1", "", map[string]any{"name": "X"})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer creating product: status=%d", resp.StatusCode)
	}
}

func TestConsultationReschedule(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := doReq(t, ts, http.MethodPost, "/consultations", "user-1", "", map[string]any{
		"mode":         "online",
		"topic":        "testing options",
		"preferred_at": "2026-09-10T15:00:00Z",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create consultation: status=%d body=%s", resp.StatusCode, raw)
	}

	var created struct {
		ID string `json:"id"`
	}
	decode(t, raw, &created)

	// Reprogramar en in_review es legal y no mueve el estado
	resp, raw = doReq(t, ts, http.MethodPost, "/consultations/"+created.ID+"/reschedule", "user-1", "", map[string]any{
		"preferred_at": "2026-09-12T10:00:00Z",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reschedule: status=%d body=%s", resp.StatusCode, raw)
	}

	var updated struct {
		Status      string `json:"status"`
		PreferredAt string `json:"preferred_at"`
	}
	decode(t, raw, &updated)
	if updated.Status != "in_review" {
		t.Fatalf("reschedule no debe mover el estado: %s", updated.Status)
	}
	if !strings.HasPrefix(updated.PreferredAt, "2026-09-12") {
		t.Fatalf("preferred_at no actualizado: %s", updated.PreferredAt)
	}

	// Una vez finished, 409
	resp, _ = doReq(t, ts, http.MethodPost, "/admin/consultations/"+created.ID+"/status", "admin-1", "admin", map[string]any{
		"status": "finished",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin finish: status=%d", resp.StatusCode)
	}
	resp, _ = doReq(t, ts, http.MethodPost, "/consultations/"+created.ID+"/reschedule", "user-1", "", map[string]any{
		"preferred_at": "2026-09-15T10:00:00Z",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("reschedule after finished: status=%d", resp.StatusCode)
	}
}

func TestProductsStore(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := doReq(t, ts, http.MethodPost, "/admin/products", "admin-1", "admin", map[string]any{
		"name":        "Standard Kit",
		"category":    "testing",
		"price_cents": 19900,
		"image_url":   "https://img.example/kit.png",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create product: status=%d body=%s", resp.StatusCode, raw)
	}

	var created struct {
		ID string `json:"id"`
	}
	decode(t, raw, &created)

	// PATCH con "image_url": null limpia la imagen sin tocar el resto
	resp, raw = doReq(t, ts, http.MethodPatch, "/admin/products/"+created.ID, "admin-1", "admin", map[string]any{
		"image_url": nil,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch product: status=%d body=%s", resp.StatusCode, raw)
	}

	var patched struct {
		Name     string `json:"name"`
		ImageURL string `json:"image_url"`
	}
	decode(t, raw, &patched)
	if patched.ImageURL != "" {
		t.Fatalf("null explícito debe limpiar la imagen: %q", patched.ImageURL)
	}
	if patched.Name != "Standard Kit" {
		t.Fatalf("patch tocó el nombre: %q", patched.Name)
	}

	// La tienda pública lo lista sin auth
	resp, raw = doReq(t, ts, http.MethodGet, "/products", "", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list products: status=%d", resp.StatusCode)
	}
	var list []struct {
		Name string `json:"name"`
	}
	decode(t, raw, &list)
	if len(list) != 1 || list[0].Name != "Standard Kit" {
		t.Fatalf("unexpected store listing: %s", raw)
	}
}

func TestChatbotStream(t *testing.T) {
	ts := newTestServer(t)

	resp, raw := doReq(t, ts, http.MethodPost, "/chatbot/message/stream", "user-1", "", map[string]any{
		"message": "how do I order a kit?",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream: status=%d body=%s", resp.StatusCode, raw)
	}

	var sawStart, sawComplete bool
	var reply strings.Builder
	for _, line := range strings.Split(string(raw), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		}
		if err := json.Unmarshal([]byte(line[len("data: "):]), &ev); err != nil {
			t.Fatalf("bad protocol line %q: %v", line, err)
		}
		switch ev.Type {
		case "start":
			sawStart = true
		case "chunk":
			reply.WriteString(ev.Content)
		case "complete":
			sawComplete = true
		case "error":
			t.Fatalf("unexpected error event: %s", ev.Content)
		}
	}
	if !sawStart || !sawComplete {
		t.Fatalf("stream sin framing completo: start=%v complete=%v", sawStart, sawComplete)
	}
	if !strings.Contains(reply.String(), "Kit Orders") {
		t.Fatalf("scripted reply inesperada: %q", reply.String())
	}

	// El transcript quedó con welcome + user + assistant
	resp, raw = doReq(t, ts, http.MethodGet, "/chatbot/history", "user-1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history: status=%d", resp.StatusCode)
	}
	var hist struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Error string `json:"error"`
	}
	decode(t, raw, &hist)
	if len(hist.Messages) != 3 {
		t.Fatalf("expected 3 mensajes, got %d: %s", len(hist.Messages), raw)
	}
	if hist.Messages[1].Role != "user" || hist.Messages[2].Role != "assistant" {
		t.Fatalf("roles fuera de orden: %s", raw)
	}
	if hist.Error != "" {
		t.Fatalf("no debería haber error pendiente: %q", hist.Error)
	}

	// Clear vuelve al welcome solo
	resp, raw = doReq(t, ts, http.MethodPost, "/chatbot/clear", "user-1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("clear: status=%d", resp.StatusCode)
	}
	decode(t, raw, &hist)
	if len(hist.Messages) != 1 || hist.Messages[0].Role != "assistant" {
		t.Fatalf("clear debe dejar solo el welcome: %s", raw)
	}

	// Mensaje vacío => 400
	resp, _ = doReq(t, ts, http.MethodPost, "/chatbot/message/stream", "user-1", "", map[string]any{
		"message": "   ",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty message: status=%d", resp.StatusCode)
	}
}
