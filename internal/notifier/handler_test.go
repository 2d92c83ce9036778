package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/domain"
)

type mailCapture struct {
	mu     sync.Mutex
	status int
	emails []email
}

func (m *mailCapture) handler(w http.ResponseWriter, r *http.Request) {
	var req email
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.emails = append(m.emails, req)
	status := m.status
	m.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, `{"status":"sent"}`)
}

func newMailer(t *testing.T, status int) (*mailCapture, *httptest.Server) {
	t.Helper()
	capture := &mailCapture{status: status}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /send", capture.handler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return capture, srv
}

func placedPayload(t *testing.T, email string) []byte {
	t.Helper()
	event := domain.OrderPlacedEvent{
		OrderID: "6f1c1f7e-0000-4000-8000-000000000001",
		UserID:  7,
		Email:   email,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("10.00")},
			{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("5.50")},
		},
		TotalAmount: decimal.RequireFromString("25.50"),
		Timestamp:   time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal event: %v", err)
	}
	return payload
}

func newTestHandler(url string) *Handler {
	return NewHandler(url, &http.Client{Timeout: 5 * time.Second}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandler_Handle(t *testing.T) {
	capture, srv := newMailer(t, http.StatusOK)
	h := newTestHandler(srv.URL + "/")

	if err := h.Handle(context.Background(), placedPayload(t, "anna@example.com")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(capture.emails) != 1 {
		t.Fatalf("expected 1 email, got %d", len(capture.emails))
	}
	got := capture.emails[0]
	if got.To != "anna@example.com" {
		t.Errorf("expected recipient anna@example.com, got %s", got.To)
	}
	if !strings.Contains(got.Subject, "6f1c1f7e-0000-4000-8000-000000000001") {
		t.Errorf("expected subject to carry the order id, got %q", got.Subject)
	}
	if !strings.Contains(got.Body, "Total: 25.50") {
		t.Errorf("expected body to carry the total, got %q", got.Body)
	}
}

func TestHandler_Handle_mailerFailure(t *testing.T) {
	_, srv := newMailer(t, http.StatusInternalServerError)
	h := newTestHandler(srv.URL)

	if err := h.Handle(context.Background(), placedPayload(t, "anna@example.com")); err == nil {
		t.Fatal("expected error when mailer fails")
	}
}

func TestHandler_Handle_skipsWithoutEmail(t *testing.T) {
	capture, srv := newMailer(t, http.StatusOK)
	h := newTestHandler(srv.URL)

	if err := h.Handle(context.Background(), placedPayload(t, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(capture.emails) != 0 {
		t.Errorf("expected no email, got %d", len(capture.emails))
	}
}

func TestHandler_Handle_malformedPayload(t *testing.T) {
	capture, srv := newMailer(t, http.StatusOK)
	h := newTestHandler(srv.URL)

	for _, payload := range []string{`{`, `not json`, `{"orderId": 5}`} {
		if err := h.Handle(context.Background(), []byte(payload)); err != nil {
			t.Errorf("expected %q to be dropped without error, got %v", payload, err)
		}
	}
	if len(capture.emails) != 0 {
		t.Errorf("expected no email, got %d", len(capture.emails))
	}
}
