package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/storefront/internal/domain"
)

// Handler turns order.placed events into confirmation emails sent through the
// mailer service.
type Handler struct {
	mailerURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHandler(mailerURL string, client *http.Client, logger *slog.Logger) *Handler {
	return &Handler{
		mailerURL:  strings.TrimRight(mailerURL, "/"),
		httpClient: client,
		logger:     logger,
	}
}

type email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Handle sends the confirmation for one event. Only mailer failures are
// returned, so the consumer leaves those uncommitted for redelivery.
func (h *Handler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		// Dropped, not retried: the offset still commits.
		h.logger.Error("dropping malformed order placed event", "error", err, "payload", string(payload))
		return nil
	}

	h.logger.Info("processing order placed event", "order_id", event.OrderID, "user_id", event.UserID)

	if event.Email == "" {
		h.logger.Warn("order has no customer email, skipping notification", "order_id", event.OrderID)
		return nil
	}

	if err := h.send(ctx, confirmation(event)); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	h.logger.Info("order confirmation sent", "order_id", event.OrderID)
	return nil
}

func confirmation(event domain.OrderPlacedEvent) email {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order %s.\n\n", event.OrderID)
	for _, it := range event.Items {
		fmt.Fprintf(&b, "product %d: %d x %s\n", it.ProductID, it.Quantity, it.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", event.TotalAmount.StringFixed(2))

	return email{
		To:      event.Email,
		Subject: "Order Confirmation: " + event.OrderID,
		Body:    b.String(),
	}
}

func (h *Handler) send(ctx context.Context, msg email) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.mailerURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mailer returned status %d", resp.StatusCode)
	}

	return nil
}
