package mailer

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/respond"
)

// Handler accepts outgoing emails. Delivery is a structured log line; there
// is no SMTP transport.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (req sendRequest) validate() error {
	if !strings.Contains(req.To, "@") {
		return domain.Invalid("recipient address is malformed")
	}
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Body) == "" {
		return domain.Invalid("subject and body are required")
	}
	return nil
}

type sendResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}
	if err := req.validate(); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	h.logger.Info("email sent", "to", req.To, "subject", req.Subject, "bytes", len(req.Body))

	respond.JSON(w, h.logger, http.StatusOK, sendResponse{Status: "sent"})
}
