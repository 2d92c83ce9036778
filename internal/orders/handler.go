package orders

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/auth"
	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/respond"
)

type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

type checkoutRequest struct {
	Address domain.Address `json:"address"`
}

type checkoutResponse struct {
	Message     string          `json:"message"`
	OrderID     string          `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// HandleCheckout serves both POST /checkout and POST /orders.
func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respond.FromError(w, h.logger, domain.ErrUnauthenticated, "")
		return
	}

	var req checkoutRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	order, err := h.svc.Checkout(r.Context(), id.UserID, req.Address)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to create order", "user_id", id.UserID)
		return
	}

	h.logger.Info("order created", "order_id", order.ID, "user_id", id.UserID, "items", len(order.Items))
	respond.JSON(w, h.logger, http.StatusCreated, checkoutResponse{
		Message:     "order placed",
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
	})
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respond.FromError(w, h.logger, domain.ErrUnauthenticated, "")
		return
	}

	lines, err := h.svc.ListForUser(r.Context(), id.UserID)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to list user orders", "user_id", id.UserID)
		return
	}

	h.logger.Info("user orders listed", "user_id", id.UserID, "rows", len(lines))
	respond.JSON(w, h.logger, http.StatusOK, lines)
}

func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.ListAll(r.Context())
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to list orders")
		return
	}

	h.logger.Info("orders listed", "count", len(summaries))
	respond.JSON(w, h.logger, http.StatusOK, summaries)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	order, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to get order", "order_id", id)
		return
	}

	h.logger.Info("order retrieved", "order_id", id)
	respond.JSON(w, h.logger, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateStatusResponse struct {
	Message string             `json:"message"`
	ID      string             `json:"id"`
	Status  domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateStatusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	status, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to update order status", "order_id", id)
		return
	}

	h.logger.Info("order status updated", "order_id", id, "status", status)
	respond.JSON(w, h.logger, http.StatusOK, updateStatusResponse{
		Message: "order status updated",
		ID:      id,
		Status:  status,
	})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.FromError(w, h.logger, err, "failed to delete order", "order_id", id)
		return
	}

	h.logger.Info("order deleted", "order_id", id)
	respond.Message(w, h.logger, http.StatusOK, fmt.Sprintf("order %s deleted", id))
}
