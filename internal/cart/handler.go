package cart

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/joao-fontenele/storefront/internal/auth"
	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/respond"
)

type Store interface {
	Lines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	Add(ctx context.Context, userID, productID int64, quantity int) error
	Remove(ctx context.Context, userID, productID int64) error
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respond.FromError(w, h.logger, domain.ErrUnauthenticated, "")
		return
	}

	lines, err := h.store.Lines(r.Context(), id.UserID)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to get cart", "user_id", id.UserID)
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, lines)
}

type addRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  *int  `json:"quantity"`
}

func (req addRequest) quantity() (int, error) {
	if req.Quantity == nil {
		return 1, nil
	}
	if *req.Quantity < 1 {
		return 0, domain.Invalid("quantity must be at least 1")
	}
	if *req.Quantity > domain.MaxLineQuantity {
		return 0, domain.ErrQuantityTooLarge
	}
	return *req.Quantity, nil
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respond.FromError(w, h.logger, domain.ErrUnauthenticated, "")
		return
	}

	var req addRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}
	if req.ProductID <= 0 {
		respond.FromError(w, h.logger, domain.Invalid("productId is required"), "")
		return
	}
	qty, err := req.quantity()
	if err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	if err := h.store.Add(r.Context(), id.UserID, req.ProductID, qty); err != nil {
		respond.FromError(w, h.logger, err, "failed to add to cart", "user_id", id.UserID, "product_id", req.ProductID)
		return
	}

	h.logger.Info("cart line added", "user_id", id.UserID, "product_id", req.ProductID, "quantity", qty)
	respond.Message(w, h.logger, http.StatusOK, "product added to cart")
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respond.FromError(w, h.logger, domain.ErrUnauthenticated, "")
		return
	}

	productID, err := strconv.ParseInt(r.PathValue("productId"), 10, 64)
	if err != nil {
		respond.FromError(w, h.logger, domain.ErrProductNotFound, "")
		return
	}

	if err := h.store.Remove(r.Context(), id.UserID, productID); err != nil {
		respond.FromError(w, h.logger, err, "failed to remove from cart", "user_id", id.UserID, "product_id", productID)
		return
	}

	h.logger.Info("cart line removed", "user_id", id.UserID, "product_id", productID)
	respond.Message(w, h.logger, http.StatusOK, "product removed from cart")
}
