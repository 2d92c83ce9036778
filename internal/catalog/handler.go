package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/respond"
)

type Store interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id int64) error
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

func (h *Handler) HandleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to list products")
		return
	}

	h.logger.Info("products listed", "count", len(products))
	respond.JSON(w, h.logger, http.StatusOK, products)
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.FromError(w, h.logger, domain.ErrProductNotFound, "")
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to get product", "product_id", id)
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, product)
}

type productRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantityInStock"`
	CategoryID      int64           `json:"categoryId"`
	MainImageURL    string          `json:"mainImageUrl"`
}

func (req productRequest) product() *domain.Product {
	return &domain.Product{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		QuantityInStock: req.QuantityInStock,
		CategoryID:      req.CategoryID,
		MainImageURL:    req.MainImageURL,
	}
}

func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	product := req.product()
	if err := product.Validate(); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	if err := h.store.CreateProduct(r.Context(), product); err != nil {
		respond.FromError(w, h.logger, err, "failed to create product")
		return
	}

	h.logger.Info("product created", "product_id", product.ID)
	respond.JSON(w, h.logger, http.StatusCreated, map[string]any{
		"message":   "product created",
		"productId": product.ID,
	})
}

func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.FromError(w, h.logger, domain.ErrProductNotFound, "")
		return
	}

	var req productRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	product := req.product()
	product.ID = id
	if err := product.Validate(); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	if err := h.store.UpdateProduct(r.Context(), product); err != nil {
		respond.FromError(w, h.logger, err, "failed to update product", "product_id", id)
		return
	}

	h.logger.Info("product updated", "product_id", id)
	respond.Message(w, h.logger, http.StatusOK, "product updated")
}

func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.FromError(w, h.logger, domain.ErrProductNotFound, "")
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		respond.FromError(w, h.logger, err, "failed to delete product", "product_id", id)
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	respond.Message(w, h.logger, http.StatusOK, "product deleted")
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		respond.FromError(w, h.logger, err, "failed to list categories")
		return
	}

	respond.JSON(w, h.logger, http.StatusOK, categories)
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (req categoryRequest) category() (*domain.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.Invalid("category name is required")
	}
	return &domain.Category{Name: name}, nil
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	category, err := req.category()
	if err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	if err := h.store.CreateCategory(r.Context(), category); err != nil {
		respond.FromError(w, h.logger, err, "failed to create category")
		return
	}

	h.logger.Info("category created", "category_id", category.ID)
	respond.JSON(w, h.logger, http.StatusCreated, category)
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.FromError(w, h.logger, domain.ErrCategoryNotFound, "")
		return
	}

	var req categoryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}

	category, err := req.category()
	if err != nil {
		respond.FromError(w, h.logger, err, "")
		return
	}
	category.ID = id

	if err := h.store.UpdateCategory(r.Context(), category); err != nil {
		respond.FromError(w, h.logger, err, "failed to update category", "category_id", id)
		return
	}

	h.logger.Info("category updated", "category_id", id)
	respond.Message(w, h.logger, http.StatusOK, "category updated")
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.FromError(w, h.logger, domain.ErrCategoryNotFound, "")
		return
	}

	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		respond.FromError(w, h.logger, err, "failed to delete category", "category_id", id)
		return
	}

	h.logger.Info("category deleted", "category_id", id)
	respond.Message(w, h.logger, http.StatusOK, "category deleted")
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}
