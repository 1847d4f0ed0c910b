package api

import (
	"context"
	"net/http"

	"github.com/example/tg-storefront/internal/domain/order"
	"github.com/example/tg-storefront/internal/domain/product"
	log "github.com/sirupsen/logrus"
)

// AdminAPI is the admin surface of the shop API.
type AdminAPI interface {
	ListCategories(ctx context.Context) ([]product.Category, error)
	CreateCategory(ctx context.Context, in product.CategoryInput) (*product.Category, error)
	UpdateCategory(ctx context.Context, id int64, in product.CategoryInput) (*product.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CreateSubcategory(ctx context.Context, in product.SubcategoryInput) (*product.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id int64) error
	AdminProducts(ctx context.Context, categoryID *int64) ([]product.Product, error)
	CreateProduct(ctx context.Context, in product.Input) (*product.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch product.Patch) (*product.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UpdateOrderStatus(ctx context.Context, id int64, from, to order.Status) error
}

// AdminHandlers forwards the admin console to the shop API
type AdminHandlers struct {
	api    AdminAPI
	base   *Handlers
	logger *log.Entry
}

// NewAdminHandlers creates a new AdminHandlers instance
func NewAdminHandlers(api AdminAPI, base *Handlers) *AdminHandlers {
	return &AdminHandlers{
		api:    api,
		base:   base,
		logger: log.WithField("component", "admin"),
	}
}

type statusUpdateRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h *AdminHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.api.ListCategories(r.Context())
	if err != nil {
		h.base.respondError(w, r, err)
		return
	}
	if categories == nil {
		categories = make([]product.Category, 0)
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *AdminHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in product.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.api.CreateCategory(r.Context(), in)
	if err != nil {
		h.base.respondError(w, r, err)
		return
	}
	h.logger.WithField("category_id", created.ID).Info("category created")
	respondJSON(w, http.StatusCreated, created)
}

func (h *AdminHandlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSONError(w, "Invalid category id", http.StatusBadRequest)
		return
	}
	var in product.CategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	updated, err := h.api.UpdateCategory(r.Context(), id, in)
	if err != nil {
		h.base.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *AdminHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSONError(w, "Invalid category id", http.StatusBadRequest)
		return
	}
	if err := h.api.DeleteCategory(r.Context(), id); err != nil {
		h.base.respondError(w, r, err)
		return
	}
	h.logger.WithField("category_id", id).Info("category deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) CreateSubcategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(r, "id")
	if !ok {
		respondJSONError(w, "Invalid category id", http.StatusBadRequest)
		return
	}
	var in product.SubcategoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	in.CategoryID = categoryID

	created, err := h.api.CreateSubcategory(r.Context(), in)
	if err != nil {
		h.base.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *AdminHandlers) DeleteSubcategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSONError(w, "Invalid subcategory id", http.StatusBadRequest)
		return
	}
	if err := h.api.DeleteSubcategory(r.Context(), id); err != nil {
		h.base.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := queryID(r, "category_id")
	if !ok {
		respondJSONError(w, "Invalid category id", http.StatusBadRequest)
		return
	}
	products, err := h.api.AdminProducts(r.Context(), categoryID)
	if err != nil {
		h.base.respondError(w, r, err)
		return
	}
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = h.base.productView(p)
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": views})
}

func (h *AdminHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.Input
	if err := decodeJSON(w, r, &in); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.api.CreateProduct(r.Context(), in)
	if err != nil {
		h.base.respondError(w, r, err)
		return
	}
	h.logger.WithField("product_id", created.ID).Info("product created")
	respondJSON(w, http.StatusCreated, created)
}

func (h *AdminHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSONError(w, "Invalid product id", http.StatusBadRequest)
		return
	}
	var patch product.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	updated, err := h.api.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		h.base.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *AdminHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSONError(w, "Invalid product id", http.StatusBadRequest)
		return
	}
	if err := h.api.DeleteProduct(r.Context(), id); err != nil {
		h.base.respondError(w, r, err)
		return
	}
	h.logger.WithField("product_id", id).Info("product deleted")
	w.WriteHeader(http.StatusNoContent)
}

// UpdateOrderStatus moves an order along its lifecycle.
func (h *AdminHandlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSONError(w, "Invalid order id", http.StatusBadRequest)
		return
	}
	var req statusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	from, err := order.ParseStatus(req.From)
	if err != nil {
		h.base.respondError(w, r, err)
		return
	}
	to, err := order.ParseStatus(req.To)
	if err != nil {
		h.base.respondError(w, r, err)
		return
	}

	if err := h.api.UpdateOrderStatus(r.Context(), id, from, to); err != nil {
		h.base.respondError(w, r, err)
		return
	}
	h.logger.WithFields(log.Fields{"order_id": id, "status": to}).Info("order status updated")
	respondJSON(w, http.StatusOK, map[string]string{"status": string(to), "label": to.Label()})
}
