package api

import (
	"net/http"

	"github.com/example/tg-storefront/internal/catalog"
	"github.com/example/tg-storefront/internal/domain/product"
	"github.com/example/tg-storefront/internal/money"
	"github.com/example/tg-storefront/internal/storefront"
)

// ProductView is a product with its display fields resolved.
type ProductView struct {
	product.Product
	Image      string `json:"image"`
	PriceLabel string `json:"price_label"`
}

// CatalogResponse is the listing state the Mini App renders.
type CatalogResponse struct {
	catalog.State
	Items []ProductView `json:"items"`
}

// FilterRequest changes the listing; absent fields keep their value.
type FilterRequest struct {
	CategoryID    *int64  `json:"category_id"`
	SubcategoryID *int64  `json:"subcategory_id"`
	Search        *string `json:"search"`
	Sort          *string `json:"sort"`
	ClearCategory bool    `json:"clear_category"`
}

func (h *Handlers) productView(p product.Product) ProductView {
	return ProductView{
		Product:    p,
		Image:      h.shop.ImageURL(p.MainImageRef(), "medium"),
		PriceLabel: money.RoundPrice(p.PricePerUnit),
	}
}

func (h *Handlers) catalogResponse(s *storefront.Session) CatalogResponse {
	state := s.Catalog.Snapshot()
	items := make([]ProductView, len(state.Items))
	for i, p := range state.Items {
		items[i] = h.productView(p)
	}
	return CatalogResponse{State: state, Items: items}
}

// GetCatalog returns the current listing, loading the first page on first use.
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	state := s.Catalog.Snapshot()
	if len(state.Items) == 0 && state.Page == 1 && state.HasMore && !state.Loading {
		if err := s.Catalog.LoadPage(r.Context(), true); err != nil {
			h.respondError(w, r, err)
			return
		}
	}
	respondJSON(w, http.StatusOK, h.catalogResponse(s))
}

// SetFilter applies a filter change and returns the reloaded first page.
func (h *Handlers) SetFilter(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	var req FilterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	f := catalog.Filter{
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		Search:        req.Search,
		ClearCategory: req.ClearCategory,
	}
	if req.Sort != nil {
		key, err := product.ParseSortKey(*req.Sort)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		f.Sort = &key
	}

	if err := s.Catalog.SetFilter(r.Context(), f); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.catalogResponse(s))
}

// LoadMore appends the next page.
func (h *Handlers) LoadMore(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	if err := s.Catalog.LoadMore(r.Context()); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.catalogResponse(s))
}

// Reload refetches the first page with the current filter.
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	if err := s.Catalog.LoadPage(r.Context(), true); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.catalogResponse(s))
}

// GetCategories returns the category tree, with placeholder subcategories
// hidden.
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	loaded, err := s.Catalog.LoadCategories(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	categories := make([]product.Category, len(loaded))
	for i, c := range loaded {
		c.Subcategories = c.VisibleSubcategories()
		categories[i] = c
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// GetProduct returns one product.
func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondJSONError(w, "Invalid product id", http.StatusBadRequest)
		return
	}
	p, err := h.shop.GetProduct(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.productView(p.Normalized()))
}

// Image redirects to the resolved image of a reference. Only the shop API
// and local assets are redirect targets.
func (h *Handlers) Image(w http.ResponseWriter, r *http.Request) {
	target := h.shop.ImageRedirectURL(r.URL.Query().Get("ref"), r.URL.Query().Get("size"))
	http.Redirect(w, r, target, http.StatusFound)
}
