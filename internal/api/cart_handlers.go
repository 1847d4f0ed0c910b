package api

import (
	"context"
	"net/http"

	"github.com/example/tg-storefront/internal/domain/cart"
	"github.com/example/tg-storefront/internal/domain/product"
	"github.com/example/tg-storefront/internal/money"
	"github.com/example/tg-storefront/internal/storefront"
	"github.com/shopspring/decimal"
)

// CartLineView is one rendered cart line.
type CartLineView struct {
	Product       ProductView     `json:"product"`
	Packs         int             `json:"packs"`
	Units         int             `json:"units"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	SubtotalLabel string          `json:"subtotal_label"`
}

// CartResponse is the cart with its derived totals.
type CartResponse struct {
	Items      []CartLineView  `json:"items"`
	Total      decimal.Decimal `json:"total"`
	TotalLabel string          `json:"total_label"`
	ItemsCount int             `json:"items_count"`
	Empty      bool            `json:"empty"`
}

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Packs     int   `json:"packs"`
}

type updateItemRequest struct {
	Packs int `json:"packs"`
}

func (h *Handlers) cartResponse(c *cart.Store) CartResponse {
	lines := c.Lines()
	items := make([]CartLineView, len(lines))
	for i, l := range lines {
		subtotal := cart.LineSubtotal(l)
		items[i] = CartLineView{
			Product:       h.productView(l.Product),
			Packs:         l.Packs,
			Units:         cart.LineUnits(l),
			Subtotal:      subtotal,
			SubtotalLabel: money.FormatRub(subtotal),
		}
	}
	total := cart.Total(lines)
	return CartResponse{
		Items:      items,
		Total:      total,
		TotalLabel: money.FormatRub(total),
		ItemsCount: cart.ItemCount(lines),
		Empty:      len(lines) == 0,
	}
}

// lookupProduct prefers the snapshot already shown in the listing, so the
// cart keeps what the customer saw.
func (h *Handlers) lookupProduct(ctx context.Context, s *storefront.Session, id int64) (product.Product, error) {
	for _, p := range s.Catalog.Snapshot().Items {
		if p.ID == id {
			return p, nil
		}
	}
	p, err := h.shop.GetProduct(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	return *p, nil
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	respondJSON(w, http.StatusOK, h.cartResponse(s.Cart))
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ProductID <= 0 {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.lookupProduct(r.Context(), s, req.ProductID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := s.Cart.AddProduct(r.Context(), p, req.Packs); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(s.Cart))
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	id, ok := pathID(r, "productID")
	if !ok {
		respondJSONError(w, "Invalid product id", http.StatusBadRequest)
		return
	}
	var req updateItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.Cart.UpdateQuantity(r.Context(), id, req.Packs); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(s.Cart))
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	id, ok := pathID(r, "productID")
	if !ok {
		respondJSONError(w, "Invalid product id", http.StatusBadRequest)
		return
	}
	if err := s.Cart.RemoveItem(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(s.Cart))
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	if err := s.Cart.Clear(r.Context()); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.cartResponse(s.Cart))
}

// ValidateCart asks the shop whether the cart can be ordered as is.
func (h *Handlers) ValidateCart(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	result, err := s.Checkout.Preview(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
