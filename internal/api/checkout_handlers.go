package api

import (
	"errors"
	"net/http"

	"github.com/example/tg-storefront/internal/domain/checkout"
	"github.com/example/tg-storefront/internal/domain/order"
	"github.com/example/tg-storefront/internal/metrics"
	"github.com/example/tg-storefront/internal/storefront"
)

// Checkout submits the cart as an order.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	var draft checkout.Draft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := s.Checkout.Submit(r.Context(), draft)
	if err != nil {
		var validation *checkout.ValidationError
		if errors.As(err, &validation) {
			h.recordCheckout(metrics.CheckoutRejected)
		} else {
			h.recordCheckout(metrics.CheckoutFailed)
		}
		h.respondError(w, r, err)
		return
	}

	h.recordCheckout(metrics.CheckoutSubmitted)
	h.logger.WithField("order_id", created.ID).Info("order submitted")
	respondJSON(w, http.StatusCreated, created)
}

// ValidateDraft checks a draft without submitting it.
func (h *Handlers) ValidateDraft(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	var draft checkout.Draft
	if err := decodeJSON(w, r, &draft); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Checkout.Validate(draft); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// GetOrders lists the caller's orders. Anonymous callers get an empty list.
func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request, s *storefront.Session) {
	orders, err := s.Checkout.Orders(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if orders == nil {
		orders = make([]order.Order, 0)
	}
	respondJSON(w, http.StatusOK, order.ListResponse{Orders: orders})
}
