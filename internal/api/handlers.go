package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/example/tg-storefront/internal/api/middleware"
	"github.com/example/tg-storefront/internal/apiclient"
	"github.com/example/tg-storefront/internal/auth"
	"github.com/example/tg-storefront/internal/catalog"
	"github.com/example/tg-storefront/internal/domain/checkout"
	"github.com/example/tg-storefront/internal/domain/order"
	"github.com/example/tg-storefront/internal/domain/product"
	"github.com/example/tg-storefront/internal/storefront"
	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

// ShopAPI is what the handlers need from the remote shop beyond the
// per-session core.
type ShopAPI interface {
	GetProduct(ctx context.Context, id int64) (*product.Product, error)
	ImageURL(ref, size string) string
	ImageRedirectURL(ref, size string) string
}

// CheckoutRecorder counts checkout outcomes.
type CheckoutRecorder interface {
	RecordCheckout(outcome string)
}

// Handlers serves the storefront endpoints of the Mini App.
type Handlers struct {
	sessions *storefront.Registry
	shop     ShopAPI
	recorder CheckoutRecorder
	logger   *log.Entry
}

func NewHandlers(sessions *storefront.Registry, shop ShopAPI, recorder CheckoutRecorder) *Handlers {
	return &Handlers{
		sessions: sessions,
		shop:     shop,
		recorder: recorder,
		logger:   log.WithField("component", "api"),
	}
}

// session resolves the storefront session of the caller.
func (h *Handlers) session(r *http.Request) (*storefront.Session, error) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return h.sessions.Session(r.Context(), claims.SessionKey(), claims.TelegramUserID)
}

// withSession runs fn with the caller's session or answers with an error.
func (h *Handlers) withSession(fn func(w http.ResponseWriter, r *http.Request, s *storefront.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.session(r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		fn(w, r, s)
	}
}

func (h *Handlers) recordCheckout(outcome string) {
	if h.recorder != nil {
		h.recorder.RecordCheckout(outcome)
	}
}

// Health answers liveness probes.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondError maps domain and transport errors to HTTP answers.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *checkout.ValidationError
	switch {
	case errors.As(err, &validation):
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": validation.Message(),
			"kind":  string(validation.Kind),
		})
	case errors.Is(err, product.ErrUnknownSortKey),
		errors.Is(err, catalog.ErrSubcategoryWithoutCategory),
		errors.Is(err, product.ErrInvalidName),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidPackSize),
		errors.Is(err, product.ErrCategoryNotFound),
		errors.Is(err, order.ErrUnknownStatus):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, order.ErrInvalidStatus):
		respondJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, product.ErrProductNotFound), errors.Is(err, apiclient.ErrNotFound):
		respondJSONError(w, "not found", http.StatusNotFound)
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		respondJSONError(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, apiclient.ErrTransport):
		h.logger.WithError(err).WithField("path", r.URL.Path).Warn("shop api call failed")
		respondJSONError(w, "shop service unavailable", http.StatusBadGateway)
	default:
		h.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		respondJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// pathID parses the {name} URL parameter as a positive id.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryID parses an optional positive id query parameter.
func queryID(r *http.Request, name string) (*int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}
