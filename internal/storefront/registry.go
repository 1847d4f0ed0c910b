package storefront

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/tg-storefront/internal/auth"
	"github.com/example/tg-storefront/internal/catalog"
	"github.com/example/tg-storefront/internal/domain/cart"
	"github.com/example/tg-storefront/internal/domain/checkout"
	"github.com/example/tg-storefront/internal/infrastructure/store"
	log "github.com/sirupsen/logrus"
)

// Backend is the remote shop API a session talks to.
type Backend interface {
	catalog.ProductAPI
	catalog.CategoryAPI
	checkout.OrderAPI
}

// Metrics receives session level observations. All methods must be safe for
// concurrent use.
type Metrics interface {
	RecordCartMutation(kind string)
	RecordCatalogLoad(page, items int, err error)
	SessionOpened()
	SessionClosed()
}

// Session is the per-user storefront core: one cart, one catalog listing and
// one checkout flow.
type Session struct {
	Key      string
	Cart     *cart.Store
	Catalog  *catalog.Session
	Checkout *checkout.Service
	Remember *auth.Rememberer

	lastSeen time.Time
}

// Config controls session construction.
type Config struct {
	PageSize  int
	IdleTTL   time.Duration
	Publisher checkout.EventPublisher
	Metrics   Metrics
}

// Registry owns the sessions of all users, keyed by session key.
type Registry struct {
	backend Backend
	blobs   store.BlobStore
	jwt     *auth.JWTService
	cfg     Config
	logger  *log.Entry
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(backend Backend, blobs store.BlobStore, jwtService *auth.JWTService, cfg Config) *Registry {
	return &Registry{
		backend:  backend,
		blobs:    blobs,
		jwt:      jwtService,
		cfg:      cfg,
		logger:   log.WithField("component", "storefront"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Session returns the session for key, opening it (and restoring its cart)
// on first use. telegramUserID is refreshed on every call.
func (r *Registry) Session(ctx context.Context, key string, telegramUserID int64) (*Session, error) {
	if key == "" {
		return nil, fmt.Errorf("failed to open session: empty session key")
	}

	if s, ok := r.lookup(key, telegramUserID); ok {
		return s, nil
	}

	// The cart restore reads storage, so it runs without holding r.mu.
	opened := r.open(ctx, key, telegramUserID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[key]; ok {
		s.lastSeen = r.now()
		s.Checkout.SetTelegramUser(telegramUserID)
		return s, nil
	}
	s := opened
	r.sessions[key] = s
	if r.cfg.Metrics != nil {
		r.cfg.Metrics.SessionOpened()
	}
	r.logger.WithField("session", key).Debug("session opened")
	return s, nil
}

func (r *Registry) lookup(key string, telegramUserID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if ok {
		s.lastSeen = r.now()
		s.Checkout.SetTelegramUser(telegramUserID)
	}
	return s, ok
}

func (r *Registry) open(ctx context.Context, key string, telegramUserID int64) *Session {
	blobs := store.NewNamespaced(r.blobs, key)
	logger := r.logger.WithField("session", key)

	c := cart.Open(ctx, blobs)
	if m := r.cfg.Metrics; m != nil {
		c.Subscribe(func(ch cart.Change) {
			m.RecordCartMutation(string(ch.Kind))
		})
	}

	catalogOpts := []catalog.Option{catalog.WithLogger(logger.WithField("component", "catalog"))}
	if r.cfg.PageSize > 0 {
		catalogOpts = append(catalogOpts, catalog.WithPageSize(r.cfg.PageSize))
	}
	if m := r.cfg.Metrics; m != nil {
		catalogOpts = append(catalogOpts, catalog.WithLoadObserver(m.RecordCatalogLoad))
	}

	checkoutOpts := []checkout.Option{
		checkout.WithTelegramUser(telegramUserID),
		checkout.WithLogger(logger.WithField("component", "checkout")),
	}
	if r.cfg.Publisher != nil {
		checkoutOpts = append(checkoutOpts, checkout.WithPublisher(r.cfg.Publisher))
	}

	return &Session{
		Key:      key,
		Cart:     c,
		Catalog:  catalog.NewSession(r.backend, r.backend, catalogOpts...),
		Checkout: checkout.NewService(r.backend, c, checkoutOpts...),
		Remember: auth.NewRememberer(blobs, r.jwt),
		lastSeen: r.now(),
	}
}

// Promote moves the cart of an anonymous session into the session of an
// identified user, then drops the anonymous session. Lines already in the
// target cart get the anonymous packs added.
func (r *Registry) Promote(ctx context.Context, fromKey, toKey string, telegramUserID int64) (*Session, error) {
	to, err := r.Session(ctx, toKey, telegramUserID)
	if err != nil {
		return nil, err
	}
	if fromKey == "" || fromKey == toKey {
		return to, nil
	}

	from, err := r.Session(ctx, fromKey, 0)
	if err != nil {
		return nil, err
	}
	lines := from.Cart.Lines()
	for _, line := range lines {
		if err := to.Cart.AddProduct(ctx, line.Product, line.Packs); err != nil {
			return nil, fmt.Errorf("failed to move cart line %d: %w", line.Product.ID, err)
		}
	}
	if err := from.Cart.Clear(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear anonymous cart: %w", err)
	}
	r.Close(fromKey)

	r.logger.WithFields(log.Fields{
		"from":  fromKey,
		"to":    toKey,
		"lines": len(lines),
	}).Info("anonymous cart promoted")
	return to, nil
}

// Close forgets the in-memory session. Its cart stays persisted.
func (r *Registry) Close(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked(key)
}

func (r *Registry) closeLocked(key string) {
	if _, ok := r.sessions[key]; !ok {
		return
	}
	delete(r.sessions, key)
	if r.cfg.Metrics != nil {
		r.cfg.Metrics.SessionClosed()
	}
}

// Sweep closes sessions idle for longer than the configured TTL and returns
// how many were closed.
func (r *Registry) Sweep() int {
	if r.cfg.IdleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.cfg.IdleTTL)
	closed := 0
	for key, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			r.closeLocked(key)
			closed++
		}
	}
	return closed
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Run sweeps idle sessions until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.WithField("closed", n).Debug("idle sessions swept")
			}
		}
	}
}
