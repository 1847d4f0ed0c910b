package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/example/tg-storefront/internal/domain/order"
	"github.com/example/tg-storefront/internal/domain/product"
	"github.com/example/tg-storefront/internal/infrastructure/store"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// StorageKey is the blob key the cart is persisted under.
const StorageKey = "shop_cart"

// Line pairs a product snapshot, taken when the product was added, with a
// pack count. Later price or name changes of the product never reach it.
type Line struct {
	Product product.Product `json:"product"`
	Packs   int             `json:"packs"`
}

// Store is an ordered cart persisted as one blob. Every mutation writes the
// whole line sequence before returning.
type Store struct {
	mu        sync.Mutex
	blobs     store.BlobStore
	lines     []Line
	revision  int
	observers []Observer
	logger    *log.Entry
}

// NewStore returns an empty cart backed by blobs. Nothing is read or written
// until the first call.
func NewStore(blobs store.BlobStore) *Store {
	return &Store{
		blobs:  blobs,
		lines:  make([]Line, 0),
		logger: log.WithField("component", "cart"),
	}
}

// Open creates a store and restores its lines from blobs.
func Open(ctx context.Context, blobs store.BlobStore) *Store {
	s := NewStore(blobs)
	s.Restore(ctx)
	return s
}

// Restore replaces the in-memory lines with the persisted ones. A missing,
// unreadable or corrupt blob leaves the cart empty; it is never an error.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	lines, revision := s.load(ctx)
	s.lines = lines
	s.revision = revision
	totals := totalsOf(s.lines)
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeRestored, Totals: totals})
}

func (s *Store) load(ctx context.Context) ([]Line, int) {
	blob, ok, err := s.blobs.Get(ctx, StorageKey)
	if err != nil {
		s.logger.WithError(err).Warn("failed to read cart, starting empty")
		return make([]Line, 0), 0
	}
	if !ok {
		return make([]Line, 0), 0
	}

	var lines []Line
	snap, err := store.DecodeSnapshot(blob, &lines)
	if err == nil {
		return sanitize(lines), snap.Revision
	}

	// carts written before the snapshot envelope are a bare JSON array
	var legacy []Line
	if legacyErr := json.Unmarshal(blob, &legacy); legacyErr == nil {
		return sanitize(legacy), 0
	}

	s.logger.WithError(err).Warn("failed to load cart, starting empty")
	return make([]Line, 0), 0
}

// sanitize restores the line invariants on data read from storage: one line
// per product id, first position kept, packs at least 1.
func sanitize(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, l := range lines {
		if l.Packs < 1 {
			l.Packs = 1
		}
		if i, ok := index[l.Product.ID]; ok {
			out[i].Packs += l.Packs
			continue
		}
		index[l.Product.ID] = len(out)
		out = append(out, l)
	}
	return out
}

// Subscribe registers an observer for all subsequent changes.
func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// AddProduct appends a snapshot of p, or increments the packs of its line.
// packs <= 0 counts as 1. Stock is not checked here.
func (s *Store) AddProduct(ctx context.Context, p product.Product, packs int) error {
	if packs < 1 {
		packs = 1
	}

	s.mu.Lock()
	if i := s.indexOf(p.ID); i >= 0 {
		s.lines[i].Packs += packs
		packs = s.lines[i].Packs
	} else {
		s.lines = append(s.lines, Line{Product: p.Normalized().Clone(), Packs: packs})
	}
	change := s.commit(ctx, ChangeAdded, p.ID, packs)
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// UpdateQuantity sets the packs of a line to max(1, packs). Unknown ids are
// ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, packs int) error {
	if packs < 1 {
		packs = 1
	}

	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.lines[i].Packs = packs
	change := s.commit(ctx, ChangeUpdated, productID, packs)
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// RemoveItem drops the line of productID if there is one.
func (s *Store) RemoveItem(ctx context.Context, productID int64) error {
	s.mu.Lock()
	if i := s.indexOf(productID); i >= 0 {
		s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	}
	change := s.commit(ctx, ChangeRemoved, productID, 0)
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// Clear empties the cart and persists the empty sequence.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.lines = make([]Line, 0)
	change := s.commit(ctx, ChangeCleared, 0, 0)
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// RemoveOrdered takes the packs of an accepted order out of the cart. Lines
// that grew while the order was in flight keep the difference; lines added
// meanwhile are untouched.
func (s *Store) RemoveOrdered(ctx context.Context, items []order.LineItem) error {
	ordered := make(map[int64]int, len(items))
	for _, item := range items {
		ordered[item.ProductID] += item.QuantityPacks
	}

	s.mu.Lock()
	kept := make([]Line, 0, len(s.lines))
	for _, l := range s.lines {
		if packs, ok := ordered[l.Product.ID]; ok {
			l.Packs -= packs
			if l.Packs < 1 {
				continue
			}
		}
		kept = append(kept, l)
	}
	s.lines = kept
	change := s.commit(ctx, ChangeOrdered, 0, 0)
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// commit persists the current lines; callers hold s.mu. A failed write is
// logged and the in-memory state stays authoritative.
func (s *Store) commit(ctx context.Context, kind ChangeKind, productID int64, packs int) Change {
	s.revision++
	blob, err := store.EncodeSnapshot(StorageKey, s.revision, s.lines)
	if err == nil {
		err = s.blobs.Set(ctx, StorageKey, blob)
	}
	if err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"change":   kind,
			"revision": s.revision,
		}).Error("failed to save cart")
	}

	return Change{
		Kind:      kind,
		ProductID: productID,
		Packs:     packs,
		Totals:    totalsOf(s.lines),
	}
}

func (s *Store) notify(change Change) {
	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o(change)
	}
}

func (s *Store) indexOf(productID int64) int {
	for i, l := range s.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Total is the cart total, unrounded.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Total(s.lines)
}

// ItemsCount is the number of packs in the cart.
func (s *Store) ItemsCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ItemCount(s.lines)
}

func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalsOf(s.lines)
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) == 0
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	for i, l := range s.lines {
		out[i] = Line{Product: l.Product.Clone(), Packs: l.Packs}
	}
	return out
}

func (s *Store) Line(productID int64) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(productID); i >= 0 {
		l := s.lines[i]
		return Line{Product: l.Product.Clone(), Packs: l.Packs}, true
	}
	return Line{}, false
}

// APIItems returns the (product_id, quantity_packs) pairs sent to the order
// and cart validation endpoints.
func (s *Store) APIItems() []order.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]order.LineItem, len(s.lines))
	for i, l := range s.lines {
		items[i] = order.LineItem{ProductID: l.Product.ID, QuantityPacks: l.Packs}
	}
	return items
}
