package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/example/tg-storefront/internal/domain/product"
	log "github.com/sirupsen/logrus"
)

var ErrSubcategoryWithoutCategory = errors.New("subcategory filter requires a category")

// ProductAPI is the remote product listing.
type ProductAPI interface {
	ListProducts(ctx context.Context, q product.ListQuery) (*product.ListPage, error)
}

// CategoryAPI is the remote category tree.
type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]product.Category, error)
}

// Filter changes the listing. Nil fields are left as they are.
type Filter struct {
	CategoryID    *int64
	SubcategoryID *int64
	Search        *string
	Sort          *product.SortKey

	// ClearCategory drops both the category and the subcategory filter.
	ClearCategory bool
}

// State is a copy of the session state for rendering.
type State struct {
	CategoryID    *int64            `json:"category_id"`
	SubcategoryID *int64            `json:"subcategory_id"`
	Search        string            `json:"search"`
	Sort          product.SortKey   `json:"sort"`
	Page          int               `json:"page"`
	PageSize      int               `json:"page_size"`
	Items         []product.Product `json:"items"`
	Total         int               `json:"total"`
	HasMore       bool              `json:"has_more"`
	Loading       bool              `json:"loading"`
}

// request is one issued page load. seq identifies it; only the response of
// the latest issued request is applied.
type request struct {
	seq      uint64
	query    product.ListQuery
	reset    bool
	prevPage int
}

type Option func(*Session)

func WithPageSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.state.PageSize = n
		}
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(s *Session) { s.logger = logger }
}

// WithLoadObserver registers a callback run after every applied page load.
func WithLoadObserver(fn func(page int, items int, err error)) Option {
	return func(s *Session) { s.onLoad = fn }
}

// Session tracks filter, sort and pagination of one catalog view and pages
// products in from the product API.
type Session struct {
	products   ProductAPI
	categories CategoryAPI
	logger     *log.Entry
	onLoad     func(page int, items int, err error)

	mu            sync.Mutex
	state         State
	seq           uint64
	pageLoaded    bool
	categoryCache []product.Category
}

func NewSession(products ProductAPI, categories CategoryAPI, opts ...Option) *Session {
	s := &Session{
		products:   products,
		categories: categories,
		logger:     log.WithField("component", "catalog"),
		state: State{
			Sort:     product.DefaultSort,
			Page:     1,
			PageSize: product.DefaultPageSize,
			Items:    make([]product.Product, 0),
			HasMore:  true,
		},
		categoryCache: make([]product.Category, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetFilter applies f, resets the listing to page 1 and reloads it. A filter
// reload supersedes any request still in flight.
func (s *Session) SetFilter(ctx context.Context, f Filter) error {
	s.mu.Lock()
	if err := s.applyFilter(f); err != nil {
		s.mu.Unlock()
		return err
	}
	req := s.begin(true)
	s.mu.Unlock()

	return s.fetch(ctx, req)
}

// applyFilter validates f against the current state and mutates it only when
// the combination is valid. Callers hold s.mu.
func (s *Session) applyFilter(f Filter) error {
	category := s.state.CategoryID
	subcategory := s.state.SubcategoryID

	if f.ClearCategory {
		category, subcategory = nil, nil
	}
	if f.CategoryID != nil && !sameID(category, f.CategoryID) {
		id := *f.CategoryID
		category, subcategory = &id, nil
	}
	if f.SubcategoryID != nil {
		id := *f.SubcategoryID
		subcategory = &id
	}
	if subcategory != nil && category == nil {
		return ErrSubcategoryWithoutCategory
	}

	sort := s.state.Sort
	if f.Sort != nil {
		if !f.Sort.Valid() {
			return fmt.Errorf("%w: %q", product.ErrUnknownSortKey, *f.Sort)
		}
		sort = *f.Sort
	}

	s.state.CategoryID = category
	s.state.SubcategoryID = subcategory
	s.state.Sort = sort
	if f.Search != nil {
		s.state.Search = *f.Search
	}
	return nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// LoadPage requests the current page. With reset the listing restarts at
// page 1 and the results are replaced instead of appended. It is a no-op
// while another load is running.
func (s *Session) LoadPage(ctx context.Context, reset bool) error {
	s.mu.Lock()
	if s.state.Loading {
		s.mu.Unlock()
		return nil
	}
	req := s.begin(reset)
	s.mu.Unlock()

	return s.fetch(ctx, req)
}

// LoadMore requests the next page. It is a no-op when everything is loaded
// or a load is running. Before any page has been applied it loads page 1.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if !s.state.HasMore || s.state.Loading {
		s.mu.Unlock()
		return nil
	}
	if !s.pageLoaded {
		req := s.begin(true)
		s.mu.Unlock()
		return s.fetch(ctx, req)
	}
	prev := s.state.Page
	s.state.Page++
	req := s.begin(false)
	req.prevPage = prev
	s.mu.Unlock()

	return s.fetch(ctx, req)
}

// begin issues a new request sequence number and enters Loading. Callers
// hold s.mu.
func (s *Session) begin(reset bool) request {
	if reset {
		s.pageLoaded = false
		s.state.Page = 1
		s.state.Items = make([]product.Product, 0)
		s.state.Total = 0
		s.state.HasMore = true
	}
	s.state.Loading = true
	s.seq++

	return request{
		seq:      s.seq,
		reset:    reset,
		prevPage: s.state.Page,
		query: product.ListQuery{
			CategoryID:    copyID(s.state.CategoryID),
			SubcategoryID: copyID(s.state.SubcategoryID),
			Search:        s.state.Search,
			Sort:          s.state.Sort,
			Page:          s.state.Page,
			Limit:         s.state.PageSize,
		},
	}
}

func (s *Session) fetch(ctx context.Context, req request) error {
	page, err := s.products.ListProducts(ctx, req.query)

	s.mu.Lock()
	if req.seq != s.seq {
		s.mu.Unlock()
		s.logger.WithFields(log.Fields{
			"seq":    req.seq,
			"latest": s.latestSeq(),
			"page":   req.query.Page,
		}).Debug("discarding stale product page")
		return nil
	}

	s.state.Loading = false
	if err != nil {
		// a failed load-more must request the same page again on retry
		s.state.Page = req.prevPage
		s.mu.Unlock()
		s.loaded(req.query.Page, 0, err)
		return fmt.Errorf("failed to load products: %w", err)
	}

	items := page.Items
	if items == nil {
		items = make([]product.Product, 0)
	}
	if req.reset {
		s.state.Items = append(make([]product.Product, 0, len(items)), items...)
	} else {
		s.state.Items = append(s.state.Items, items...)
	}
	s.state.Total = page.Total
	s.state.HasMore = len(items) >= s.state.PageSize
	s.pageLoaded = true
	s.mu.Unlock()

	s.loaded(req.query.Page, len(items), nil)
	return nil
}

func (s *Session) latestSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func (s *Session) loaded(page, items int, err error) {
	if err != nil {
		s.logger.WithError(err).WithField("page", page).Warn("failed to load products")
	}
	if s.onLoad != nil {
		s.onLoad(page, items, err)
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	st.CategoryID = copyID(s.state.CategoryID)
	st.SubcategoryID = copyID(s.state.SubcategoryID)
	st.Items = make([]product.Product, len(s.state.Items))
	for i, p := range s.state.Items {
		st.Items[i] = p.Clone()
	}
	return st
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// LoadCategories fetches the category tree and caches it. On failure the
// cached tree is emptied and the error returned.
func (s *Session) LoadCategories(ctx context.Context) ([]product.Category, error) {
	categories, err := s.categories.ListCategories(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.categoryCache = make([]product.Category, 0)
		s.logger.WithError(err).Warn("failed to load categories")
		return s.categoryCache, fmt.Errorf("failed to load categories: %w", err)
	}
	if categories == nil {
		categories = make([]product.Category, 0)
	}
	s.categoryCache = categories
	return categories, nil
}

// Categories returns the cached category tree.
func (s *Session) Categories() []product.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]product.Category, len(s.categoryCache))
	copy(out, s.categoryCache)
	return out
}
