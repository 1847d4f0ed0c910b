package product

import (
	"net/url"
	"strconv"
)

// DefaultPageSize is the number of cards the catalog loads per page.
const DefaultPageSize = 12

// ListQuery selects one page of the product listing.
type ListQuery struct {
	CategoryID    *int64
	SubcategoryID *int64
	Search        string
	Sort          SortKey
	Page          int
	Limit         int
}

// Values encodes the query the way GET /api/products expects it. Unset
// filters are left out; sort, page and limit are always sent.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.CategoryID != nil {
		v.Set("category", strconv.FormatInt(*q.CategoryID, 10))
	}
	if q.SubcategoryID != nil {
		v.Set("subcategory", strconv.FormatInt(*q.SubcategoryID, 10))
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}

	sort := q.Sort
	if sort == "" {
		sort = DefaultSort
	}
	v.Set("sort", string(sort))

	page := q.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))

	limit := q.Limit
	if limit < 1 {
		limit = DefaultPageSize
	}
	v.Set("limit", strconv.Itoa(limit))
	return v
}

// ListPage is one page of GET /api/products.
type ListPage struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
	Pages int       `json:"pages"`
}
