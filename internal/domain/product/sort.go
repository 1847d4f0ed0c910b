package product

import (
	"errors"
	"fmt"
)

var ErrUnknownSortKey = errors.New("unknown sort key")

// SortKey is one of the orderings the product listing accepts.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
)

// DefaultSort is what the storefront opens with.
const DefaultSort = SortNameAsc

var sortKeys = []SortKey{SortNewest, SortOldest, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc}

// SortKeys lists every accepted key in menu order.
func SortKeys() []SortKey {
	out := make([]SortKey, len(sortKeys))
	copy(out, sortKeys)
	return out
}

func (k SortKey) Valid() bool {
	for _, s := range sortKeys {
		if s == k {
			return true
		}
	}
	return false
}

// ParseSortKey maps a query value to a SortKey. Empty input yields DefaultSort.
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return DefaultSort, nil
	}
	k := SortKey(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
	return k, nil
}
