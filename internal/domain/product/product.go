package product

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidName     = errors.New("name is required")
	ErrInvalidPackSize = errors.New("pieces_per_pack must be at least 1")
)

// Image is one gallery entry of a product. Either FileID (a Telegram file id)
// or ImageURL is set.
type Image struct {
	ID       int64  `json:"id"`
	FileID   string `json:"file_id,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	IsMain   bool   `json:"is_main"`
}

// Product as served by the shop API. Cart lines keep a copy of it.
type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	PiecesPerPack int             `json:"pieces_per_pack"`
	MinOrderPacks int             `json:"min_order_packs"`
	InStock       *int            `json:"in_stock"` // nil = unlimited
	ImageURL      string          `json:"image_url,omitempty"`
	ImageFileID   string          `json:"image_file_id,omitempty"`
	Images        []Image         `json:"images,omitempty"`
	CategoryID    int64           `json:"category_id"`
	SubcategoryID *int64          `json:"subcategory_id,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Normalized returns a copy with the API defaults applied: pack size and
// minimum order default to 1 and a negative price counts as zero.
func (p Product) Normalized() Product {
	if p.PiecesPerPack < 1 {
		p.PiecesPerPack = 1
	}
	if p.MinOrderPacks < 1 {
		p.MinOrderPacks = 1
	}
	if p.PricePerUnit.IsNegative() {
		p.PricePerUnit = decimal.Zero
	}
	return p
}

// Clone returns a deep copy, so that later edits of the source never leak
// into a stored snapshot.
func (p Product) Clone() Product {
	c := p
	if p.InStock != nil {
		v := *p.InStock
		c.InStock = &v
	}
	if p.SubcategoryID != nil {
		v := *p.SubcategoryID
		c.SubcategoryID = &v
	}
	if p.Images != nil {
		c.Images = make([]Image, len(p.Images))
		copy(c.Images, p.Images)
	}
	return c
}

// Unlimited reports whether stock is not tracked for the product.
func (p Product) Unlimited() bool {
	return p.InStock == nil
}

// MainImageRef picks the image reference a card shows: the first gallery
// entry, then the legacy single-image fields. Empty when there is none.
func (p Product) MainImageRef() string {
	if len(p.Images) > 0 {
		if p.Images[0].FileID != "" {
			return p.Images[0].FileID
		}
		if p.Images[0].ImageURL != "" {
			return p.Images[0].ImageURL
		}
	}
	if p.ImageFileID != "" {
		return p.ImageFileID
	}
	return p.ImageURL
}

// Input is the admin payload for creating a product.
type Input struct {
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	PricePerUnit  decimal.Decimal `json:"price_per_unit"`
	PiecesPerPack int             `json:"pieces_per_pack"`
	MinOrderPacks int             `json:"min_order_packs"`
	InStock       *int            `json:"in_stock"`
	CategoryID    int64           `json:"category_id"`
	SubcategoryID *int64          `json:"subcategory_id,omitempty"`
	Images        []string        `json:"images,omitempty"` // file ids, first is main
	Active        bool            `json:"active"`
}

// Validate checks the fields the API rejects anyway, so the admin console
// can report them without a round trip.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrInvalidName
	}
	if !in.PricePerUnit.IsPositive() {
		return ErrInvalidPrice
	}
	if in.PiecesPerPack < 1 {
		return ErrInvalidPackSize
	}
	return nil
}

// Patch is a partial admin update; nil fields are left unchanged.
type Patch struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	PricePerUnit  *decimal.Decimal `json:"price_per_unit,omitempty"`
	PiecesPerPack *int             `json:"pieces_per_pack,omitempty"`
	MinOrderPacks *int             `json:"min_order_packs,omitempty"`
	InStock       *int             `json:"in_stock,omitempty"`
	CategoryID    *int64           `json:"category_id,omitempty"`
	SubcategoryID *int64           `json:"subcategory_id,omitempty"`
	Active        *bool            `json:"active,omitempty"`
}

func (p Patch) Validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrInvalidName
	}
	if p.PricePerUnit != nil && !p.PricePerUnit.IsPositive() {
		return ErrInvalidPrice
	}
	if p.PiecesPerPack != nil && *p.PiecesPerPack < 1 {
		return ErrInvalidPackSize
	}
	return nil
}
