package product

import (
	"errors"
	"strings"
)

var ErrCategoryNotFound = errors.New("category not found")

// catchAllSubcategory is the name of the placeholder subcategory the importer
// creates in every category. Menus hide it.
const catchAllSubcategory = "Все"

type Subcategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Order      int    `json:"order"`
}

type Category struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Order         int           `json:"order"`
	Subcategories []Subcategory `json:"subcategories"`
}

// VisibleSubcategories returns the subcategories a menu lists.
func (c Category) VisibleSubcategories() []Subcategory {
	out := make([]Subcategory, 0, len(c.Subcategories))
	for _, s := range c.Subcategories {
		if s.Name == catchAllSubcategory {
			continue
		}
		out = append(out, s)
	}
	return out
}

// HasSubcategory reports whether id belongs to c.
func (c Category) HasSubcategory(id int64) bool {
	for _, s := range c.Subcategories {
		if s.ID == id {
			return true
		}
	}
	return false
}

// FindCategory looks a category up by id.
func FindCategory(categories []Category, id int64) (Category, error) {
	for _, c := range categories {
		if c.ID == id {
			return c, nil
		}
	}
	return Category{}, ErrCategoryNotFound
}

// CategoryInput is the admin payload for creating or renaming a category.
type CategoryInput struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrInvalidName
	}
	return nil
}

// SubcategoryInput is the admin payload for creating a subcategory.
type SubcategoryInput struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Order      int    `json:"order"`
}

func (in SubcategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrInvalidName
	}
	if in.CategoryID <= 0 {
		return ErrCategoryNotFound
	}
	return nil
}
