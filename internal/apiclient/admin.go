package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/example/tg-storefront/internal/domain/order"
	"github.com/example/tg-storefront/internal/domain/product"
)

// AdminProductLimit is the page size the admin console lists products with.
const AdminProductLimit = 100

// Message is the generic confirmation body of admin mutations.
type Message struct {
	Message string `json:"message"`
	ID      *int64 `json:"id,omitempty"`
}

// CheckAdmin asks the API whether userID is an administrator. A 403 answer
// is a plain "no".
func (c *Client) CheckAdmin(ctx context.Context, userID int64) (bool, error) {
	err := c.do(ctx, call{
		op:     "check_admin",
		method: http.MethodPost,
		path:   "/api/admin/check",
		body:   map[string]int64{"user_id": userID},
	})
	if StatusCode(err) == http.StatusForbidden {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) CreateCategory(ctx context.Context, in product.CategoryInput) (*product.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var created product.Category
	err := c.do(ctx, call{op: "create_category", method: http.MethodPost, path: "/api/categories", body: in, out: &created})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id int64, in product.CategoryInput) (*product.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var updated product.Category
	err := c.do(ctx, call{op: "update_category", method: http.MethodPut, path: "/api/categories/" + itoa(id), body: in, out: &updated})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: "delete_category", method: http.MethodDelete, path: "/api/categories/" + itoa(id)})
}

func (c *Client) CreateSubcategory(ctx context.Context, in product.SubcategoryInput) (*product.Subcategory, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var created product.Subcategory
	err := c.do(ctx, call{
		op:     "create_subcategory",
		method: http.MethodPost,
		path:   "/api/categories/" + itoa(in.CategoryID) + "/subcategories",
		body:   in,
		out:    &created,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteSubcategory(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: "delete_subcategory", method: http.MethodDelete, path: "/api/categories/subcategories/" + itoa(id)})
}

// AdminProducts lists up to AdminProductLimit products, newest first.
func (c *Client) AdminProducts(ctx context.Context, categoryID *int64) ([]product.Product, error) {
	page, err := c.ListProducts(ctx, product.ListQuery{
		CategoryID: categoryID,
		Sort:       product.SortNewest,
		Page:       1,
		Limit:      AdminProductLimit,
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *Client) CreateProduct(ctx context.Context, in product.Input) (*product.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var created product.Product
	err := c.do(ctx, call{op: "create_product", method: http.MethodPost, path: "/api/products", body: in, out: &created})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct sends only the fields set in patch.
func (c *Client) UpdateProduct(ctx context.Context, id int64, patch product.Patch) (*product.Product, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var updated product.Product
	err := c.do(ctx, call{op: "update_product", method: http.MethodPut, path: "/api/products/" + itoa(id), body: patch, out: &updated})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, call{op: "delete_product", method: http.MethodDelete, path: "/api/products/" + itoa(id)})
}

// UpdateOrderStatus moves an order to status. The transition is checked
// against from before anything is sent.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, from, to order.Status) error {
	if err := from.CheckTransition(to); err != nil {
		return err
	}
	return c.do(ctx, call{
		op:     "update_order_status",
		method: http.MethodPut,
		path:   "/api/orders/" + itoa(id) + "/status",
		query:  url.Values{"status": {string(to)}},
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
