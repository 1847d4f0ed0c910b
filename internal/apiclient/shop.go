package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/example/tg-storefront/internal/domain/order"
	"github.com/example/tg-storefront/internal/domain/product"
)

// ListProducts fetches one page of the product listing.
func (c *Client) ListProducts(ctx context.Context, q product.ListQuery) (*product.ListPage, error) {
	var page product.ListPage
	err := c.do(ctx, call{
		op:     "list_products",
		method: http.MethodGet,
		path:   "/api/products",
		query:  q.Values(),
		out:    &page,
	})
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		page.Items[i] = page.Items[i].Normalized()
	}
	return &page, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	err := c.do(ctx, call{
		op:     "get_product",
		method: http.MethodGet,
		path:   "/api/products/" + strconv.FormatInt(id, 10),
		out:    &p,
	})
	if err != nil {
		return nil, err
	}
	p = p.Normalized()
	return &p, nil
}

// ListCategories returns the category tree with nested subcategories.
func (c *Client) ListCategories(ctx context.Context) ([]product.Category, error) {
	var tree struct {
		Categories []product.Category `json:"categories"`
	}
	err := c.do(ctx, call{
		op:     "list_categories",
		method: http.MethodGet,
		path:   "/api/categories",
		out:    &tree,
	})
	if err != nil {
		return nil, err
	}
	if tree.Categories == nil {
		tree.Categories = make([]product.Category, 0)
	}
	return tree.Categories, nil
}

// CreateOrder submits an order. The idempotency key, when set, travels as
// the Idempotency-Key header.
func (c *Client) CreateOrder(ctx context.Context, req order.Request) (*order.Order, error) {
	var headers map[string]string
	if req.IdempotencyKey != "" {
		headers = map[string]string{"Idempotency-Key": req.IdempotencyKey}
	}

	var created order.Order
	err := c.do(ctx, call{
		op:      "create_order",
		method:  http.MethodPost,
		path:    "/api/orders",
		body:    req,
		headers: headers,
		out:     &created,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListOrders returns the orders of a Telegram user, newest first.
func (c *Client) ListOrders(ctx context.Context, telegramUserID int64) ([]order.Order, error) {
	var resp order.ListResponse
	err := c.do(ctx, call{
		op:     "list_orders",
		method: http.MethodGet,
		path:   "/api/orders/me",
		query:  url.Values{"telegram_user_id": {strconv.FormatInt(telegramUserID, 10)}},
		out:    &resp,
	})
	if err != nil {
		return nil, err
	}
	if resp.Orders == nil {
		resp.Orders = make([]order.Order, 0)
	}
	return resp.Orders, nil
}

// ValidateCart asks the API to check stock and minimum order of items.
func (c *Client) ValidateCart(ctx context.Context, items []order.LineItem) (*order.CartValidation, error) {
	var result order.CartValidation
	err := c.do(ctx, call{
		op:     "validate_cart",
		method: http.MethodPost,
		path:   "/api/cart/validate",
		body:   struct {
			Items []order.LineItem `json:"items"`
		}{Items: items},
		out: &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ImageURL resolves a product image reference for display. Absolute URLs
// and local paths pass through, anything else is a Telegram file id served
// by the image proxy. An empty reference yields the placeholder.
func (c *Client) ImageURL(ref, size string) string {
	return ResolveImageURL(c.baseURL, ref, size)
}

// ImageRedirectURL is the redirect target of the image endpoint for ref.
func (c *Client) ImageRedirectURL(ref, size string) string {
	return ImageRedirectTarget(c.baseURL, ref, size)
}

const PlaceholderImage = "assets/placeholder.svg"

func ResolveImageURL(baseURL, ref, size string) string {
	if ref == "" {
		return PlaceholderImage
	}
	if strings.HasPrefix(ref, "http") || strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "assets/") {
		return ref
	}
	if size == "" {
		size = "medium"
	}
	return baseURL + "/api/images/" + url.PathEscape(ref) + "?size=" + url.QueryEscape(size)
}

// ImageRedirectTarget resolves ref and keeps the result only when it points
// at the shop's base URL or a local asset. Foreign hosts, protocol-relative
// URLs and other local paths are replaced by the placeholder.
func ImageRedirectTarget(baseURL, ref, size string) string {
	target := ResolveImageURL(baseURL, ref, size)
	switch {
	case isLocalAsset(target):
		return "/" + target
	case underBaseURL(baseURL, target):
		return target
	default:
		return "/" + PlaceholderImage
	}
}

func isLocalAsset(target string) bool {
	return strings.HasPrefix(target, "assets/") &&
		!strings.Contains(target, "..") &&
		!strings.Contains(target, `\`)
}

func underBaseURL(baseURL, target string) bool {
	if baseURL == "" || !strings.HasPrefix(target, baseURL+"/") || strings.Contains(target, `\`) {
		return false
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.User == nil && u.Scheme == base.Scheme && u.Host == base.Host
}
