package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/example/tg-storefront/internal/domain/order"
	"github.com/example/tg-storefront/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CheckAdmin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["user_id"] == 1 {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "is_admin": true})
			return
		}
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Not authorized"})
	})

	ok, err := c.CheckAdmin(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.CheckAdmin(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_CategoryCRUD(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
		default:
			raw, _ := io.ReadAll(r.Body)
			var in map[string]any
			_ = json.Unmarshal(raw, &in)
			writeJSON(w, http.StatusOK, map[string]any{"id": 3, "name": in["name"], "category_id": 3})
		}
	})
	ctx := context.Background()

	created, err := c.CreateCategory(ctx, product.CategoryInput{Name: "Магниты"})
	require.NoError(t, err)
	assert.Equal(t, "Магниты", created.Name)

	_, err = c.UpdateCategory(ctx, 3, product.CategoryInput{Name: "Сувениры", Order: 2})
	require.NoError(t, err)

	sub, err := c.CreateSubcategory(ctx, product.SubcategoryInput{CategoryID: 3, Name: "Круглые"})
	require.NoError(t, err)
	assert.Equal(t, "Круглые", sub.Name)

	require.NoError(t, c.DeleteSubcategory(ctx, 8))
	require.NoError(t, c.DeleteCategory(ctx, 3))

	assert.Equal(t, []string{
		"POST /api/categories",
		"PUT /api/categories/3",
		"POST /api/categories/3/subcategories",
		"DELETE /api/categories/subcategories/8",
		"DELETE /api/categories/3",
	}, calls)
}

func TestClient_AdminValidatesLocally(t *testing.T) {
	var hits int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { hits++ })
	ctx := context.Background()

	_, err := c.CreateCategory(ctx, product.CategoryInput{Name: " "})
	assert.ErrorIs(t, err, product.ErrInvalidName)

	_, err = c.CreateProduct(ctx, product.Input{Name: "x", PricePerUnit: decimal.Zero, PiecesPerPack: 1})
	assert.ErrorIs(t, err, product.ErrInvalidPrice)

	zero := 0
	_, err = c.UpdateProduct(ctx, 1, product.Patch{PiecesPerPack: &zero})
	assert.ErrorIs(t, err, product.ErrInvalidPackSize)

	err = c.UpdateOrderStatus(ctx, 1, order.StatusCompleted, order.StatusNew)
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	assert.Equal(t, 0, hits)
}

func TestClient_ProductAdmin(t *testing.T) {
	var lastQuery, lastBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.RawQuery
		raw, _ := io.ReadAll(r.Body)
		lastBody = string(raw)
		switch {
		case r.Method == http.MethodGet:
			_, _ = io.WriteString(w, `{"items":[{"id":1,"name":"a"},{"id":2,"name":"b"}],"total":2,"page":1,"limit":100,"pages":1}`)
		case r.Method == http.MethodDelete:
			writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		default:
			_, _ = io.WriteString(w, `{"id":5,"name":"Магнит","price_per_unit":12}`)
		}
	})
	ctx := context.Background()

	items, err := c.AdminProducts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Contains(t, lastQuery, "limit=100")
	assert.Contains(t, lastQuery, "sort=newest")

	_, err = c.CreateProduct(ctx, product.Input{Name: "Магнит", PricePerUnit: decimal.NewFromInt(12), PiecesPerPack: 6, CategoryID: 1})
	require.NoError(t, err)

	name := "Магнит круглый"
	updated, err := c.UpdateProduct(ctx, 5, product.Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.ID)
	assert.JSONEq(t, `{"name":"Магнит круглый"}`, lastBody)

	require.NoError(t, c.DeleteProduct(ctx, 5))
}

func TestClient_UpdateOrderStatus(t *testing.T) {
	var path, status string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		status = r.URL.Query().Get("status")
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})

	require.NoError(t, c.UpdateOrderStatus(context.Background(), 12, order.StatusNew, order.StatusAccepted))

	assert.Equal(t, "/api/orders/12/status", path)
	assert.Equal(t, "accepted", status)
}
