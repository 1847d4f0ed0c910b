package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/tg-storefront/internal/apiclient"
	"github.com/example/tg-storefront/internal/auth"
	"github.com/example/tg-storefront/internal/infrastructure/store"
	"github.com/example/tg-storefront/internal/storefront"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "test-secret-key-for-testing-purposes"
	testBotToken = "123456:TEST-bot-token"
	adminID      = int64(1000)
	shopAdminID  = int64(2000)
)

// fakeShop emulates the remote shop API.
type fakeShop struct {
	mu          sync.Mutex
	orders      []map[string]any
	statusCalls []string
	failOrders  bool
}

func (f *fakeShop) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]any{
				{"id": 1, "name": "Магнит", "price_per_unit": "15", "pieces_per_pack": 12, "image_file_id": "AgAD1"},
				{"id": 2, "name": "Кружка", "price_per_unit": "250", "pieces_per_pack": 1},
			},
			"total": 2, "page": 1, "limit": 12, "pages": 1,
		})
	})
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "3" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Товар не найден"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 3, "name": "Брелок", "price_per_unit": "30", "pieces_per_pack": 10})
	})
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"categories": []map[string]any{
			{"id": 1, "name": "Сувениры", "subcategories": []map[string]any{
				{"id": 10, "category_id": 1, "name": "Все"},
				{"id": 11, "category_id": 1, "name": "Магниты"},
			}},
		}})
	})
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failOrders {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"detail": "down"})
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.orders = append(f.orders, body)
		writeJSON(w, http.StatusCreated, map[string]any{
			"id": len(f.orders), "status": "new", "total_amount": "180",
			"telegram_user_id": body["telegram_user_id"], "customer_name": body["customer_name"],
		})
	})
	mux.HandleFunc("GET /api/orders/me", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.URL.Query().Get("telegram_user_id"), 10, 64)
		writeJSON(w, http.StatusOK, map[string]any{"orders": []map[string]any{
			{"id": 7, "status": "accepted", "total_amount": "500", "telegram_user_id": id},
		}})
	})
	mux.HandleFunc("POST /api/cart/validate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"valid": true, "errors": []any{}, "total_amount": "180"})
	})
	mux.HandleFunc("PUT /api/orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.statusCalls = append(f.statusCalls, r.PathValue("id")+":"+r.URL.Query().Get("status"))
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("POST /api/admin/check", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID int64 `json:"user_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.UserID != shopAdminID {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Доступ запрещён"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"is_admin": true})
	})
	mux.HandleFunc("POST /api/categories", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{"id": 5, "name": body["name"]})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type testEnv struct {
	t        *testing.T
	server   *httptest.Server
	router   http.Handler
	shop     *fakeShop
	shopURL  string
	jwt      *auth.JWTService
	verifier *auth.InitDataVerifier
	registry *storefront.Registry
	client   *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	shop := &fakeShop{}
	shopServer := httptest.NewServer(shop.handler())
	t.Cleanup(shopServer.Close)

	client := apiclient.New(apiclient.Config{BaseURL: shopServer.URL, Timeout: 2 * time.Second, BreakerFailures: 100})
	jwtService := auth.NewJWTService(testSecret, time.Hour, 24*time.Hour)
	verifier := auth.NewInitDataVerifier(testBotToken, time.Hour)
	registry := storefront.NewRegistry(client, store.NewMemoryBlobStore(), jwtService, storefront.Config{})

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin-password"), bcrypt.MinCost)
	require.NoError(t, err)
	handlers := NewHandlers(registry, client, nil)
	router := NewRouter(RouterConfig{
		Handlers:      handlers,
		AuthHandlers:  NewAuthHandlers(jwtService, verifier, registry, auth.AdminSet{adminID: {}}, string(adminHash)).WithAdminChecker(client),
		AdminHandlers: NewAdminHandlers(client, handlers),
		JWTService:    jwtService,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{
		t:        t,
		server:   server,
		router:   router,
		shop:     shop,
		shopURL:  shopServer.URL,
		jwt:      jwtService,
		verifier: verifier,
		registry: registry,
		client:   server.Client(),
	}
}

// userToken returns an access token of a Telegram user.
func (e *testEnv) userToken(id int64, role string) string {
	token, _, err := e.jwt.GenerateAccessToken(auth.User{ID: id, FirstName: "Анна"}, role)
	require.NoError(e.t, err)
	return token
}

func (e *testEnv) initData(id int64) string {
	values := url.Values{}
	values.Set("auth_date", strconv.FormatInt(time.Now().Unix(), 10))
	values.Set("user", `{"id":`+strconv.FormatInt(id, 10)+`,"first_name":"Анна","username":"anna"}`)
	return e.verifier.Sign(values)
}

// do sends a request with an optional bearer token and decodes a JSON body
// into out when given.
func (e *testEnv) do(method, path, token string, body any, out any) *http.Response {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = strings.NewReader(string(raw))
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(e.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
