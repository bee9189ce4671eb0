package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/catalog"
	intconfig "storefront/internal/config"
	"storefront/internal/fakestore"
	h "storefront/internal/http/handlers"
	"storefront/internal/notify"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upstreamProducts = `[
 {"id":1,"title":"Fjallraven Backpack","price":109.95,"description":"Your perfect pack","category":"men's clothing","image":"https://img/1.jpg","rating":{"rate":3.9,"count":120}},
 {"id":2,"title":"Mens Casual T-Shirt","price":22.3,"description":"Slim-fitting style","category":"men's clothing","image":"https://img/2.jpg","rating":{"rate":4.1,"count":259}},
 {"id":5,"title":"Dragon Bracelet","price":695,"description":"Silver dragon","category":"jewelery","image":"https://img/5.jpg","rating":{"rate":4.6,"count":400}},
 {"id":9,"title":"WD 2TB Drive","price":64,"description":"USB 3.0","category":"electronics","image":"https://img/9.jpg","rating":{"rate":3.3,"count":203}}
]`

type env struct {
	t        *testing.T
	router   *gin.Engine
	toasts   *notify.Hub
	upstream *httptest.Server
	token    string
}

func newEnv(t *testing.T, failProducts bool) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 2, "user": "mor_2314"}).
		SignedString([]byte("upstream"))
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"id":21}`))
			return
		}
		if failProducts {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(upstreamProducts))
	})
	mux.HandleFunc("/products/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["electronics","jewelery","men's clothing","women's clothing"]`))
	})
	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		var all []map[string]any
		_ = json.Unmarshal([]byte(upstreamProducts), &all)
		id := strings.TrimPrefix(r.URL.Path, "/products/")
		for _, p := range all {
			if fmt.Sprint(p["id"]) == id {
				_ = json.NewEncoder(w).Encode(p)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "83r5^_" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": tok})
	})
	mux.HandleFunc("/carts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":11}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	toasts := notify.NewHub(time.Hour)
	t.Cleanup(toasts.Close)

	client := fakestore.New(srv.URL, 2*time.Second)
	hd := &h.Handler{
		Catalog: services.CatalogService{
			Source:   client,
			Cache:    catalog.NewCache(),
			PageSize: 10,
		},
		Sessions:  services.NewSessionRegistry(repositories.NewMemoryKV(), pricing.NewPromoTable(pricing.DefaultPromos()), decimal.RequireFromString("0.10"), decimal.Zero),
		Upstream:  client,
		Toasts:    toasts,
		StoreName: "Storefront",
		Started:   time.Now(),
	}

	return &env{
		t:        t,
		router:   NewRouter(intconfig.Env{}, hd),
		toasts:   toasts,
		upstream: srv,
		token:    tok,
	}
}

func (e *env) do(method, path, session, body string) *httptest.ResponseRecorder {
	e.t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set("X-Session-ID", session)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *env) login(session string) {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", session, `{"username":"mor_2314","password":"83r5^_"}`)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
}

func TestHealth(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "default", w.Header().Get("X-Session-ID"))
}

func TestListProducts(t *testing.T) {
	e := newEnv(t, false)

	w := e.do(http.MethodGet, "/api/products?category=men%27s+clothing&sort=price-asc", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 2, body["totalItems"])
	assert.EqualValues(t, 1, body["totalPages"])
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.EqualValues(t, 2, items[0].(map[string]any)["id"])

	w = e.do(http.MethodGet, "/api/products?page=2&page_size=3", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.EqualValues(t, 4, body["totalItems"])
	assert.EqualValues(t, 2, body["totalPages"])
	assert.Len(t, body["items"].([]any), 1)

	w = e.do(http.MethodGet, "/api/products?min_rating=4", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["totalItems"])
}

func TestListProductsRejectsBadFilter(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(http.MethodGet, "/api/products?min_rating=9", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decode(t, w)["code"])
}

func TestUpstreamFailureIsRetryable(t *testing.T) {
	e := newEnv(t, true)
	w := e.do(http.MethodGet, "/api/products", "", "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["retryable"])
	assert.Contains(t, body["error"], "HTTP error! status: 500")
}

func TestCategoriesAndProduct(t *testing.T) {
	e := newEnv(t, false)

	w := e.do(http.MethodGet, "/api/products/categories", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	cats := decode(t, w)["categories"].([]any)
	assert.Equal(t, "all", cats[0])
	assert.Len(t, cats, 5)

	w = e.do(http.MethodGet, "/api/products/5", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dragon Bracelet", decode(t, w)["title"])

	w = e.do(http.MethodGet, "/api/products/77", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/api/products/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartRequiresLogin(t *testing.T) {
	e := newEnv(t, false)
	w := e.do(http.MethodGet, "/api/cart", "s1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPost, "/api/auth/login", "s1", `{"username":"mor_2314","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerTokenAuthorizesCart(t *testing.T) {
	e := newEnv(t, false)
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("X-Session-ID", "bearer-session")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartFlow(t *testing.T) {
	e := newEnv(t, false)
	e.login("s1")

	w := e.do(http.MethodPost, "/api/cart/items", "s1", `{"product_id":2,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = e.do(http.MethodPost, "/api/cart/items", "s1", `{"product_id":2,"quantity":200}`)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 99, items[0].(map[string]any)["quantity"])

	w = e.do(http.MethodPut, "/api/cart/items/2", "s1", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode(t, w)["summary"].(map[string]any)
	assert.EqualValues(t, 3, summary["itemCount"])

	w = e.do(http.MethodPut, "/api/cart/items/999", "s1", `{"quantity":3}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodPost, "/api/cart/promo", "s1", `{"code":"BOGUS"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid promo code", decode(t, w)["error"])

	w = e.do(http.MethodPost, "/api/cart/promo", "s1", `{"code":"save10"}`)
	require.Equal(t, http.StatusOK, w.Code)
	promo := decode(t, w)["summary"].(map[string]any)["promo"].(map[string]any)
	assert.Equal(t, "SAVE10", promo["code"])

	w = e.do(http.MethodGet, "/api/cart/receipt", "s1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodPost, "/api/cart/checkout", "s1", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode(t, w)
	assert.EqualValues(t, 11, order["upstreamId"])
	assert.Equal(t, "mor_2314", order["username"])

	w = e.do(http.MethodGet, "/api/cart", "s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["items"])

	w = e.do(http.MethodPost, "/api/cart/checkout", "s1", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodGet, "/api/cart/receipt", "s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "RECEIPT_")

	w = e.do(http.MethodGet, "/api/notifications", "s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["notifications"])

	w = e.do(http.MethodDelete, "/api/notifications", "s1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, e.toasts.For("s1").List())
}

func TestNotificationsArePerSession(t *testing.T) {
	e := newEnv(t, false)
	e.login("alice")

	w := e.do(http.MethodGet, "/api/notifications", "bob", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["notifications"])

	w = e.do(http.MethodGet, "/api/notifications", "alice", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["notifications"].([]any)
	require.Len(t, list, 1)
	toast := list[0].(map[string]any)
	assert.Equal(t, "Welcome back, mor_2314!", toast["message"])

	w = e.do(http.MethodDelete, "/api/notifications", "bob", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = e.do(http.MethodDelete, fmt.Sprintf("/api/notifications/%v", toast["id"]), "bob", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, e.toasts.For("alice").List(), 1)
}

func TestListProductsHugePage(t *testing.T) {
	e := newEnv(t, false)

	w := e.do(http.MethodGet, "/api/products?page=922337203685477582", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Empty(t, body["items"])
	assert.EqualValues(t, 4, body["totalItems"])

	w = e.do(http.MethodGet, "/api/products?page=3&page_size=9223372036854775807", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["items"])

	w = e.do(http.MethodGet, "/api/products", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 10, decode(t, w)["pageSize"])
}

func TestCartAddValidation(t *testing.T) {
	e := newEnv(t, false)
	e.login("s1")

	w := e.do(http.MethodPost, "/api/cart/items", "s1", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/cart/items", "s1", `{"product_id":2,"quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/cart/items", "s1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogoutAndMe(t *testing.T) {
	e := newEnv(t, false)
	e.login("s2")

	w := e.do(http.MethodGet, "/api/auth/me", "s2", "")
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "mor_2314", user["username"])

	w = e.do(http.MethodPost, "/api/auth/logout", "s2", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/api/auth/me", "s2", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateProduct(t *testing.T) {
	e := newEnv(t, false)

	payload := `{"title":"Desk Lamp","description":"A lamp for the desk","price":19.99,"category":"electronics","image":"https://img/lamp.png"}`
	w := e.do(http.MethodPost, "/api/products", "s3", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	e.login("s3")
	w = e.do(http.MethodPost, "/api/products", "s3", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 21, decode(t, w)["id"])

	w = e.do(http.MethodGet, "/api/products?page_size=50", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, decode(t, w)["totalItems"])

	w = e.do(http.MethodPost, "/api/products", "s3", strings.Replace(payload, "19.99", "0", 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPost, "/api/products", "s3", strings.Replace(payload, "https://img/lamp.png", "not a url", 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
