package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cafebar-be/internal/auth"
	"cafebar-be/internal/cart"
	"cafebar-be/internal/catalog"
	"cafebar-be/internal/issue"
	"cafebar-be/internal/metrics"
	"cafebar-be/internal/order"
	"cafebar-be/internal/storage"
	"cafebar-be/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   http.Handler
	store    *order.Store
	sessions *auth.Sessions
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	kv := storage.NewMemory()
	store := order.NewStore(kv)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	sessions, err := auth.NewSessions("test-secret", time.Hour)
	require.NoError(t, err)

	orders := order.NewService(store)
	cat := catalog.Default()

	return &testEnv{
		router: NewRouter(Deps{
			Orders:     orders,
			OrderStore: store,
			Catalog:    cat,
			Cart:       cart.NewService(cat, orders),
			Users:      user.NewService(user.NewRepository(kv)),
			Issues:     issue.NewService(kv),
			Sessions:   sessions,
			Metrics:    metrics.New("test"),
			CORSOrigin: "*",
		}),
		store:    store,
		sessions: sessions,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (e *testEnv) placeOrder(t *testing.T, name string) order.Order {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/orders", order.PlaceOrderInput{
		CustomerName: name,
		Items: []order.OrderItem{
			{Name: "Coffee", Quantity: 2, Price: 2.5},
			{Name: "Tea", Quantity: 3, Price: 1.0},
		},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[order.Order](t, w)
}

func TestRouter_Health(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(t, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Orders(t *testing.T) {
	e := newTestEnv(t)

	o := e.placeOrder(t, "Mia")
	assert.Equal(t, 8.0, o.Total)
	assert.Equal(t, order.StatusPending, o.Status)

	t.Run("list with summary", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/orders?status=all&q=mia", nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode[orderListResponse](t, w)
		require.Len(t, resp.Orders, 1)
		assert.Equal(t, "€8.00", resp.Summary.Total)
	})

	t.Run("bad filter", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/orders?status=shipped", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = e.do(t, http.MethodGet, "/api/orders?recent=maybe", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/orders/"+o.ID, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, o.ID, decode[order.Order](t, w).ID)

		w = e.do(t, http.MethodGet, "/api/orders/missing", nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"order not found"}`, w.Body.String())
	})

	t.Run("recent", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/orders/recent", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]order.Order](t, w), 1)
	})

	t.Run("update status", func(t *testing.T) {
		w := e.do(t, http.MethodPatch, "/api/orders/"+o.ID+"/status", statusRequest{Status: "delivered"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, order.StatusDelivered, decode[order.Order](t, w).Status)

		w = e.do(t, http.MethodPatch, "/api/orders/unknown/status", statusRequest{Status: "Pending"}, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = e.do(t, http.MethodPatch, "/api/orders/"+o.ID+"/status", statusRequest{Status: "Shipped"}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rate", func(t *testing.T) {
		w := e.do(t, http.MethodPost, "/api/orders/"+o.ID+"/rating", ratingRequest{Stars: 5}, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = e.do(t, http.MethodPost, "/api/orders/"+o.ID+"/rating", ratingRequest{Stars: 9}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("repeat", func(t *testing.T) {
		w := e.do(t, http.MethodGet, "/api/orders/"+o.ID+"/repeat", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Mia", decode[order.PlaceOrderInput](t, w).CustomerName)

		w = e.do(t, http.MethodPost, "/api/orders/"+o.ID+"/repeat", nil, "")
		require.Equal(t, http.StatusCreated, w.Code)
		again := decode[order.Order](t, w)
		assert.NotEqual(t, o.ID, again.ID)
		assert.Equal(t, order.StatusPending, again.Status)

		src, _ := e.store.FindOrder(o.ID)
		assert.Equal(t, order.StatusDelivered, src.Status)
	})

	t.Run("delete", func(t *testing.T) {
		w := e.do(t, http.MethodDelete, "/api/orders/"+o.ID, nil, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = e.do(t, http.MethodDelete, "/api/orders/"+o.ID, nil, "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		_, ok := e.store.FindOrder(o.ID)
		assert.False(t, ok)
	})
}

func TestRouter_PlaceOrderErrors(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/orders", order.PlaceOrderInput{CustomerName: "Mia"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/orders", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/orders", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"request body is empty"}`, w.Body.String())

	assert.Empty(t, e.store.Orders())
}

func TestRouter_Favorites(t *testing.T) {
	e := newTestEnv(t)
	o := e.placeOrder(t, "Ola")

	w := e.do(t, http.MethodPost, "/api/orders/"+o.ID+"/favorite", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)
	fav := decode[order.FavoriteOrder](t, w)

	w = e.do(t, http.MethodGet, "/api/favorites", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]order.FavoriteOrder](t, w), 1)

	w = e.do(t, http.MethodPost, "/api/favorites/"+fav.ID+"/order", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, e.store.Orders(), 2)

	w = e.do(t, http.MethodPost, "/api/favorites/nope/order", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodDelete, "/api/favorites/"+fav.ID, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, e.store.FavoriteOrders())
}

func TestRouter_Catalog(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/catalog/products", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]catalog.Product](t, w), 5)

	w = e.do(t, http.MethodGet, "/api/catalog/products/2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Latte", decode[catalog.Product](t, w).Name)

	w = e.do(t, http.MethodGet, "/api/catalog/brands/9", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/api/catalog/brands", nil, "")
	assert.Len(t, decode[[]catalog.Brand](t, w), 4)
}

func TestRouter_SessionAndCart(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/cart", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/api/session", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)
	sess := decode[sessionResponse](t, w)
	assert.NotEmpty(t, sess.DeviceID)
	require.NotEmpty(t, w.Result().Cookies())
	assert.Equal(t, auth.CookieName, w.Result().Cookies()[0].Name)

	token := sess.Token

	w = e.do(t, http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: "1"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = e.do(t, http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: "5"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPatch, "/api/cart/items/1", updateCartRequest{Delta: 1}, token)
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[cart.View](t, w)
	assert.Equal(t, 3, v.ItemCount)
	assert.Equal(t, "€7.00", v.Formatted)

	w = e.do(t, http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: "42"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, "/api/cart/checkout", checkoutRequest{CustomerName: "Table 4"}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	placed := decode[order.Order](t, w)
	assert.Equal(t, 7.0, placed.Total)

	w = e.do(t, http.MethodGet, "/api/cart", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[cart.View](t, w).Lines)

	w = e.do(t, http.MethodPost, "/api/cart/checkout", checkoutRequest{CustomerName: "Table 4"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/api/cart", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_SessionRefreshKeepsDevice(t *testing.T) {
	e := newTestEnv(t)
	token, _, err := e.sessions.Issue("dev-1")
	require.NoError(t, err)

	w := e.do(t, http.MethodPost, "/api/session", nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "dev-1", decode[sessionResponse](t, w).DeviceID)
}

func TestRouter_SessionIgnoresClientDeviceID(t *testing.T) {
	e := newTestEnv(t)
	owner, _, err := e.sessions.Issue("bar-tablet")
	require.NoError(t, err)

	w := e.do(t, http.MethodPost, "/api/cart/items", addToCartRequest{ProductID: "1"}, owner)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/session", map[string]string{"deviceId": "bar-tablet"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	sess := decode[sessionResponse](t, w)
	assert.NotEmpty(t, sess.DeviceID)
	assert.NotEqual(t, "bar-tablet", sess.DeviceID)

	w = e.do(t, http.MethodGet, "/api/cart", nil, sess.Token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[cart.View](t, w).Lines)

	// a valid token keeps its own device whatever the body says
	other, _, err := e.sessions.Issue("dev-2")
	require.NoError(t, err)
	w = e.do(t, http.MethodPost, "/api/session", map[string]string{"deviceId": "bar-tablet"}, other)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "dev-2", decode[sessionResponse](t, w).DeviceID)
}

func TestRouter_Profile(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/profile", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPut, "/api/profile", user.UpdateProfileInput{Name: "A", Email: "x", Phone: "1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPut, "/api/profile", user.UpdateProfileInput{Name: "Ada", Email: "ada@example.com", Phone: "+4712345678"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/profile", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", decode[user.Profile](t, w).Name)
}

func TestRouter_Issues(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodGet, "/api/issues/types", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]issue.DeviceIssues](t, w), 3)

	w = e.do(t, http.MethodPost, "/api/issues", issue.SubmitInput{Device: issue.DeviceCoffeeGrinder, IssueType: "Damaged", Description: "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodPost, "/api/issues", issue.SubmitInput{Device: issue.DeviceCoffeeGrinder, IssueType: "Not Grinding", Description: "stuck"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = e.do(t, http.MethodGet, "/api/issues", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]issue.Report](t, w), 1)
}

func TestRouter_Metrics(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodGet, "/health", nil, "")
	e.do(t, http.MethodGet, "/nowhere", nil, "")

	w := e.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `test_http_requests_total{route="GET /health",status="200"} 1`)
	assert.Contains(t, body, `route="unmatched",status="404"`)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{order.ErrOrderNotFound, http.StatusNotFound},
		{user.ErrProfileNotFound, http.StatusNotFound},
		{order.ErrInvalidStatus, http.StatusBadRequest},
		{errBadRequest("x"), http.StatusBadRequest},
		{order.ErrDuplicateOrderID, http.StatusConflict},
		{cart.ErrMissingSession, http.StatusUnauthorized},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(tt.err))
		})
	}
}
