package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/littlelemon-api/internal/cart"
	"github.com/MikeMC777/littlelemon-api/internal/checkout"
	"github.com/MikeMC777/littlelemon-api/internal/logger"
	"github.com/MikeMC777/littlelemon-api/internal/memstore"
	"github.com/MikeMC777/littlelemon-api/internal/menu"
	"github.com/MikeMC777/littlelemon-api/internal/order"
	"github.com/MikeMC777/littlelemon-api/internal/throttle"
	"github.com/MikeMC777/littlelemon-api/internal/user"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
}

type app struct {
	router http.Handler
	store  *memstore.Store
	users  *user.Service
}

func newApp(t *testing.T, anon, authed throttle.Rate) *app {
	t.Helper()
	log := logger.Discard()
	s := memstore.New()
	users := user.NewService(s.Users(), user.NewTokenIssuer("test-secret", time.Hour), log)
	require.NoError(t, users.EnsureAdmin(context.Background(), "admin", "admin-pass-123", "admin@example.com"))

	r := NewRouter(Deps{
		Log:      log,
		Users:    users,
		Menu:     s.Menu(),
		Cart:     cart.NewService(s.Cart(), s.Menu(), log),
		Orders:   order.NewService(s.Orders(), users, log),
		Checkout: checkout.NewEngine(s, log),
		Limiter:  throttle.NewMemoryLimiter(),
		AnonRate: anon,
		UserRate: authed,
		Store:    s,
	})
	return &app{router: r, store: s, users: users}
}

var roomy = throttle.Rate{Limit: 1000, Window: time.Minute}

func (a *app) call(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *app) signup(t *testing.T, username string) string {
	t.Helper()
	w := a.call(t, http.MethodPost, "/auth/users/", "", `{"username":"`+username+`","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return a.login(t, username, "s3cret-pass")
}

func (a *app) login(t *testing.T, username, password string) string {
	t.Helper()
	w := a.call(t, http.MethodPost, "/auth/token/login/", "", `{"username":"`+username+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var tok user.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	return tok.AuthToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestOrderingFlow(t *testing.T) {
	a := newApp(t, roomy, roomy)
	admin := a.login(t, "admin", "admin-pass-123")
	ana := a.signup(t, "ana")
	bob := a.signup(t, "bob")
	mia := a.signup(t, "mia")

	// catalog is public to read, admin-only to write
	assert.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/menu-items/", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, a.call(t, http.MethodPost, "/menu-items/", "", `{}`).Code)
	assert.Equal(t, http.StatusForbidden, a.call(t, http.MethodPost, "/menu-items/", ana, `{"title":"x","price":"1.00","category":"c"}`).Code)

	w := a.call(t, http.MethodPost, "/menu-items/", admin, `{"title":"Bruschetta","price":"5.00","category":"starters"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemA := decode[menu.MenuItem](t, w)
	w = a.call(t, http.MethodPost, "/menu-items/", admin, `{"title":"Lemon cake","price":"3.50","category":"desserts"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	itemB := decode[menu.MenuItem](t, w)

	// mia becomes a manager
	w = a.call(t, http.MethodPost, "/groups/manager/users/", admin, `{"username":"mia"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// ana fills the cart; re-adding A replaces its quantity
	for _, body := range []string{
		`{"menuitem":"` + itemA.ID + `","quantity":5}`,
		`{"menuitem":"` + itemA.ID + `","quantity":2}`,
		`{"menuitem":"` + itemB.ID + `","quantity":1}`,
	} {
		w = a.call(t, http.MethodPost, "/cart/menu-items/", ana, body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	lines := decode[[]cart.Line](t, a.call(t, http.MethodGet, "/cart/menu-items/", ana, ""))
	require.Len(t, lines, 2)

	w = a.call(t, http.MethodPost, "/orders/", ana, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Empty(t, w.Header().Get("X-Cart-Empty"))
	first := decode[order.Order](t, w)
	assert.True(t, first.Total.Equal(decimal.RequireFromString("13.50")), first.Total.String())
	assert.Contains(t, w.Body.String(), `"total":"13.50"`)
	assert.Len(t, first.Items, 2)

	assert.JSONEq(t, `[]`, a.call(t, http.MethodGet, "/cart/menu-items/", ana, "").Body.String())

	w = a.call(t, http.MethodPost, "/orders/", ana, "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Cart-Empty"))
	second := decode[order.Order](t, w)
	assert.True(t, second.Total.IsZero())
	assert.Empty(t, second.Items)

	// bob cannot see ana's orders; the manager sees all of them
	bobs := decode[order.ListResponse](t, a.call(t, http.MethodGet, "/orders/", bob, ""))
	assert.Empty(t, bobs.Orders)
	assert.Equal(t, http.StatusNotFound, a.call(t, http.MethodGet, "/orders/"+first.ID, bob, "").Code)

	all := decode[order.ListResponse](t, a.call(t, http.MethodGet, "/orders/", mia, ""))
	assert.Len(t, all.Orders, 2)
	for _, o := range all.Orders {
		sum := decimal.Zero
		for _, it := range o.Items {
			sum = sum.Add(it.Price)
		}
		assert.True(t, sum.Equal(o.Total))
	}

	// deleting a menu item that was ordered is refused
	assert.Equal(t, http.StatusConflict, a.call(t, http.MethodDelete, "/menu-items/"+itemA.ID, admin, "").Code)
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	a := newApp(t, roomy, roomy)
	w := a.call(t, http.MethodGet, "/menu-items/", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
}

func TestThrottledMenu(t *testing.T) {
	a := newApp(t, throttle.Rate{Limit: 2, Window: time.Minute}, roomy)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/menu-items/", "", "").Code)
	}
	w := a.call(t, http.MethodGet, "/menu-items/", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// authenticated callers have their own budget
	ana := a.signup(t, "ana")
	assert.Equal(t, http.StatusOK, a.call(t, http.MethodGet, "/menu-items/", ana, "").Code)
}

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthz(t *testing.T) {
	a := newApp(t, roomy, roomy)
	w := a.call(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	r := gin.New()
	r.GET("/healthz", healthzHandler(downStore{}))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSwaggerDoc(t *testing.T) {
	a := newApp(t, roomy, roomy)
	w := a.call(t, http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/orders/")
}
