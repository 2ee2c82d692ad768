package checkout_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/littlelemon-api/internal/access"
	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/cart"
	"github.com/MikeMC777/littlelemon-api/internal/checkout"
	"github.com/MikeMC777/littlelemon-api/internal/httpx"
	"github.com/MikeMC777/littlelemon-api/internal/logger"
	"github.com/MikeMC777/littlelemon-api/internal/memstore"
	"github.com/MikeMC777/littlelemon-api/internal/menu"
	"github.com/MikeMC777/littlelemon-api/internal/order"
	"github.com/MikeMC777/littlelemon-api/internal/user"
)

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
}

type fixture struct {
	store  *memstore.Store
	carts  *cart.Service
	engine *checkout.Engine
	ana    access.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memstore.New()
	u := &user.User{ID: uuid.NewString(), Username: "ana"}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return &fixture{
		store:  s,
		carts:  cart.NewService(s.Cart(), s.Menu(), logger.Discard()),
		engine: checkout.NewEngine(s, logger.Discard()),
		ana:    u.Principal(),
	}
}

func (f *fixture) menuItem(t *testing.T, title, price string) string {
	t.Helper()
	it := &menu.MenuItem{ID: uuid.NewString(), Title: title, Price: decimal.RequireFromString(price), Category: "mains"}
	require.NoError(t, f.store.Menu().Create(context.Background(), it))
	return it.ID
}

func (f *fixture) add(t *testing.T, itemID string, qty int) {
	t.Helper()
	_, err := f.carts.AddOrUpdateLine(context.Background(), f.ana.UserID, itemID, qty)
	require.NoError(t, err)
}

func sumItems(o *order.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.Price)
	}
	return sum
}

func TestCheckout_TotalTooLarge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// 101 lines of 99,999,999.00 each pass the per-line cap but not the order total
	for i := 0; i < 101; i++ {
		f.add(t, f.menuItem(t, "Banquet", "999999.99"), 100)
	}

	_, err := f.engine.Checkout(ctx, f.ana)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	lines, err := f.carts.ListLines(ctx, f.ana.UserID)
	require.NoError(t, err)
	assert.Len(t, lines, 101, "cart untouched")
	orders, err := f.store.Orders().List(ctx, order.Filter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_TwoLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.menuItem(t, "Bruschetta", "5.00")
	b := f.menuItem(t, "Lemon cake", "3.50")
	f.add(t, a, 2)
	f.add(t, b, 1)

	res, err := f.engine.Checkout(ctx, f.ana)
	require.NoError(t, err)
	assert.False(t, res.Empty)
	assert.True(t, res.Order.Total.Equal(decimal.RequireFromString("13.50")), res.Order.Total.String())
	require.Len(t, res.Order.Items, 2)
	assert.True(t, sumItems(res.Order).Equal(res.Order.Total))

	byItem := map[string]order.Item{}
	for _, it := range res.Order.Items {
		byItem[it.MenuItemID] = it
	}
	assert.Equal(t, 2, byItem[a].Quantity)
	assert.True(t, byItem[a].UnitPrice.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, byItem[a].Price.Equal(decimal.RequireFromString("10.00")))
	assert.Equal(t, 1, byItem[b].Quantity)
	assert.True(t, byItem[b].Price.Equal(decimal.RequireFromString("3.50")))

	lines, err := f.carts.ListLines(ctx, f.ana.UserID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	stored, err := f.store.Orders().Get(ctx, res.Order.ID, f.ana.UserID)
	require.NoError(t, err)
	assert.True(t, sumItems(stored).Equal(stored.Total))
}

func TestCheckout_SecondCallIsZeroOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, f.menuItem(t, "Soup", "4.25"), 3)

	first, err := f.engine.Checkout(ctx, f.ana)
	require.NoError(t, err)
	second, err := f.engine.Checkout(ctx, f.ana)
	require.NoError(t, err)

	assert.NotEqual(t, first.Order.ID, second.Order.ID)
	assert.True(t, second.Empty)
	assert.True(t, second.Order.Total.IsZero())
	assert.Empty(t, second.Order.Items)
}

func TestCheckout_PricesAreFrozen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.menuItem(t, "Pasta", "9.99")
	f.add(t, a, 1)

	res, err := f.engine.Checkout(ctx, f.ana)
	require.NoError(t, err)

	it, err := f.store.Menu().GetByID(ctx, a)
	require.NoError(t, err)
	it.Price = decimal.RequireFromString("12.00")
	require.NoError(t, f.store.Menu().Update(ctx, it))

	stored, err := f.store.Orders().Get(ctx, res.Order.ID, "")
	require.NoError(t, err)
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("9.99")))
	assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("9.99")))
}

func TestCheckout_Anonymous(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.Checkout(context.Background(), access.Anonymous())
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)
}

func TestCheckout_DeletedUser(t *testing.T) {
	f := newFixture(t)
	ghost := access.Principal{UserID: uuid.NewString(), Username: "ghost"}
	_, err := f.engine.Checkout(context.Background(), ghost)
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)
}

//
// ===== fault injection: CreateItems fails inside the transaction =====
//

type failingStore struct{ checkout.Store }

func (s failingStore) InTx(ctx context.Context, fn func(checkout.Tx) error) error {
	return s.Store.InTx(ctx, func(tx checkout.Tx) error { return fn(failingTx{tx}) })
}

type failingTx struct{ checkout.Tx }

func (t failingTx) Orders() order.Repository { return failingOrders{t.Tx.Orders()} }

type failingOrders struct{ order.Repository }

func (failingOrders) CreateItems(context.Context, []order.Item) error {
	return errors.New("disk full")
}

func TestCheckout_RollsBackOnItemFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, f.menuItem(t, "Bruschetta", "5.00"), 2)

	engine := checkout.NewEngine(failingStore{f.store}, logger.Discard())
	_, err := engine.Checkout(ctx, f.ana)
	require.ErrorIs(t, err, apperr.ErrTransaction)
	assert.EqualError(t, apperr.Cause(err), "create items: disk full")

	orders, err := f.store.Orders().List(ctx, order.Filter{})
	require.NoError(t, err)
	assert.Empty(t, orders, "no orphan order after rollback")
	lines, err := f.carts.ListLines(ctx, f.ana.UserID)
	require.NoError(t, err)
	assert.Len(t, lines, 1, "cart untouched after rollback")
}

func TestCheckout_ConcurrentCallsDoNotDoubleBill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, f.menuItem(t, "Bruschetta", "5.00"), 2)

	const n = 8
	results := make([]*checkout.Result, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.engine.Checkout(ctx, f.ana)
			if err == nil {
				results[i] = res
			}
		}(i)
	}
	wg.Wait()

	billed := 0
	for _, res := range results {
		require.NotNil(t, res)
		if !res.Empty {
			billed++
			assert.True(t, res.Order.Total.Equal(decimal.RequireFromString("10.00")))
		}
	}
	assert.Equal(t, 1, billed)
}

func TestTotal(t *testing.T) {
	lines := []cart.Line{
		{Price: decimal.RequireFromString("0.10")},
		{Price: decimal.RequireFromString("0.20")},
	}
	assert.True(t, checkout.Total(lines).Equal(decimal.RequireFromString("0.30")))
	assert.True(t, checkout.Total(nil).IsZero())
}

func TestCheckoutHandler(t *testing.T) {
	f := newFixture(t)
	f.add(t, f.menuItem(t, "Soup", "4.00"), 1)

	newRouter := func(p access.Principal) *gin.Engine {
		r := gin.New()
		r.Use(httpx.WithPrincipal(p))
		checkout.RegisterRoutes(r, f.engine)
		return r
	}
	post := func(r http.Handler) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders/", nil))
		return w
	}

	w := post(newRouter(access.Anonymous()))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := newRouter(f.ana)
	w = post(r)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Empty(t, w.Header().Get(checkout.HeaderCartEmpty))

	w = post(r)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get(checkout.HeaderCartEmpty))
}
