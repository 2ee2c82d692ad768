// Package memstore keeps every repository in process memory. It backs the
// API when no Postgres DSN is configured and is the store of the
// end-to-end tests. Data is lost on exit.
package memstore

import (
	"context"
	"sync"

	"github.com/MikeMC777/littlelemon-api/internal/apperr"
	"github.com/MikeMC777/littlelemon-api/internal/cart"
	"github.com/MikeMC777/littlelemon-api/internal/checkout"
	"github.com/MikeMC777/littlelemon-api/internal/menu"
	"github.com/MikeMC777/littlelemon-api/internal/order"
	"github.com/MikeMC777/littlelemon-api/internal/user"
)

// Store holds all data behind one mutex. A transaction holds the mutex
// for its whole run, so transactions are serialised.
type Store struct {
	mu sync.Mutex
	st *state
}

type state struct {
	users  map[string]*user.User
	menu   map[string]*menu.MenuItem
	lines  map[string]*cart.Line
	orders map[string]*order.Order
}

func New() *Store {
	return &Store{st: &state{
		users:  map[string]*user.User{},
		menu:   map[string]*menu.MenuItem{},
		lines:  map[string]*cart.Line{},
		orders: map[string]*order.Order{},
	}}
}

func (s *state) clone() *state {
	c := &state{
		users:  make(map[string]*user.User, len(s.users)),
		menu:   make(map[string]*menu.MenuItem, len(s.menu)),
		lines:  make(map[string]*cart.Line, len(s.lines)),
		orders: make(map[string]*order.Order, len(s.orders)),
	}
	for k, v := range s.users {
		c.users[k] = copyUser(v)
	}
	for k, v := range s.menu {
		cp := *v
		c.menu[k] = &cp
	}
	for k, v := range s.lines {
		cp := *v
		c.lines[k] = &cp
	}
	for k, v := range s.orders {
		c.orders[k] = copyOrder(v)
	}
	return c
}

// view is the repository surface. Outside a transaction every call takes
// the store mutex; inside one the transaction already holds it.
type view struct {
	s    *Store
	inTx bool
}

func (v view) lock() func() {
	if v.inTx {
		return func() {}
	}
	v.s.mu.Lock()
	return v.s.mu.Unlock
}

func (s *Store) Users() *Users   { return &Users{view{s: s}} }
func (s *Store) Menu() *Menu     { return &Menu{view{s: s}} }
func (s *Store) Cart() *Cart     { return &Cart{view{s: s}} }
func (s *Store) Orders() *Orders { return &Orders{view{s: s}} }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// InTx implements checkout.Store. fn works on the live data; if it fails
// the data is restored from a snapshot taken before fn ran.
func (s *Store) InTx(ctx context.Context, fn func(tx checkout.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.st.clone()
	tx := &memTx{v: view{s: s, inTx: true}}
	if err := fn(tx); err != nil {
		s.st = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

type memTx struct{ v view }

func (t *memTx) LockUser(_ context.Context, userID string) error {
	if _, ok := t.v.s.st.users[userID]; !ok {
		return apperr.ErrNotAuthenticated
	}
	return nil
}

func (t *memTx) Cart() cart.Repository { return &Cart{t.v} }

func (t *memTx) Orders() order.Repository { return &Orders{t.v} }

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

var (
	_ user.Repository  = (*Users)(nil)
	_ menu.Repository  = (*Menu)(nil)
	_ cart.Repository  = (*Cart)(nil)
	_ order.Repository = (*Orders)(nil)
	_ checkout.Store   = (*Store)(nil)
)
