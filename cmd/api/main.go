// @title       Little Lemon API
// @version     1.0
// @description Menu, cart, checkout and order management for the Little Lemon restaurant.
// @BasePath    /
// @securityDefinitions.apikey Bearer
// @in   header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeMC777/littlelemon-api/internal/cart"
	"github.com/MikeMC777/littlelemon-api/internal/checkout"
	"github.com/MikeMC777/littlelemon-api/internal/config"
	"github.com/MikeMC777/littlelemon-api/internal/db"
	"github.com/MikeMC777/littlelemon-api/internal/logger"
	"github.com/MikeMC777/littlelemon-api/internal/memstore"
	"github.com/MikeMC777/littlelemon-api/internal/menu"
	"github.com/MikeMC777/littlelemon-api/internal/order"
	"github.com/MikeMC777/littlelemon-api/internal/server"
	"github.com/MikeMC777/littlelemon-api/internal/throttle"
	"github.com/MikeMC777/littlelemon-api/internal/user"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "littlelemon-api", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})
	cfg.Log(log)
	if err := cfg.Validate(); err != nil {
		log.Error("config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("exit", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

// repos is the storage backend chosen by configuration.
type repos struct {
	users    user.Repository
	menu     menu.Repository
	cart     cart.Repository
	orders   order.Repository
	checkout checkout.Store
	ping     server.Pinger
	close    func()
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (*repos, error) {
	switch cfg.Store {
	case "memory":
		log.Warn("using the in-memory store, data is lost on exit")
		s := memstore.New()
		return &repos{
			users: s.Users(), menu: s.Menu(), cart: s.Cart(), orders: s.Orders(),
			checkout: s, ping: s, close: func() {},
		}, nil
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &repos{
			users:    user.NewPGRepo(pool),
			menu:     menu.NewPGRepo(pool),
			cart:     cart.NewPGRepo(pool),
			orders:   order.NewPGRepo(pool),
			checkout: checkout.NewPGStore(pool),
			ping:     pool,
			close:    pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
	}
}

func newLimiter(cfg config.Config, log *slog.Logger) (throttle.Limiter, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info("throttle: in-process limiter")
		return throttle.NewMemoryLimiter(), func() {}, nil
	}
	client, err := throttle.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	log.Info("throttle: redis limiter", slog.String("addr", cfg.RedisAddr))
	return throttle.NewRedisLimiter(client), func() { _ = client.Close() }, nil
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	anon, err := throttle.ParseRate(cfg.AnonRate)
	if err != nil {
		return fmt.Errorf("THROTTLE_ANON_RATE: %w", err)
	}
	authed, err := throttle.ParseRate(cfg.UserRate)
	if err != nil {
		return fmt.Errorf("THROTTLE_USER_RATE: %w", err)
	}

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	limiter, closeLimiter, err := newLimiter(cfg, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	users := user.NewService(st.users, user.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL), log)
	if cfg.AdminUsername != "" {
		if err := users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	router := server.NewRouter(server.Deps{
		Log:      log,
		Users:    users,
		Menu:     st.menu,
		Cart:     cart.NewService(st.cart, st.menu, log),
		Orders:   order.NewService(st.orders, users, log),
		Checkout: checkout.NewEngine(st.checkout, log),
		Limiter:  limiter,
		AnonRate: anon,
		UserRate: authed,
		Store:    st.ping,

		CORSOrigins: cfg.CORSOrigins,
	})

	httpLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		httpLis.Close()
		return fmt.Errorf("listen grpc: %w", err)
	}
	grpcSrv, healthSrv := server.NewGRPC()

	return server.Run(ctx, server.Servers{
		HTTP: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		GRPC:         grpcSrv,
		Health:       healthSrv,
		HTTPListener: httpLis,
		GRPCListener: grpcLis,
	}, cfg.ShutdownTimeout, log)
}
