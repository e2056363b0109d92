package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evhub/backend/libs/db"
	"evhub/backend/libs/redis"
	"evhub/backend/services/admin-console/internal/clients"
	"evhub/backend/services/admin-console/internal/config"
	httpserver "evhub/backend/services/admin-console/internal/http"
	"evhub/backend/services/admin-console/internal/http/handlers"
	"evhub/backend/services/admin-console/internal/http/middleware"
	"evhub/backend/services/admin-console/internal/loginhistory"
	"evhub/backend/services/admin-console/internal/notify"
	"evhub/backend/services/admin-console/internal/service"
	"evhub/backend/services/admin-console/internal/session"
	"evhub/backend/services/admin-console/internal/usercache"
)

const sessionTTL = 12 * time.Hour

// App wires admin console dependencies.
type App struct {
	server  *httpserver.Server
	hub     *notify.Hub
	session *session.Session
	users   *service.UserService
	retry   clients.Retrier
	cacheDB *sql.DB
	redis   *goredis.Client
	logger  *zap.Logger
}

// New constructs application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.UsesRedis() {
		a.redis, err = redis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}

	var store session.Store = session.NewMemoryStore()
	if cfg.Session.Backend == config.BackendRedis {
		store = session.NewRedisStore(a.redis, "", sessionTTL)
	}
	if cfg.Session.Secret != "" {
		store = session.NewSealedStore(store, cfg.Session.Secret)
	}
	a.session = session.New(store, logger.Named("session"))

	var history loginhistory.Log = loginhistory.NewMemoryLog()
	if cfg.History.Backend == config.BackendRedis {
		history = loginhistory.NewRedisLog(a.redis, "")
	}

	switch cfg.Cache.Driver {
	case usercache.DriverPostgres:
		a.cacheDB, err = db.NewPostgresDB(cfg.Cache.DSN)
	default:
		a.cacheDB, err = db.NewSQLiteDB(cfg.Cache.DSN)
	}
	if err != nil {
		return nil, fmt.Errorf("open user cache: %w", err)
	}
	cache, err := usercache.New(a.cacheDB, cfg.Cache.Driver)
	if err != nil {
		return nil, err
	}
	if err := cache.Init(ctx); err != nil {
		return nil, fmt.Errorf("init user cache: %w", err)
	}

	a.hub = notify.NewHub(logger.Named("notify"))
	ws := notify.NewServer(a.hub, 0, 0, logger.Named("ws"))

	base := clients.NewClient(clients.Options{
		BaseURL:       cfg.API.BaseURL,
		ClientVersion: cfg.API.ClientVersion,
		Timeout:       cfg.APITimeout(),
		OnUnauthorized: func(context.Context) {
			a.hub.SessionExpired()
		},
	}, nil, a.session, logger.Named("api"))

	a.retry = clients.Retrier{Attempts: cfg.API.RetryAttempts, Base: cfg.RetryBase()}
	batch := service.BatchOptions{Size: cfg.Batch.Size, Delay: cfg.BatchDelay()}

	authSvc := service.NewAuthService(clients.NewAuthClient(base), a.session, history, logger.Named("auth"))
	stationSvc := service.NewStationService(clients.NewStationsClient(base), batch, logger.Named("stations"))
	bookingSvc := service.NewBookingService(clients.NewBookingsClient(base), logger.Named("bookings"))
	a.users = service.NewUserService(clients.NewUsersClient(base), cache, logger.Named("users"))

	apiProxy, err := httpserver.NewAPIProxy(cfg.Proxy.Target, cfg.Proxy.Verbose, logger.Named("proxy"))
	if err != nil {
		return nil, err
	}

	router := httpserver.NewRouter(httpserver.RouterDeps{
		AuthHandlers:     handlers.NewAuthHandlers(authSvc, a.hub, logger),
		StationsHandlers: handlers.NewStationsHandlers(stationSvc, a.hub, logger),
		BookingsHandlers: handlers.NewBookingsHandlers(bookingSvc, a.hub, logger),
		UsersHandlers:    handlers.NewUsersHandlers(a.users, a.retry, a.hub, logger),
		HealthHandler:    handlers.NewHealthHandler(func() fmt.Stringer { return cache.State() }),
		Notifications:    ws.HandleWS,
		APIProxy:         apiProxy,
	}, middleware.RequireSession(a.session))

	a.server = httpserver.NewServer(
		httpserver.ServerOptions{Addr: cfg.HTTPAddress(), WriteTimeout: cfg.WriteTimeout()},
		router,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)
	return a, nil
}

// Run warms the user cache when a session survived a restart, then serves
// HTTP traffic until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.session.Authenticated(ctx) {
		go func() {
			if _, err := a.users.Refresh(ctx, a.retry); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("user cache warm-up failed", zap.Error(err))
			}
		}()
	}
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.hub != nil {
		a.hub.Close()
	}
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			a.logger.Warn("close session store", zap.Error(err))
		}
	}
	if a.cacheDB != nil {
		if err := a.cacheDB.Close(); err != nil {
			a.logger.Warn("close user cache", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
}
