package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/shop-wallet/internal/domain/customer"
	"github.com/xenking/shop-wallet/internal/domain/order"
	"github.com/xenking/shop-wallet/internal/domain/wallet"
	"github.com/xenking/shop-wallet/internal/handler"
	"github.com/xenking/shop-wallet/internal/password"
	"github.com/xenking/shop-wallet/pkg/health"
	"github.com/xenking/shop-wallet/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store.Backend),
		zap.String("lock", cfg.Lock.Backend),
	)

	healthSvc := health.New()

	st, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer func() {
		if err := st.Close(context.WithoutCancel(ctx)); err != nil {
			lg.Warn("Close store", zap.Error(err))
		}
	}()
	if st.Ping != nil {
		healthSvc.AddReadinessCheck(cfg.Store.Backend, 5*time.Second, st.Ping)
	}

	locker, err := OpenLocker(cfg.Lock)
	if err != nil {
		return errors.Wrap(err, "open locker")
	}
	defer func() {
		if err := locker.Close(); err != nil {
			lg.Warn("Close locker", zap.Error(err))
		}
	}()
	if locker.Ping != nil {
		healthSvc.AddReadinessCheck("redis", 2*time.Second, locker.Ping)
	}
	if cfg.Lock.Backend == LockNone {
		lg.Warn("Customer lock disabled, concurrent wallet updates may fail with conflicts")
	}

	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(cfg.Health.MaxGoroutines))
	healthSvc.AddLivenessCheck("gc_pause", time.Second, health.GCMaxPauseCheck(cfg.Health.MaxGCPause))
	healthSvc.Start(ctx, cfg.Health.Interval)
	healthSvc.SetReady(true)

	// Domain services.
	customerService := customer.NewService(st.Customers, password.NewBcrypt(cfg.Password.BcryptCost))
	orderService := order.NewService(st.Orders, st.Customers)
	walletService, err := wallet.NewService(st.Customers, st.Orders, locker, m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create wallet service")
	}

	// Router: health probes + API routes.
	router := chi.NewRouter()
	router.Get("/livez", healthSvc.LiveEndpoint)
	router.Get("/readyz", healthSvc.ReadyEndpoint)
	handler.NewHandler(customerService, walletService, orderService).Register(router)

	routeFinder := httpmiddleware.MakeRouteFinder(router)
	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "X-Request-ID"},
				ExposeHeaders:    []string{"X-Request-ID"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.Instrument(cfg.ServiceName, routeFinder, m),
			httpmiddleware.LogRequests(routeFinder),
			httpmiddleware.Labeler(routeFinder),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
