package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	validator "github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ngocvh/backend-cho/internal/analytics"
	"github.com/ngocvh/backend-cho/internal/app"
	"github.com/ngocvh/backend-cho/internal/audit"
	"github.com/ngocvh/backend-cho/internal/auth"
	"github.com/ngocvh/backend-cho/internal/catalog"
	"github.com/ngocvh/backend-cho/internal/common"
	"github.com/ngocvh/backend-cho/internal/config"
	"github.com/ngocvh/backend-cho/internal/events"
	"github.com/ngocvh/backend-cho/internal/favorites"
	"github.com/ngocvh/backend-cho/internal/health"
	"github.com/ngocvh/backend-cho/internal/ledger"
	"github.com/ngocvh/backend-cho/internal/lock"
	"github.com/ngocvh/backend-cho/internal/notify"
	"github.com/ngocvh/backend-cho/internal/obs"
	"github.com/ngocvh/backend-cho/internal/order"
	"github.com/ngocvh/backend-cho/internal/promo"
	"github.com/ngocvh/backend-cho/internal/ratelimit"
	"github.com/ngocvh/backend-cho/internal/security"
	"github.com/ngocvh/backend-cho/internal/settings"
	"github.com/ngocvh/backend-cho/internal/store"
)

func main() {
	cfg := config.MustLoad()

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "cho")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	tracingEnabled := envBool("OBS_ENABLE_TRACING", true)
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "cho-api",
			Endpoint:      envOrDefault("OBS_OTLP_ENDPOINT", ""),
			Exporter:      envOrDefault("OBS_TRACING_EXPORTER", "otlp"),
			SamplingRatio: envFloat("OBS_TRACING_SAMPLING_RATIO", 1.0),
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if envBool("DB_AUTO_MIGRATE", true) {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
	}

	pool, err := app.NewPostgresPool(ctx, cfg.DatabaseURL, "cho-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("database unavailable")
	}
	defer pool.Close()

	redisClient, err := app.NewRedisClient(ctx, cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis unavailable")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	taskClient, err := app.NewTaskClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("task client unavailable")
	}
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	st := store.New(pool)
	validate := validator.New()

	authService, err := auth.NewService(auth.Config{
		Store:           st,
		Secret:          cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise auth service")
	}
	authHandler := &auth.Handler{Service: authService}
	authMiddleware := auth.Middleware{Service: authService}

	settingsService := &settings.Service{
		Store:    st,
		Redis:    redisClient,
		CacheTTL: cfg.SettingsCacheTTL,
		Log:      logger,
	}
	settingsHandler := &settings.Handler{Service: settingsService}

	catalogService := &catalog.Service{
		Store: st,
		Cache: catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
		Log:   logger,
	}
	catalogHandler := &catalog.Handler{Service: catalogService}

	pushNotifier := &notify.Notifier{
		Store:    st,
		Client:   taskClient,
		Queue:    cfg.PushQueue,
		MaxRetry: cfg.PushMaxAttempts,
		Log:      logger,
	}
	bus := &events.Bus{Store: st, Notifiers: []events.Notifier{pushNotifier}}

	promoService := &promo.Service{Store: st}
	promoHandler := &promo.Handler{Service: promoService}

	ledgerService := &ledger.Service{Store: st, Events: bus, Log: logger}
	ledgerHandler := &ledger.Handler{Service: ledgerService}

	orderService := &order.Service{
		Store:    st,
		Settings: settingsService,
		Promos:   promoService,
		Ledger:   ledgerService,
		Events:   bus,
		Validate: validate,
		Log:      logger,
	}
	orderHandler := &order.Handler{Service: orderService}
	shipperHandler := &order.ShipperHandler{Service: orderService}
	orderAdmin := &order.AdminHandler{Service: orderService}

	deviceHandler := &notify.Handler{Store: st}

	favoritesHandler := &favorites.Handler{Svc: &favorites.Service{Store: st}}

	analyticsHandler := &analytics.Handler{Svc: &analytics.Service{
		Q:    st,
		R:    redisClient,
		TTL:  cfg.AnalyticsCacheTTL,
		Lock: &lock.Locker{R: redisClient},
	}}

	auditService := &audit.Service{Store: st, Enabled: envBool("AUDIT_ENABLED", true)}
	auditHandler := &audit.Handler{Service: auditService}
	auditRecorder := audit.HTTPRecorder{
		Service: auditService,
		OnError: func(err error) {
			logger.Warn().Err(err).Msg("record audit entry")
		},
	}
	auditAdmin := func(resourceType, idParam string) func(http.Handler) http.Handler {
		return auditRecorder.Middleware(audit.HTTPConfig{ResourceType: resourceType, ResourceIDParam: idParam})
	}

	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	limiterStore, err := ratelimit.NewStore(redisClient, "rl")
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter store")
	}
	loginLimiter, err := ratelimit.New(limiterStore, cfg.LoginRateLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse login rate limit")
	}
	acceptLimiter, err := ratelimit.New(limiterStore, cfg.AcceptRateLimit)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse accept rate limit")
	}
	onLimiterError := func(err error) {
		logger.Warn().Err(err).Msg("rate limiter degraded")
	}
	loginLimit := ratelimit.Middleware(loginLimiter, ratelimit.ByClientIP, onLimiterError)
	acceptLimit := ratelimit.Middleware(acceptLimiter, ratelimit.ByUser, onLimiterError)

	var httpMetrics *obs.HTTPMetrics
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		httpMetrics = obs.NewHTTPMetrics(metricsNamespace, buckets, nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers{
		Enable:     envBool("SECURE_HEADERS", true),
		EnableHSTS: envBool("SECURE_HSTS", false),
	}.Middleware)
	r.Use(security.BodyLimit{Max: envInt64("SECURE_MAX_BODY_BYTES", 1<<20)}.Middleware)
	r.Use(obs.RoutePatternMiddleware)
	if tracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if metricsEnabled && httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{Checker: health.Probes{DB: pool, Redis: redisClient}}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Route("/auth", func(a chi.Router) {
			a.With(loginLimit).Post("/register", authHandler.Register)
			a.With(loginLimit).Post("/login", authHandler.Login)
			a.Post("/refresh", authHandler.Refresh)
			a.Post("/logout", authHandler.Logout)
			a.With(authMiddleware.RequireAuth).Get("/me", authHandler.Me)
		})

		v.Get("/settings", settingsHandler.Get)

		v.Get("/shops", catalogHandler.ListShops)
		v.Get("/shops/{shopID}", catalogHandler.GetShop)
		v.Get("/shops/{shopID}/items", catalogHandler.Menu)
		v.Group(func(g chi.Router) {
			g.Use(authMiddleware.RequireAuth)
			g.Post("/shops", catalogHandler.CreateShop)
			g.Put("/shops/{shopID}", catalogHandler.UpdateShop)
			g.Post("/shops/{shopID}/items", catalogHandler.CreateItem)
			g.Put("/items/{itemID}", catalogHandler.UpdateItem)
			g.Delete("/items/{itemID}", catalogHandler.DeleteItem)
		})

		v.With(authMiddleware.Authenticate).Post("/promos/preview", promoHandler.Preview)

		v.Route("/orders", func(o chi.Router) {
			o.With(authMiddleware.Authenticate, idem.Middleware).Post("/", orderHandler.Create)
			o.With(authMiddleware.RequireAuth).Get("/", orderHandler.ListMine)
			o.With(authMiddleware.Authenticate).Get("/{orderID}", orderHandler.Get)
			o.With(authMiddleware.RequireAuth).Post("/{orderID}/cancel", orderHandler.Cancel)
			o.With(authMiddleware.RequireAuth).Post("/{orderID}/items/{lineID}/cancel", orderHandler.CancelLine)
		})

		v.Route("/shipper", func(sh chi.Router) {
			sh.Use(authMiddleware.RequireRole(auth.RoleShipper))
			sh.Get("/orders/pending", shipperHandler.Feed)
			sh.Get("/orders", shipperHandler.Mine)
			sh.With(acceptLimit).Post("/orders/{orderID}/accept", shipperHandler.Accept)
			sh.Post("/orders/{orderID}/status", shipperHandler.UpdateStatus)
			sh.Get("/balance", ledgerHandler.MyBalance)
			sh.Get("/ledger", ledgerHandler.MyHistory)
		})

		v.Route("/favorites", func(f chi.Router) {
			f.Use(authMiddleware.RequireAuth)
			f.Get("/", favoritesHandler.List)
			f.Post("/", favoritesHandler.Toggle)
			f.Get("/{shopID}", favoritesHandler.Check)
		})

		v.Route("/devices", func(d chi.Router) {
			d.Use(authMiddleware.RequireAuth)
			d.Post("/", deviceHandler.RegisterDevice)
			d.Delete("/", deviceHandler.UnregisterDevice)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireRole(auth.RoleAdmin))
			admin.With(auditAdmin("settings", "")).Put("/settings", settingsHandler.Update)
			admin.Get("/orders", orderAdmin.List)
			admin.With(auditAdmin("order", "orderID")).Post("/orders/{orderID}/status", orderAdmin.UpdateStatus)
			admin.With(auditAdmin("promo", "")).Post("/promos", promoHandler.Create)
			admin.Get("/promos", promoHandler.List)
			admin.With(auditAdmin("promo", "promoID")).Put("/promos/{promoID}", promoHandler.Update)
			admin.With(auditAdmin("promo", "promoID")).Patch("/promos/{promoID}/enabled", promoHandler.SetEnabled)
			admin.Get("/ledger", ledgerHandler.Balances)
			admin.Get("/ledger/{shipperID}", ledgerHandler.ShipperBalance)
			admin.With(auditAdmin("ledger", "shipperID")).Post("/ledger/{shipperID}/settle", ledgerHandler.Settle)
			admin.With(auditAdmin("ledger", "shipperID")).Post("/ledger/{shipperID}/adjust", ledgerHandler.Adjust)
			admin.Get("/audit", auditHandler.List)
			admin.Get("/analytics/overview", analyticsHandler.Overview)
			admin.Get("/analytics/sales", analyticsHandler.Sales)
			admin.Get("/analytics/top-items", analyticsHandler.TopItems)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		if trimmed := strings.TrimSpace(val); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
