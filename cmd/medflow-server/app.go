package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/medflow/medflow/internal/config"
	"github.com/medflow/medflow/internal/dashboard"
	"github.com/medflow/medflow/internal/domain/appointment"
	"github.com/medflow/medflow/internal/domain/department"
	"github.com/medflow/medflow/internal/domain/patient"
	"github.com/medflow/medflow/internal/domain/staff"
	"github.com/medflow/medflow/internal/platform/auth"
	"github.com/medflow/medflow/internal/platform/db"
	"github.com/medflow/medflow/internal/platform/gateway"
	"github.com/medflow/medflow/internal/platform/kvstore"
	"github.com/medflow/medflow/internal/platform/middleware"
	"github.com/medflow/medflow/internal/platform/websocket"
	"github.com/medflow/medflow/internal/seed"
	"github.com/medflow/medflow/pkg/pagination"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// backend is the process-wide storage client. Exactly one of pool and redis
// is set unless the backend is memory.
type backend struct {
	kind  string
	pool  *pgxpool.Pool
	redis *kvstore.Client
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	b := &backend{kind: cfg.StoreBackend}
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		b.pool = pool
	case config.BackendRedis:
		client, err := kvstore.Open(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		b.redis = client
	}
	return b, nil
}

func (b *backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

// gateways holds one gateway per entity kind, all over the same backend.
type gateways struct {
	patients     *patient.Gateway
	staff        *staff.Gateway
	appointments *appointment.Gateway
	departments  *department.Gateway
}

func newGateways(b *backend, logger zerolog.Logger, n gateway.Notifier, now func() time.Time) gateways {
	switch b.kind {
	case config.BackendPostgres:
		return gateways{
			patients:     patient.NewGateway(patient.NewRepoPG(b.pool), logger, n, now),
			staff:        staff.NewGateway(staff.NewRepoPG(b.pool), logger, n),
			appointments: appointment.NewGateway(appointment.NewRepoPG(b.pool), logger, n),
			departments:  department.NewGateway(department.NewRepoPG(b.pool), logger, n),
		}
	case config.BackendRedis:
		rdb := b.redis.Redis()
		return gateways{
			patients:     patient.NewGateway(kvstore.NewStore[patient.Patient](rdb, patient.Kind), logger, n, now),
			staff:        staff.NewGateway(kvstore.NewStore[staff.Staff](rdb, staff.Kind), logger, n),
			appointments: appointment.NewGateway(kvstore.NewStore[appointment.Appointment](rdb, appointment.Kind), logger, n),
			departments:  department.NewGateway(kvstore.NewStore[department.Department](rdb, department.Kind), logger, n),
		}
	}
	return gateways{
		patients:     patient.NewGateway(gateway.NewMemoryStore[patient.Patient](patient.Kind), logger, n, now),
		staff:        staff.NewGateway(gateway.NewMemoryStore[staff.Staff](staff.Kind), logger, n),
		appointments: appointment.NewGateway(gateway.NewMemoryStore[appointment.Appointment](appointment.Kind), logger, n),
		departments:  department.NewGateway(gateway.NewMemoryStore[department.Department](department.Kind), logger, n),
	}
}

func (g gateways) seedTarget() seed.Target {
	return seed.Target{Departments: g.departments, Staff: g.staff, Patients: g.patients, Appointments: g.appointments}
}

func (g gateways) loader() *dashboard.Loader {
	return &dashboard.Loader{Patients: g.patients, Staff: g.staff, Appointments: g.appointments, Departments: g.departments}
}

type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	backend *backend
	now     func() time.Time
	hub     *websocket.Hub
	gw      gateways
	feed    *dashboard.Feed
}

func newApp(cfg *config.Config, logger zerolog.Logger, b *backend) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	now := func() time.Time { return time.Now().In(loc) }

	hub := websocket.NewHub(logger)
	notifier := gateway.Fanout{gateway.LogNotifier{Logger: logger}, hub}
	gw := newGateways(b, logger, notifier, now)
	pagination.SetDefaultPageSize(cfg.PageSize)

	return &app{
		cfg:     cfg,
		logger:  logger,
		backend: b,
		now:     now,
		hub:     hub,
		gw:      gw,
		feed:    dashboard.NewFeed(gw.loader(), hub, websocket.TopicDashboard, now, logger),
	}, nil
}

// seedMemory fills an empty memory backend from SEED_FILE or the demo
// dataset. Other backends are seeded explicitly with the seed command.
func (a *app) seedMemory(ctx context.Context) error {
	if a.backend.kind != config.BackendMemory {
		return nil
	}
	data := seed.Demo()
	source := "demo"
	if a.cfg.SeedFile != "" {
		d, err := seed.LoadFile(a.cfg.SeedFile)
		if err != nil {
			return err
		}
		data, source = d, a.cfg.SeedFile
	}
	n, err := seed.Apply(ctx, a.gw.seedTarget(), data, a.now())
	if err != nil {
		return fmt.Errorf("seed %s: %w", source, err)
	}
	a.logger.Info().Str("source", source).Int("records", n.Total()).Msg("memory store seeded")
	return nil
}

// initialEvents sends the latest dashboard to clients subscribing to it.
func (a *app) initialEvents(topics []string) []websocket.Event {
	subscribed := false
	for _, t := range topics {
		if t == websocket.TopicDashboard {
			subscribed = true
		}
	}
	if !subscribed {
		return nil
	}
	s, ok := a.feed.Latest()
	if !ok {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	return []websocket.Event{{
		Type:      dashboard.EventSummary,
		Topic:     websocket.TopicDashboard,
		Timestamp: s.GeneratedAt,
		Data:      data,
	}}
}

func (a *app) authMiddleware() echo.MiddlewareFunc {
	jwtCfg := auth.JWTConfig{
		Issuer:     a.cfg.AuthIssuer,
		Audience:   a.cfg.AuthAudience,
		SigningKey: []byte(a.cfg.AuthSigningKey),
		Skipper:    auth.AuthSkipper,
	}
	if a.cfg.IsDev() {
		return auth.DevAuthMiddleware(jwtCfg)
	}
	return auth.JWTMiddleware(jwtCfg)
}

func (a *app) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(a.logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(a.logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: a.cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(a.cfg.BodyLimit))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: a.cfg.RateLimitRPS,
		BurstSize:         a.cfg.RateLimitBurst,
		IdleTTL:           middleware.DefaultRateLimitConfig().IdleTTL,
	}))
	e.Use(a.authMiddleware())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "backend": a.backend.kind})
	})
	switch {
	case a.backend.pool != nil:
		e.GET("/health/db", db.PoolHealthHandler(a.backend.pool))
	case a.backend.redis != nil:
		e.GET("/health/db", db.HealthHandler(config.BackendRedis, a.backend.redis, nil))
	}

	announce := gateway.Announcer{
		Notifier: gateway.Fanout{gateway.LogNotifier{Logger: a.logger}, a.hub},
		OnChange: a.feed.Trigger,
		Clock:    a.now,
	}

	api := e.Group("/api/v1")
	patient.NewHandler(a.gw.patients, announce, a.now).RegisterRoutes(api)
	staff.NewHandler(a.gw.staff, announce, a.now).RegisterRoutes(api)
	appointment.NewHandler(a.gw.appointments, a.gw.patients, a.gw.staff, announce, a.now).RegisterRoutes(api)
	department.NewHandler(a.gw.departments, a.gw.staff, announce).RegisterRoutes(api)
	dashboard.NewHandler(a.gw.loader(), a.now).RegisterRoutes(api)

	ws := e.Group("", auth.RequireRole(auth.ReadRoles...))
	websocket.NewHandler(a.hub, a.cfg.CORSOrigins, a.initialEvents).RegisterRoutes(ws)

	return e
}

func (a *app) Close() {
	a.feed.Close()
	a.backend.Close()
}
