// Package app builds the object graph for one process from Config: stores
// (Postgres or in-memory), the unit-of-work boundary, services and the
// HTTP router.
package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"safereturn/internal/dashboard"
	dashboardHandler "safereturn/internal/dashboard/handler"
	followupHandler "safereturn/internal/followup/handler"
	"safereturn/internal/followup/lock"
	followupMetrics "safereturn/internal/followup/metrics"
	followupService "safereturn/internal/followup/service"
	followupStore "safereturn/internal/followup/store"
	"safereturn/internal/notifications"
	notificationHandler "safereturn/internal/notifications/handler"
	notificationMetrics "safereturn/internal/notifications/metrics"
	notificationService "safereturn/internal/notifications/service"
	notificationStores "safereturn/internal/notifications/store"
	"safereturn/internal/platform/config"
	platformMetrics "safereturn/internal/platform/metrics"
	"safereturn/internal/platform/postgres"
	"safereturn/internal/platform/redis"
	"safereturn/internal/tickets"
	ticketHandler "safereturn/internal/tickets/handler"
	ticketMetrics "safereturn/internal/tickets/metrics"
	ticketService "safereturn/internal/tickets/service"
	ticketStores "safereturn/internal/tickets/store"
	httptransport "safereturn/internal/transport/http"
)

// App is a fully wired process.
type App struct {
	FollowUp      *followupService.Service
	Tickets       *ticketService.Service
	Notifications *notificationService.Service
	Dashboard     *dashboard.Service
	Router        http.Handler
	Registry      *prometheus.Registry

	db     *sql.DB
	redis  *redis.Client
	logger *slog.Logger
}

type profileStore interface {
	followupService.ProfileStore
	dashboard.ProfileStore
}

type ticketStore interface {
	ticketService.Store
	followupService.TicketStore
	dashboard.TicketStore
}

type notificationStore interface {
	notifications.Store
	notificationService.Store
}

type stores struct {
	profiles      profileStore
	checkins      followupService.CheckInStore
	tickets       ticketStore
	notifications notificationStore
	tx            followupService.StoreTx
}

// New wires the application. An empty DATABASE_URL selects in-memory
// stores; REDIS_URL, when set, adds the distributed per-profile lock.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger, Registry: prometheus.NewRegistry()}
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st, err := a.openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if rc != nil {
		a.redis = rc
		locker := lock.NewRedisLocker(rc.Client, lock.WithTTL(cfg.Redis.LockTTL))
		st.tx = lock.NewLockingTx(st.tx, locker, logger)
		logger.InfoContext(ctx, "distributed profile lock enabled")
	}

	emitter := notifications.NewEmitter(st.notifications,
		notifications.WithLogger(logger),
		notifications.WithMetrics(notificationMetrics.New(a.Registry)),
	)
	a.FollowUp = followupService.New(st.profiles, st.checkins, st.tickets, st.tx, emitter,
		followupService.WithLogger(logger),
		followupService.WithMetrics(followupMetrics.New(a.Registry)),
		followupService.WithGenerator(tickets.NewGenerator(cfg.Tickets.Dedup)),
		followupService.WithScheduleEnforcement(cfg.FollowUp.EnforceSchedule),
	)
	a.Tickets = ticketService.New(st.tickets, st.profiles, st.tx, emitter,
		ticketService.WithLogger(logger),
		ticketService.WithMetrics(ticketMetrics.New(a.Registry)),
	)
	a.Notifications = notificationService.New(st.notifications)
	a.Dashboard = dashboard.New(st.profiles, st.tickets, dashboard.WithLogger(logger))

	a.Router = httptransport.NewRouter(httptransport.Config{
		Logger:         logger,
		Metrics:        platformMetrics.New(a.Registry),
		Gatherer:       a.Registry,
		RequestTimeout: cfg.Server.RequestTimeout,
		Handlers: []httptransport.Registrar{
			followupHandler.New(a.FollowUp, logger),
			ticketHandler.New(a.Tickets, logger),
			notificationHandler.New(a.Notifications, logger),
			dashboardHandler.New(a.Dashboard, logger),
		},
		HealthChecks: a.healthChecks(),
	})
	return a, nil
}

func (a *App) openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	if cfg.Database.URL == "" {
		a.logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
		return &stores{
			profiles:      followupStore.NewInMemoryProfiles(),
			checkins:      followupStore.NewInMemoryCheckIns(),
			tickets:       ticketStores.NewInMemory(),
			notifications: notificationStores.NewInMemory(),
			tx:            followupService.NewShardedTx(cfg.FollowUp.TxTimeout),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	a.db = db
	return &stores{
		profiles:      followupStore.NewPostgresProfiles(db),
		checkins:      followupStore.NewPostgresCheckIns(db),
		tickets:       ticketStores.NewPostgres(db),
		notifications: notificationStores.NewPostgres(db),
		tx:            followupStore.NewPostgresTx(db, cfg.FollowUp.TxTimeout),
	}, nil
}

func (a *App) healthChecks() map[string]httptransport.HealthCheck {
	checks := make(map[string]httptransport.HealthCheck)
	if a.db != nil {
		checks["postgres"] = a.db.PingContext
	}
	if a.redis != nil {
		checks["redis"] = a.redis.Health
	}
	return checks
}

// DB returns the Postgres handle, or nil when running in memory.
func (a *App) DB() *sql.DB {
	return a.db
}

// Close releases external connections.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
