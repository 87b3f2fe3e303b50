package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/custos-io/custos/internal/adapter/compressor"
	"github.com/custos-io/custos/internal/adapter/database"
	"github.com/custos-io/custos/internal/adapter/notifier"
	"github.com/custos-io/custos/internal/adapter/storage"
	"github.com/custos-io/custos/internal/config"
	"github.com/custos-io/custos/internal/domain"
	"github.com/custos-io/custos/internal/infrastructure/logger"
	"github.com/custos-io/custos/internal/infrastructure/metrics"
	"github.com/custos-io/custos/internal/infrastructure/scheduler"
	"github.com/custos-io/custos/internal/usecase"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	scheduler  *scheduler.Scheduler
	metricsSrv *http.Server
}

func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infof("Starting %s", cfg.App.Name)
	log.Infof("Backup target: %s (%s) at %s", cfg.Database.Database, cfg.Database.Type, cfg.Database.Addr())

	store, err := storage.NewPartitioned(cfg.Backup.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize backup directory: %w", err)
	}

	db, err := newDatabase(&cfg.Database)
	if err != nil {
		return nil, err
	}

	notifiers := initializeNotifiers(cfg, log)
	if len(notifiers) == 0 {
		log.Warnf("No notification channel configured; run outcomes will only be logged")
	}

	backupUC := usecase.NewBackup(
		cfg.Database.Database,
		db,
		store,
		notifiers,
		compressor.NewGzip(),
		log,
		cfg.Backup.Compress,
	)

	sched, err := scheduler.New(scheduler.Rule{
		Weekday:      cfg.Schedule.Weekday,
		At:           cfg.Schedule.At,
		Cron:         cfg.Schedule.Cron,
		PollInterval: cfg.Schedule.PollInterval,
	}, backupUC, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize scheduler: %w", err)
	}

	app := &App{
		config:    cfg,
		logger:    log,
		scheduler: sched,
	}

	if cfg.Metrics.Enabled {
		app.metricsSrv = metrics.NewServer(cfg.Metrics.ListenPort)
	}

	return app, nil
}

func newDatabase(cfg *config.DatabaseConfig) (domain.Database, error) {
	switch cfg.Type {
	case "sqlserver":
		return database.NewSQLServer(cfg), nil
	case "mysql":
		return database.NewMySQL(cfg), nil
	case "postgresql":
		return database.NewPostgreSQL(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

func initializeNotifiers(cfg *config.Config, log *logger.Logger) []domain.Notifier {
	var notifiers []domain.Notifier

	if cfg.Notify.Email.Enabled {
		notifiers = append(notifiers, notifier.NewSMTP(&cfg.Notify.Email))
		log.Infof("✓ Email notifications enabled (to: %s)", cfg.Notify.Email.To)
	}

	if cfg.Notify.Telegram.Enabled {
		tg, err := notifier.NewTelegram(&cfg.Notify.Telegram)
		if err != nil {
			log.Errorf("Failed to initialize Telegram notifier: %v", err)
		} else {
			notifiers = append(notifiers, tg)
			log.Infof("✓ Telegram notifications enabled")
		}
	}

	return notifiers
}

// Run blocks on the scheduler loop until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.metricsSrv != nil {
		go func() {
			a.logger.Infof("Metrics server listening on %s", a.metricsSrv.Addr)
			if err := a.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logger.Errorf("Metrics server error: %v", err)
			}
		}()
	}

	return a.scheduler.Run(ctx)
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down...")

	if a.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.logger.Errorf("Failed to stop metrics server: %v", err)
		}
	}

	a.logger.Close()
}
