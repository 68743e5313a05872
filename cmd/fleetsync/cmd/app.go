package cmd

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/hangarworks/fleetsync/internal/config"
	"github.com/hangarworks/fleetsync/internal/jobs"
	"github.com/hangarworks/fleetsync/internal/retention"
	"github.com/hangarworks/fleetsync/internal/rumors"
	"github.com/hangarworks/fleetsync/internal/sources"
	"github.com/hangarworks/fleetsync/internal/sources/gamedata"
	"github.com/hangarworks/fleetsync/internal/sources/shipyard"
	"github.com/hangarworks/fleetsync/internal/store"
	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/logging"
	"github.com/hangarworks/fleetsync/pkg/reconcile"
)

// app wires the whole service graph: config, store, adapters, engine,
// jobs. Commands build one app, run, and close it.
type app struct {
	cfg     *config.Config
	store   *store.Store
	service *jobs.Service
	prober  *jobs.Prober
	logger  *zerolog.Logger
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := setupLogging(cfg)

	if cfg.DatabaseDSN == "" {
		return nil, errors.NewValidationError("database_dsn", "must be configured")
	}

	st, err := store.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, err
	}

	precedence := reconcile.DefaultPrecedence()
	if cfg.PrecedencePath != "" {
		precedence, err = reconcile.LoadPrecedence(cfg.PrecedencePath)
		if err != nil {
			st.Close()
			return nil, err
		}
	}
	engine := reconcile.New(reconcile.WithPrecedence(precedence))

	shipyardClient := shipyard.New(cfg.ShipyardBaseURL,
		shipyard.WithSnapshots(st),
		shipyard.WithSnapshotTTL(cfg.CacheTTL),
		shipyard.WithPaging(cfg.PageSize, cfg.MaxPages),
	)
	gamedataClient := gamedata.New(cfg.GamedataBaseURL)
	adapters := []sources.Source{shipyardClient, gamedataClient}

	retentionConfig := retention.DefaultConfig()
	retentionConfig.RawPayloadWindow = cfg.RawPayloadWindow
	retentionConfig.ProgressWindow = cfg.LedgerWindow
	retentionConfig.StuckTimeout = cfg.StuckTimeout

	var feeds []rumors.Feed
	if cfg.DevReportsBaseURL != "" {
		feeds = append(feeds, rumors.NewDevReports(cfg.DevReportsBaseURL))
	}
	if cfg.RoadmapBaseURL != "" {
		feeds = append(feeds, rumors.NewRoadmap(cfg.RoadmapBaseURL))
	}
	if cfg.MinedNotesBaseURL != "" {
		feeds = append(feeds, rumors.NewMinedNotes(cfg.MinedNotesBaseURL))
	}

	runner := jobs.New(st, st, st, jobs.WithLockTTL(cfg.LockTTL))
	service := jobs.NewService(
		runner,
		jobs.NewSyncer(adapters, engine, st),
		jobs.NewCacheRefresher(shipyardClient),
		retention.New(st, retentionConfig),
		rumors.New(st, st, feeds...),
	)

	return &app{
		cfg:     cfg,
		store:   st,
		service: service,
		prober:  jobs.NewProber(adapters, st),
		logger:  logger,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}

func setupLogging(cfg *config.Config) *zerolog.Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		level = parsed
	}
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	if cfg.Quiet {
		level = zerolog.ErrorLevel
	}

	logger := logging.New(os.Stderr).Level(level)
	logging.SetDefault(logger)
	return logging.Default()
}
