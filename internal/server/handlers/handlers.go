// Package handlers implements the HTTP handlers for the FleetSync API. Each
// handler consumes a narrow interface so tests can run against fakes.
package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/hangarworks/fleetsync/internal/jobs"
	"github.com/hangarworks/fleetsync/internal/store"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// JobService invokes jobs behind locking and ledger bookkeeping.
type JobService interface {
	RunSync(ctx context.Context) (*jobs.Result, error)
	RunCacheRefresh(ctx context.Context, provider vehicles.ProviderID) (*jobs.Result, error)
	RunCleanup(ctx context.Context) (*jobs.Result, error)
	RunRumors(ctx context.Context) (*jobs.Result, error)
}

// Query is the read surface for the presentation layer.
type Query interface {
	ListVehicles(ctx context.Context) ([]*vehicles.Vehicle, error)
	GetVehicle(ctx context.Context, slug string) (*vehicles.Vehicle, error)
	ListRumors(ctx context.Context, activeOnly bool) ([]*vehicles.Rumor, error)
	ListProgress(ctx context.Context, limit int) ([]store.ProgressEntry, error)
	Ping(ctx context.Context) error
}

// Admin is the mutation surface for manual interventions.
type Admin interface {
	UpsertPreference(ctx context.Context, p *vehicles.SourcePreference) error
	DeleteSnapshot(ctx context.Context, provider vehicles.ProviderID) error
	AppendAudit(ctx context.Context, job, action string, detail map[string]any) error
}

// Prober answers diagnostic lookups for one vehicle.
type Prober interface {
	Probe(ctx context.Context, key string) (*jobs.ProbeReport, error)
}

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	jobs   JobService
	query  Query
	admin  Admin
	prober Prober
	logger *zerolog.Logger
}

// New creates the handlers.
func New(jobService JobService, query Query, admin Admin, prober Prober, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		jobs:   jobService,
		query:  query,
		admin:  admin,
		prober: prober,
		logger: logger,
	}
}
