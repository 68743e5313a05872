package jobs

import (
	"context"
	"fmt"

	"github.com/hangarworks/fleetsync/internal/retention"
	"github.com/hangarworks/fleetsync/internal/rumors"
	"github.com/hangarworks/fleetsync/pkg/vehicles"
)

// CleanupRunner is the retention manager surface the service invokes.
type CleanupRunner interface {
	Run(ctx context.Context) *retention.Result
}

// RumorRunner is the rumor pipeline surface the service invokes.
type RumorRunner interface {
	Run(ctx context.Context) (*rumors.Counts, error)
}

// Service exposes every job behind the runner's lock and ledger
// bookkeeping. It is the single invocation surface shared by the HTTP
// handlers and the CLI.
type Service struct {
	runner  *Runner
	syncer  *Syncer
	cache   *CacheRefresher
	cleanup CleanupRunner
	rumors  RumorRunner
}

// NewService creates the job service.
func NewService(runner *Runner, syncer *Syncer, cache *CacheRefresher, cleanup CleanupRunner, rumorPipeline RumorRunner) *Service {
	return &Service{
		runner:  runner,
		syncer:  syncer,
		cache:   cache,
		cleanup: cleanup,
		rumors:  rumorPipeline,
	}
}

// RunSync runs the vehicle reconciliation job.
func (s *Service) RunSync(ctx context.Context) (*Result, error) {
	return s.runner.Run(ctx, JobSync, s.syncer.Run)
}

// RunCacheRefresh rebuilds one provider's catalog snapshot.
func (s *Service) RunCacheRefresh(ctx context.Context, provider vehicles.ProviderID) (*Result, error) {
	return s.runner.Run(ctx, JobCache, func(ctx context.Context) (*Result, error) {
		return s.cache.Run(ctx, provider)
	})
}

// RunCleanup runs the retention job. Sub-step failures are isolated inside
// the manager; the job as a whole fails when any step failed.
func (s *Service) RunCleanup(ctx context.Context) (*Result, error) {
	return s.runner.Run(ctx, JobCleanup, func(ctx context.Context) (*Result, error) {
		res := s.cleanup.Run(ctx)
		result := &Result{
			ItemCount: int(res.Total()),
			Detail: map[string]any{
				"cleaned":      res.Total(),
				"raw_payloads": res.RawPayloads,
				"locks":        res.Locks,
				"snapshots":    res.Snapshots,
				"stuck_jobs":   res.StuckJobs,
				"ledger_rows":  res.ProgressRows,
				"articles":     res.Articles,
				"kept":         res.ArticlesKept,
			},
		}
		if res.FailedSteps > 0 {
			return result, fmt.Errorf("%d cleanup steps failed", res.FailedSteps)
		}
		return result, nil
	})
}

// RunRumors runs the rumor mining job.
func (s *Service) RunRumors(ctx context.Context) (*Result, error) {
	return s.runner.Run(ctx, JobRumors, func(ctx context.Context) (*Result, error) {
		counts, err := s.rumors.Run(ctx)
		if err != nil {
			return nil, err
		}
		return &Result{
			ItemCount: counts.Items(),
			Detail: map[string]any{
				"collected": counts.Collected,
				"filtered":  counts.Filtered,
				"inserted":  counts.Inserted,
				"updated":   counts.Updated,
				"errors":    counts.Errors,
			},
		}, nil
	})
}
