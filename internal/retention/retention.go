// Package retention prunes aged data: raw provider payloads, expired locks
// and cache snapshots, stuck and stale job history, and old articles.
package retention

import (
	"context"
	"time"

	"github.com/hangarworks/fleetsync/internal/store"
	"github.com/hangarworks/fleetsync/pkg/logging"
)

// Defaults for the retention windows.
const (
	DefaultRawPayloadWindow = 30 * 24 * time.Hour
	DefaultProgressWindow   = 7 * 24 * time.Hour
	DefaultStuckTimeout     = time.Hour
	DefaultArticleWindow    = 90 * 24 * time.Hour
)

// Config carries every retention window so deployments can tune them.
type Config struct {
	RawPayloadWindow time.Duration
	ProgressWindow   time.Duration
	StuckTimeout     time.Duration
	Articles         store.ArticleRetention
}

// DefaultConfig returns the stock retention windows.
func DefaultConfig() Config {
	return Config{
		RawPayloadWindow: DefaultRawPayloadWindow,
		ProgressWindow:   DefaultProgressWindow,
		StuckTimeout:     DefaultStuckTimeout,
		Articles: store.ArticleRetention{
			MaxAge:     DefaultArticleWindow,
			Exempt:     []string{"lore"},
			KeepRecent: []string{"patch_notes"},
			KeepCount:  10,
		},
	}
}

// Pruner is the store surface the manager cleans through.
type Pruner interface {
	PruneRawPayloads(ctx context.Context, window time.Duration) (int64, error)
	SweepExpiredLocks(ctx context.Context) (int64, error)
	PruneExpiredSnapshots(ctx context.Context) (int64, error)
	CancelStuckProgress(ctx context.Context, timeout time.Duration) (int64, error)
	PruneProgress(ctx context.Context, retention time.Duration) (int64, error)
	PruneArticles(ctx context.Context, policy store.ArticleRetention) (pruned, kept int64, err error)
}

// Manager runs the cleanup steps. Each step is independent; one failing
// step is logged and the rest still run.
type Manager struct {
	pruner Pruner
	config Config
}

// New creates a retention manager.
func New(pruner Pruner, config Config) *Manager {
	return &Manager{pruner: pruner, config: config}
}

// Result summarizes one cleanup run for the job ledger.
type Result struct {
	RawPayloads  int64 `json:"raw_payloads"`
	Locks        int64 `json:"locks"`
	Snapshots    int64 `json:"snapshots"`
	StuckJobs    int64 `json:"stuck_jobs"`
	ProgressRows int64 `json:"progress_rows"`
	Articles     int64 `json:"articles"`
	ArticlesKept int64 `json:"articles_kept"`
	FailedSteps  int   `json:"failed_steps"`
}

// Total returns the affected-row count across all steps.
func (r Result) Total() int64 {
	return r.RawPayloads + r.Locks + r.Snapshots + r.StuckJobs + r.ProgressRows + r.Articles
}

// Run executes every cleanup step in order and reports per-step counts.
func (m *Manager) Run(ctx context.Context) *Result {
	logger := logging.FromContext(ctx)
	result := &Result{}

	steps := []struct {
		name string
		run  func(context.Context) (int64, error)
		out  *int64
	}{
		{"raw_payloads", func(ctx context.Context) (int64, error) {
			return m.pruner.PruneRawPayloads(ctx, m.config.RawPayloadWindow)
		}, &result.RawPayloads},
		{"expired_locks", m.pruner.SweepExpiredLocks, &result.Locks},
		{"expired_snapshots", m.pruner.PruneExpiredSnapshots, &result.Snapshots},
		{"stuck_jobs", func(ctx context.Context) (int64, error) {
			return m.pruner.CancelStuckProgress(ctx, m.config.StuckTimeout)
		}, &result.StuckJobs},
		{"progress_history", func(ctx context.Context) (int64, error) {
			return m.pruner.PruneProgress(ctx, m.config.ProgressWindow)
		}, &result.ProgressRows},
		{"articles", func(ctx context.Context) (int64, error) {
			pruned, kept, err := m.pruner.PruneArticles(ctx, m.config.Articles)
			result.ArticlesKept = kept
			return pruned, err
		}, &result.Articles},
	}

	for _, step := range steps {
		count, err := step.run(ctx)
		if err != nil {
			result.FailedSteps++
			logger.Error().Err(err).
				Str("step", step.name).
				Msg("Cleanup step failed; continuing with remaining steps")
			continue
		}
		*step.out = count
		if count > 0 {
			logger.Info().
				Str("step", step.name).
				Int64("affected", count).
				Msg("Cleanup step completed")
		}
	}

	logger.Info().
		Int64("total_affected", result.Total()).
		Int("failed_steps", result.FailedSteps).
		Msg("Cleanup run completed")
	return result
}
