package retention

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hangarworks/fleetsync/internal/store"
	"github.com/hangarworks/fleetsync/pkg/errors"
)

type fakePruner struct {
	rawPayloads  int64
	locks        int64
	snapshots    int64
	stuck        int64
	progress     int64
	articles     int64
	articlesKept int64

	failing map[string]error

	rawWindow      time.Duration
	stuckTimeout   time.Duration
	progressWindow time.Duration
	articlePolicy  store.ArticleRetention
}

func (f *fakePruner) step(name string, count int64) (int64, error) {
	if err := f.failing[name]; err != nil {
		return 0, err
	}
	return count, nil
}

func (f *fakePruner) PruneRawPayloads(_ context.Context, window time.Duration) (int64, error) {
	f.rawWindow = window
	return f.step("raw_payloads", f.rawPayloads)
}

func (f *fakePruner) SweepExpiredLocks(context.Context) (int64, error) {
	return f.step("expired_locks", f.locks)
}

func (f *fakePruner) PruneExpiredSnapshots(context.Context) (int64, error) {
	return f.step("expired_snapshots", f.snapshots)
}

func (f *fakePruner) CancelStuckProgress(_ context.Context, timeout time.Duration) (int64, error) {
	f.stuckTimeout = timeout
	return f.step("stuck_jobs", f.stuck)
}

func (f *fakePruner) PruneProgress(_ context.Context, retention time.Duration) (int64, error) {
	f.progressWindow = retention
	return f.step("progress_history", f.progress)
}

func (f *fakePruner) PruneArticles(_ context.Context, policy store.ArticleRetention) (int64, int64, error) {
	f.articlePolicy = policy
	pruned, err := f.step("articles", f.articles)
	if err != nil {
		return 0, 0, err
	}
	return pruned, f.articlesKept, nil
}

func TestManagerRunCountsAllSteps(t *testing.T) {
	pruner := &fakePruner{rawPayloads: 3, locks: 1, snapshots: 2, stuck: 1, progress: 40, articles: 12, articlesKept: 5}
	manager := New(pruner, DefaultConfig())

	result := manager.Run(context.Background())

	assert.Equal(t, int64(59), result.Total())
	assert.Equal(t, 0, result.FailedSteps)
	assert.Equal(t, int64(3), result.RawPayloads)
	assert.Equal(t, int64(40), result.ProgressRows)
	assert.Equal(t, int64(12), result.Articles)
	// Retained rows are reported but never counted as cleaned.
	assert.Equal(t, int64(5), result.ArticlesKept)
}

func TestManagerRunPassesConfiguredWindows(t *testing.T) {
	pruner := &fakePruner{}
	config := Config{
		RawPayloadWindow: 10 * 24 * time.Hour,
		ProgressWindow:   48 * time.Hour,
		StuckTimeout:     30 * time.Minute,
		Articles: store.ArticleRetention{
			MaxAge:    time.Hour,
			KeepCount: 5,
		},
	}

	New(pruner, config).Run(context.Background())

	assert.Equal(t, config.RawPayloadWindow, pruner.rawWindow)
	assert.Equal(t, config.ProgressWindow, pruner.progressWindow)
	assert.Equal(t, config.StuckTimeout, pruner.stuckTimeout)
	assert.Equal(t, config.Articles, pruner.articlePolicy)
}

func TestManagerRunIsolatesFailingStep(t *testing.T) {
	pruner := &fakePruner{
		rawPayloads: 3,
		progress:    7,
		failing:     map[string]error{"expired_locks": errors.New("lock table unavailable")},
	}

	result := New(pruner, DefaultConfig()).Run(context.Background())

	assert.Equal(t, 1, result.FailedSteps)
	assert.Equal(t, int64(0), result.Locks)
	// Steps after the failure still ran.
	assert.Equal(t, int64(7), result.ProgressRows)
	assert.Equal(t, int64(10), result.Total())
}
