// Package jobs orchestrates job invocations: lock acquisition, ledger
// bookkeeping, and audit trail around each run.
package jobs

import (
	"context"
	"time"

	"github.com/hangarworks/fleetsync/internal/store"
	"github.com/hangarworks/fleetsync/pkg/errors"
	"github.com/hangarworks/fleetsync/pkg/logging"
)

// DefaultLockTTL bounds how long a crashed run can block its successor.
const DefaultLockTTL = time.Hour

// Job names, which double as lock names.
const (
	JobSync    = "sync"
	JobCache   = "cache-refresh"
	JobCleanup = "cleanup"
	JobRumors  = "rumors"
)

// Locker is the mutual-exclusion surface jobs serialize through.
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name string) error
}

// Ledger records every invocation's start and terminal outcome.
type Ledger interface {
	StartProgress(ctx context.Context, job string) (int64, error)
	FinishProgress(ctx context.Context, id int64, status string, itemCount int, jobErr string) error
}

// Auditor appends to the durable audit trail.
type Auditor interface {
	AppendAudit(ctx context.Context, job, action string, detail map[string]any) error
}

// Result is what a job body reports back to the runner.
type Result struct {
	// ItemCount is the number of items the run processed or affected.
	ItemCount int

	// Detail is extra outcome data recorded in the audit trail.
	Detail map[string]any
}

// Body is one job's work. It runs only while the job's lock is held.
type Body func(ctx context.Context) (*Result, error)

// Runner wraps job bodies with locking, ledger entries, and auditing.
type Runner struct {
	locker  Locker
	ledger  Ledger
	auditor Auditor
	lockTTL time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLockTTL overrides the lock time-to-live.
func WithLockTTL(ttl time.Duration) Option {
	return func(r *Runner) {
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// New creates a job runner.
func New(locker Locker, ledger Ledger, auditor Auditor, opts ...Option) *Runner {
	r := &Runner{
		locker:  locker,
		ledger:  ledger,
		auditor: auditor,
		lockTTL: DefaultLockTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one job invocation. If the job's lock is already held it
// returns a LockError without touching the ledger. Otherwise it records a
// running ledger row, executes the body, and writes the terminal row on
// every path before releasing the lock.
func (r *Runner) Run(ctx context.Context, job string, body Body) (*Result, error) {
	ctx = logging.WithJob(ctx, job)
	logger := logging.FromContext(ctx)

	acquired, err := r.locker.AcquireLock(ctx, job, r.lockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		logger.Warn().Msg("Job is already running; refusing concurrent invocation")
		return nil, errors.NewLockError(job)
	}
	defer func() {
		if err := r.locker.ReleaseLock(ctx, job); err != nil {
			logger.Error().Err(err).Msg("Failed to release job lock; it will expire on its own")
		}
	}()

	progressID, err := r.ledger.StartProgress(ctx, job)
	if err != nil {
		return nil, err
	}

	logger.Info().Msg("Job started")
	started := time.Now()

	result, runErr := body(ctx)
	if result == nil {
		result = &Result{}
	}

	status := store.StatusSuccess
	errMsg := ""
	if runErr != nil {
		status = store.StatusFailed
		errMsg = runErr.Error()
	}

	// The terminal ledger row is the durable record of the run; a failure
	// writing it is logged but never masks the job's own outcome.
	if err := r.ledger.FinishProgress(ctx, progressID, status, result.ItemCount, errMsg); err != nil {
		logger.Error().Err(err).Msg("Failed to record job outcome in ledger")
	}
	r.audit(ctx, job, status, result)

	if runErr != nil {
		logger.Error().Err(runErr).
			Dur("duration", time.Since(started)).
			Msg("Job failed")
		return result, runErr
	}

	logger.Info().
		Dur("duration", time.Since(started)).
		Int("items", result.ItemCount).
		Msg("Job completed")
	return result, nil
}

func (r *Runner) audit(ctx context.Context, job, status string, result *Result) {
	if r.auditor == nil {
		return
	}
	detail := map[string]any{"status": status, "items": result.ItemCount}
	for k, v := range result.Detail {
		detail[k] = v
	}
	if err := r.auditor.AppendAudit(ctx, job, "run", detail); err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("Failed to append audit entry")
	}
}
