/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hostplan/hostplan/pkg/bootstrap"
	"github.com/hostplan/hostplan/pkg/defaults"
	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/planner"
	"github.com/hostplan/hostplan/pkg/state"
)

// Executor consumes an ordered plan and performs the actual filesystem
// writes and service operations. Independent branches may run in parallel;
// the declared partial order is always respected. Nothing is rolled back:
// the system is designed to be safely re-run, not transactionally
// reversible.
type Executor struct {
	services  ServiceManager
	store     *state.Store
	bootstrap *bootstrap.Executor
	workers   int
	limiter   *rate.Limiter
	dryRun    bool
}

// Option is a functional option for configuring Executor instances.
type Option func(*Executor)

// WithWorkers bounds the number of actions executing concurrently. One
// worker means fully sequential execution.
func WithWorkers(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithDryRun makes the executor report what it would do without writing
// artifacts, touching services, or recording state.
func WithDryRun(dry bool) Option {
	return func(e *Executor) {
		e.dryRun = dry
	}
}

// WithServiceRateLimit overrides the service-operation throttle.
func WithServiceRateLimit(l *rate.Limiter) Option {
	return func(e *Executor) {
		e.limiter = l
	}
}

// New creates an Executor. services drives unit operations, store persists
// artifact hashes, and boot runs one-time bootstrap actions.
func New(services ServiceManager, store *state.Store, boot *bootstrap.Executor, opts ...Option) *Executor {
	e := &Executor{
		services:  services,
		store:     store,
		bootstrap: boot,
		workers:   defaults.ExecutorWorkers,
		limiter:   rate.NewLimiter(rate.Every(defaults.ServiceOpInterval), defaults.ServiceOpBurst),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the plan. Actions run in waves: each wave contains every
// action whose predecessors all finished successfully, and waves run their
// members in parallel up to the worker bound. An action failure marks all
// transitive dependents skipped; completed independent branches stand.
//
// The returned Result always describes every action. The error is non-nil
// when any action failed and carries the first failure's action ID and
// cause.
func (e *Executor) Execute(ctx context.Context, plan *planner.Plan) (*Result, error) {
	start := time.Now()
	result := NewResult()

	run := &passRun{
		executor: e,
		statuses: make(map[string]Status, plan.Len()),
		changed:  make(map[string]bool),
	}

	pending := append([]*planner.Action(nil), plan.Actions...)
	for len(pending) > 0 {
		wave, rest, skipped := nextWave(pending, run)
		for _, a := range skipped {
			run.setStatus(a.ID, StatusSkipped)
			result.record(ActionResult{ID: a.ID, Kind: a.Kind, Status: StatusSkipped})
		}
		if len(wave) == 0 {
			pending = rest
			continue
		}

		g := new(errgroup.Group)
		g.SetLimit(e.workers)
		for _, a := range wave {
			g.Go(func() error {
				ar := run.executeAction(ctx, a)
				run.setStatus(a.ID, ar.Status)
				result.record(ar)
				return nil
			})
		}
		_ = g.Wait()
		pending = rest
	}

	result.finish(time.Since(start), run.changedArtifacts())

	if result.Summary.Failed > 0 {
		first := result.firstFailure()
		return result, errors.NewWithContext(errors.ErrCodeExecution,
			"plan execution failed",
			map[string]any{"action": first.ID, "cause": first.Error})
	}
	return result, nil
}

// nextWave splits pending actions into the runnable wave, the remainder,
// and actions to skip because a predecessor failed or was skipped.
func nextWave(pending []*planner.Action, run *passRun) (wave, rest, skipped []*planner.Action) {
	for _, a := range pending {
		ready := true
		doomed := false
		for _, dep := range a.DependsOn {
			switch run.status(dep) {
			case StatusCompleted, StatusUnchanged:
			case StatusFailed, StatusSkipped:
				doomed = true
			default:
				ready = false
			}
		}
		switch {
		case doomed:
			skipped = append(skipped, a)
		case ready:
			wave = append(wave, a)
		default:
			rest = append(rest, a)
		}
	}
	return wave, rest, skipped
}

// passRun carries the mutable per-pass execution state.
type passRun struct {
	executor *Executor

	mu       sync.Mutex
	statuses map[string]Status
	changed  map[string]bool
}

func (r *passRun) status(id string) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[id]
}

func (r *passRun) setStatus(id string, s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = s
}

func (r *passRun) markChanged(artifactName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed[artifactName] = true
}

func (r *passRun) anyChanged(names []string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		if r.changed[n] {
			return true
		}
	}
	return false
}

func (r *passRun) changedArtifacts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.changed))
	for n := range r.changed {
		out = append(out, n)
	}
	return out
}

func (r *passRun) executeAction(ctx context.Context, a *planner.Action) ActionResult {
	start := time.Now()
	ar := ActionResult{ID: a.ID, Kind: a.Kind}

	actionCtx, cancel := context.WithTimeout(ctx, defaults.ActionTimeout)
	defer cancel()

	var err error
	switch a.Kind {
	case planner.KindWriteArtifact:
		ar.Status, err = r.writeArtifact(a)
	case planner.KindRestartService:
		ar.Status, err = r.restartService(actionCtx, a)
	case planner.KindStartService:
		ar.Status, err = r.serviceOp(actionCtx, a, r.executor.services.StartUnit)
	case planner.KindStopService:
		ar.Status, err = r.serviceOp(actionCtx, a, r.executor.services.StopUnit)
	case planner.KindBootstrap:
		ar.Status, err = r.runBootstrap(actionCtx, a)
	default:
		err = errors.Newf(errors.ErrCodeInternal, "unknown action kind %q", a.Kind)
	}

	if err != nil {
		ar.Status = StatusFailed
		ar.Error = err.Error()
		slog.Error("action failed", "action", a.ID, "kind", a.Kind, "error", err)
	}
	ar.Duration = time.Since(start)
	return ar
}

// writeArtifact materializes the artifact idempotently: unchanged content
// is a no-op, changed content is written atomically and recorded so
// restart triggers fire.
func (r *passRun) writeArtifact(a *planner.Action) (Status, error) {
	art := a.Artifact
	desired := art.Hash()

	current, err := os.ReadFile(art.Path)
	if err == nil && art.Hash() == hashBytes(current) {
		// Content already on disk; refresh stale state if needed.
		if recorded, ok := r.executor.store.ArtifactHash(art.Name); !ok || recorded != desired {
			if !r.executor.dryRun {
				if err := r.executor.store.RecordArtifact(art.Name, art.Path, desired); err != nil {
					return "", err
				}
			}
		}
		return StatusUnchanged, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return "", errors.WrapWithContext(errors.ErrCodeExecution,
			"failed to read existing artifact", err, map[string]any{"path": art.Path})
	}

	if r.executor.dryRun {
		r.markChanged(art.Name)
		slog.Info("would write artifact", "artifact", art.Name, "path", art.Path)
		return StatusCompleted, nil
	}

	if err := writeFileAtomic(art.Path, art.Content, art.FileMode()); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeExecution,
			"failed to write artifact", err, map[string]any{"path": art.Path})
	}
	if err := r.executor.store.RecordArtifact(art.Name, art.Path, desired); err != nil {
		return "", err
	}

	r.markChanged(art.Name)
	slog.Info("artifact written", "artifact", art.Name, "path", art.Path)
	return StatusCompleted, nil
}

// restartService restarts the unit only when a watched artifact changed
// content this pass; otherwise it is a no-op.
func (r *passRun) restartService(ctx context.Context, a *planner.Action) (Status, error) {
	if len(a.RestartOn) > 0 && !r.anyChanged(a.RestartOn) {
		slog.Debug("restart not triggered", "action", a.ID, "unit", a.Unit)
		return StatusUnchanged, nil
	}
	return r.serviceOp(ctx, a, r.executor.services.RestartUnit)
}

func (r *passRun) serviceOp(ctx context.Context, a *planner.Action, op func(context.Context, string) error) (Status, error) {
	if r.executor.dryRun {
		slog.Info("would run service operation", "action", a.ID, "unit", a.Unit)
		return StatusCompleted, nil
	}
	if err := r.executor.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(errors.ErrCodeExecution, "service throttle interrupted", err)
	}
	if err := op(ctx, a.Unit); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeExecution,
			"service operation failed", err, map[string]any{"unit": a.Unit})
	}
	slog.Info("service operation complete", "action", a.ID, "unit", a.Unit)
	return StatusCompleted, nil
}

func (r *passRun) runBootstrap(ctx context.Context, a *planner.Action) (Status, error) {
	if r.executor.dryRun {
		if r.executor.store.BootstrapDone(a.ID) {
			return StatusUnchanged, nil
		}
		slog.Info("would run bootstrap action", "action", a.ID)
		return StatusCompleted, nil
	}
	outcome, err := r.executor.bootstrap.RunOnce(ctx, a.ID, a.Probe, a.Effect)
	if err != nil {
		return "", err
	}
	if outcome == bootstrap.OutcomeExecuted {
		return StatusCompleted, nil
	}
	return StatusUnchanged, nil
}

func writeFileAtomic(path string, content []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
