/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/hostplan/hostplan/pkg/assertion"
	"github.com/hostplan/hostplan/pkg/bootstrap"
	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/defaults"
	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/executor"
	"github.com/hostplan/hostplan/pkg/overrides"
	"github.com/hostplan/hostplan/pkg/planner"
	"github.com/hostplan/hostplan/pkg/profile"
	"github.com/hostplan/hostplan/pkg/registry"
	"github.com/hostplan/hostplan/pkg/resolver"
	"github.com/hostplan/hostplan/pkg/state"
)

// DefaultStatePath is where pass state lands unless overridden.
const DefaultStatePath = "/var/lib/hostplan/state.yaml"

// Engine drives a provisioning pass through its phases: collect
// contributions, resolve the configuration, validate assertions, build the
// plan, and execute it. A pass is single-threaded up to execution; only
// independent plan branches run concurrently.
type Engine struct {
	profile       *profile.Profile
	flags         contribution.Flags
	overridePairs []string
	statePath     string
	services      executor.ServiceManager
	templates     []planner.Template
	assertions    []assertion.Assertion
	execOpts      []executor.Option
}

// Option is a functional option for configuring Engine instances.
type Option func(*Engine)

// WithFlags sets the activation flags for the pass.
func WithFlags(flags contribution.Flags) Option {
	return func(e *Engine) {
		e.flags = flags
	}
}

// WithOverrides adds "slot=value" pairs applied as forced contributions.
func WithOverrides(pairs []string) Option {
	return func(e *Engine) {
		e.overridePairs = pairs
	}
}

// WithStatePath sets the pass state file location.
func WithStatePath(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.statePath = path
		}
	}
}

// WithServiceManager injects the service manager, primarily for tests. When
// unset, Apply connects to systemd over D-Bus.
func WithServiceManager(sm executor.ServiceManager) Option {
	return func(e *Engine) {
		e.services = sm
	}
}

// WithTemplates adds programmatic action templates, e.g. bootstrap actions
// whose probes and effects are Go functions.
func WithTemplates(templates ...planner.Template) Option {
	return func(e *Engine) {
		e.templates = append(e.templates, templates...)
	}
}

// WithAssertions adds programmatic assertions on top of the profile's
// assert blocks.
func WithAssertions(assertions ...assertion.Assertion) Option {
	return func(e *Engine) {
		e.assertions = append(e.assertions, assertions...)
	}
}

// WithExecutorOptions forwards options to the plan executor.
func WithExecutorOptions(opts ...executor.Option) Option {
	return func(e *Engine) {
		e.execOpts = append(e.execOpts, opts...)
	}
}

// New creates an Engine over a loaded profile.
func New(p *profile.Profile, opts ...Option) *Engine {
	e := &Engine{
		profile:   p,
		statePath: DefaultStatePath,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve runs the collection and resolution phases and returns the
// resolved configuration. The registry is frozen before any contribution is
// collected, so late declarations fail loudly.
func (e *Engine) Resolve(ctx context.Context) (*resolver.ResolvedConfig, *registry.Registry, error) {
	reg := registry.New()
	if err := e.profile.Register(reg); err != nil {
		return nil, nil, err
	}
	reg.Freeze()

	col := contribution.NewCollector(reg)
	collectStart := time.Now()
	if err := e.profile.Contribute(col, e.flags); err != nil {
		return nil, nil, err
	}
	if err := overrides.Apply(col, reg, e.overridePairs); err != nil {
		return nil, nil, err
	}
	phaseDuration.WithLabelValues("collect").Observe(time.Since(collectStart).Seconds())

	resolveStart := time.Now()
	cfg, err := resolver.Resolve(ctx, reg, col, e.flags)
	phaseDuration.WithLabelValues("resolve").Observe(time.Since(resolveStart).Seconds())
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeConflict) {
			resolutionConflictsTotal.Inc()
		}
		return nil, nil, err
	}

	slog.Debug("configuration resolved", "slots", reg.Len(), "contributions", col.Len())
	return cfg, reg, nil
}

// Validate resolves the configuration and checks every assertion against
// it. All violations are reported together.
func (e *Engine) Validate(ctx context.Context) (*assertion.Result, error) {
	cfg, _, err := e.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return e.validate(ctx, cfg)
}

func (e *Engine) validate(ctx context.Context, cfg *resolver.ResolvedConfig) (*assertion.Result, error) {
	start := time.Now()
	result, err := assertion.Validate(ctx, cfg, append(e.profile.Assertions(), e.assertions...))
	phaseDuration.WithLabelValues("validate").Observe(time.Since(start).Seconds())
	if err != nil {
		validationFailuresTotal.Inc()
	}
	return result, err
}

// Plan resolves, validates, and builds the ordered plan without executing
// anything.
func (e *Engine) Plan(ctx context.Context) (*planner.Plan, error) {
	cfg, _, err := e.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := e.validate(ctx, cfg); err != nil {
		return nil, err
	}
	return e.plan(cfg)
}

func (e *Engine) plan(cfg *resolver.ResolvedConfig) (*planner.Plan, error) {
	templates, err := e.profile.Templates()
	if err != nil {
		return nil, err
	}
	templates = append(templates, e.templates...)

	start := time.Now()
	plan, err := planner.Build(cfg, e.flags, templates)
	phaseDuration.WithLabelValues("plan").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	planActionCount.Set(float64(plan.Len()))
	return plan, nil
}

// Apply runs a complete provisioning pass. Any error before execution
// aborts with zero side effects; execution errors leave completed
// independent branches standing and are safe to retry with another pass.
func (e *Engine) Apply(ctx context.Context) (*executor.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.PassTimeout)
	defer cancel()

	start := time.Now()
	result, err := e.apply(ctx)

	passDuration.Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	passTotal.WithLabelValues(status).Inc()

	return result, err
}

func (e *Engine) apply(ctx context.Context) (*executor.Result, error) {
	cfg, _, err := e.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := e.validate(ctx, cfg); err != nil {
		return nil, err
	}
	plan, err := e.plan(cfg)
	if err != nil {
		return nil, err
	}

	store, err := state.Load(e.statePath)
	if err != nil {
		return nil, err
	}

	services := e.services
	if services == nil {
		sm, err := executor.NewSystemdManager(ctx)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeExecution, "cannot reach service manager", err)
		}
		defer sm.Close()
		services = sm
	}

	passID := plan.PassID()
	slog.Info("executing plan", "pass", passID, "actions", plan.Len())

	exec := executor.New(services, store, bootstrap.New(store, passID), e.execOpts...)

	execStart := time.Now()
	result, execErr := exec.Execute(ctx, plan)
	phaseDuration.WithLabelValues("execute").Observe(time.Since(execStart).Seconds())

	if result != nil {
		s := result.Summary
		actionTotal.WithLabelValues(string(executor.StatusCompleted)).Add(float64(s.Completed))
		actionTotal.WithLabelValues(string(executor.StatusUnchanged)).Add(float64(s.Unchanged))
		actionTotal.WithLabelValues(string(executor.StatusFailed)).Add(float64(s.Failed))
		actionTotal.WithLabelValues(string(executor.StatusSkipped)).Add(float64(s.Skipped))
	}
	return result, execErr
}
