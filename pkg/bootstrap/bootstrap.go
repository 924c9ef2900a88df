/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package bootstrap

import (
	"context"
	"log/slog"

	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/state"
)

// Completion is the answer of an external completion probe.
type Completion string

const (
	// CompletionNotPresent means the external state shows no prior
	// completion; the effect must run.
	CompletionNotPresent Completion = "not-present"

	// CompletionPresent means an out-of-band mechanism already completed
	// the work (e.g. the schema already holds version data); the action is
	// marked complete without running the effect.
	CompletionPresent Completion = "present"
)

// Probe inspects externally observable state to decide whether a bootstrap
// action already completed. Probes must look at actual stored state, not a
// local flag, because the store may have been initialized by another
// process or a previous incarnation of this one.
type Probe func(ctx context.Context) (Completion, error)

// Effect performs the one-time work. A failed effect leaves no completion
// marker so a later pass retries.
type Effect func(ctx context.Context) error

// Outcome describes what RunOnce did.
type Outcome string

const (
	// OutcomeSkipped means the durable marker showed prior completion.
	OutcomeSkipped Outcome = "skipped"

	// OutcomeAdopted means the probe found out-of-band completion; the
	// marker was written without running the effect.
	OutcomeAdopted Outcome = "adopted"

	// OutcomeExecuted means the effect ran and completion was marked.
	OutcomeExecuted Outcome = "executed"
)

// Executor runs one-time bootstrap actions guarded by durable markers and
// external completion probes.
type Executor struct {
	store  *state.Store
	passID string
}

// New creates an Executor backed by the given state store. passID tags
// markers with the provisioning pass that wrote them.
func New(store *state.Store, passID string) *Executor {
	return &Executor{store: store, passID: passID}
}

// RunOnce executes a one-time bootstrap action at most once across passes.
//
// If the durable marker for actionID exists the call is a no-op. Otherwise
// the probe runs: if it reports prior out-of-band completion the marker is
// written without running the effect. Otherwise the effect runs and, only
// on success, the marker is written. Effect failure leaves the state
// unmarked — completion is never partially recorded.
func (e *Executor) RunOnce(ctx context.Context, actionID string, probe Probe, effect Effect) (Outcome, error) {
	if e.store.BootstrapDone(actionID) {
		slog.Debug("bootstrap action already complete", "action", actionID)
		return OutcomeSkipped, nil
	}

	if probe != nil {
		status, err := probe(ctx)
		if err != nil {
			return "", errors.WrapWithContext(errors.ErrCodeExecution,
				"bootstrap completion probe failed", err,
				map[string]any{"action": actionID})
		}
		if status == CompletionPresent {
			if err := e.store.MarkBootstrap(actionID, e.passID, true); err != nil {
				return "", err
			}
			slog.Info("bootstrap action adopted from external state", "action", actionID)
			return OutcomeAdopted, nil
		}
	}

	if err := effect(ctx); err != nil {
		return "", errors.WrapWithContext(errors.ErrCodeExecution,
			"bootstrap effect failed", err,
			map[string]any{"action": actionID})
	}

	if err := e.store.MarkBootstrap(actionID, e.passID, false); err != nil {
		// The effect ran but the marker did not persist; the next pass
		// will consult the probe again before re-running the effect.
		return "", err
	}

	slog.Info("bootstrap action completed", "action", actionID)
	return OutcomeExecuted, nil
}
