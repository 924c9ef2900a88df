/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostplan/hostplan/pkg/state"
)

func newExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.yaml")
	store, err := state.Load(path)
	require.NoError(t, err)
	return New(store, "pass-1"), path
}

func notPresent(context.Context) (Completion, error) { return CompletionNotPresent, nil }

func TestRunOnceExecutesExactlyOnce(t *testing.T) {
	e, _ := newExecutor(t)

	runs := 0
	effect := func(context.Context) error {
		runs++
		return nil
	}

	out, err := e.RunOnce(t.Context(), "generate-secret", notPresent, effect)
	require.NoError(t, err)
	assert.Equal(t, OutcomeExecuted, out)

	// Second run with the same inputs is a no-op.
	out, err = e.RunOnce(t.Context(), "generate-secret", notPresent, effect)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Equal(t, 1, runs)
}

func TestRunOnceSurvivesRestart(t *testing.T) {
	e, path := newExecutor(t)

	runs := 0
	effect := func(context.Context) error {
		runs++
		return nil
	}

	_, err := e.RunOnce(t.Context(), "generate-secret", notPresent, effect)
	require.NoError(t, err)

	// A new executor over the same state file (a later pass) still skips.
	store, err := state.Load(path)
	require.NoError(t, err)
	e2 := New(store, "pass-2")

	out, err := e2.RunOnce(t.Context(), "generate-secret", notPresent, effect)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Equal(t, 1, runs)
}

func TestRunOnceFailedEffectRetries(t *testing.T) {
	e, _ := newExecutor(t)

	runs := 0
	failing := func(context.Context) error {
		runs++
		return fmt.Errorf("disk full")
	}

	_, err := e.RunOnce(t.Context(), "init-schema", notPresent, failing)
	require.Error(t, err)
	assert.Equal(t, 1, runs)

	// Failure must not mark completion; a retry runs the effect again and
	// the successful effect executes exactly once.
	succeeded := 0
	ok := func(context.Context) error {
		succeeded++
		return nil
	}
	out, err := e.RunOnce(t.Context(), "init-schema", notPresent, ok)
	require.NoError(t, err)
	assert.Equal(t, OutcomeExecuted, out)
	assert.Equal(t, 1, succeeded)

	out, err = e.RunOnce(t.Context(), "init-schema", notPresent, ok)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.Equal(t, 1, succeeded)
}

func TestRunOnceAdoptsExternalCompletion(t *testing.T) {
	e, _ := newExecutor(t)

	present := func(context.Context) (Completion, error) { return CompletionPresent, nil }
	effect := func(context.Context) error {
		t.Fatal("effect must not run when the probe reports completion")
		return nil
	}

	out, err := e.RunOnce(t.Context(), "init-schema", present, effect)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAdopted, out)

	// The adoption is durable: the probe is not consulted again.
	probed := false
	out, err = e.RunOnce(t.Context(), "init-schema",
		func(context.Context) (Completion, error) {
			probed = true
			return CompletionNotPresent, nil
		},
		effect)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, out)
	assert.False(t, probed)
}

func TestRunOnceProbeError(t *testing.T) {
	e, _ := newExecutor(t)

	broken := func(context.Context) (Completion, error) {
		return "", fmt.Errorf("store unreachable")
	}
	ran := false
	effect := func(context.Context) error {
		ran = true
		return nil
	}

	_, err := e.RunOnce(t.Context(), "init-schema", broken, effect)
	require.Error(t, err)
	assert.False(t, ran, "effect must not run when the probe fails")
}

func TestRunOnceNilProbe(t *testing.T) {
	e, _ := newExecutor(t)

	runs := 0
	effect := func(context.Context) error {
		runs++
		return nil
	}

	out, err := e.RunOnce(t.Context(), "generate-secret", nil, effect)
	require.NoError(t, err)
	assert.Equal(t, OutcomeExecuted, out)
	assert.Equal(t, 1, runs)
}
