/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/hostplan/hostplan/pkg/header"
	"github.com/hostplan/hostplan/pkg/planner"
)

const (
	// APIVersion is the schema version for execution result documents.
	APIVersion = "hostplan.dev/v1alpha1"
)

// Status is the terminal state of one executed action.
type Status string

const (
	// StatusCompleted means the action performed its effect.
	StatusCompleted Status = "completed"

	// StatusUnchanged means the action was a no-op: artifact content was
	// already current, a restart was not triggered, or a bootstrap action
	// was already complete.
	StatusUnchanged Status = "unchanged"

	// StatusFailed means the action's effect failed.
	StatusFailed Status = "failed"

	// StatusSkipped means the action was not attempted because a
	// predecessor failed or was skipped.
	StatusSkipped Status = "skipped"
)

// ActionResult is the per-action execution outcome.
type ActionResult struct {
	// ID identifies the action.
	ID string `json:"id" yaml:"id"`

	// Kind classifies the action.
	Kind planner.Kind `json:"kind" yaml:"kind"`

	// Status is the terminal state.
	Status Status `json:"status" yaml:"status"`

	// Error holds the failure cause for failed actions.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Duration is the action's wall time.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// Summary aggregates a pass's execution outcomes.
type Summary struct {
	Completed int           `json:"completed" yaml:"completed"`
	Unchanged int           `json:"unchanged" yaml:"unchanged"`
	Failed    int           `json:"failed" yaml:"failed"`
	Skipped   int           `json:"skipped" yaml:"skipped"`
	Total     int           `json:"total" yaml:"total"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Result is the complete execution outcome document for one pass.
type Result struct {
	header.Header `json:",inline" yaml:",inline"`

	// Summary aggregates per-status counts.
	Summary Summary `json:"summary" yaml:"summary"`

	// Results holds per-action outcomes in completion order.
	Results []ActionResult `json:"results" yaml:"results"`

	// ChangedArtifacts names artifacts whose content changed this pass.
	ChangedArtifacts []string `json:"changedArtifacts,omitempty" yaml:"changedArtifacts,omitempty"`

	mu sync.Mutex
}

// NewResult creates an initialized Result with a stamped header.
func NewResult() *Result {
	r := &Result{
		Results: make([]ActionResult, 0),
	}
	r.Init(header.KindExecutionResult, APIVersion, "")
	return r
}

func (r *Result) record(ar ActionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Results = append(r.Results, ar)
	switch ar.Status {
	case StatusCompleted:
		r.Summary.Completed++
	case StatusUnchanged:
		r.Summary.Unchanged++
	case StatusFailed:
		r.Summary.Failed++
	case StatusSkipped:
		r.Summary.Skipped++
	}
	r.Summary.Total++
}

func (r *Result) finish(d time.Duration, changed []string) {
	sort.Strings(changed)
	r.Summary.Duration = d
	r.ChangedArtifacts = changed
}

// firstFailure returns the first failed action result.
func (r *Result) firstFailure() *ActionResult {
	for i := range r.Results {
		if r.Results[i].Status == StatusFailed {
			return &r.Results[i]
		}
	}
	return nil
}

// StatusOf returns the terminal status recorded for an action ID.
func (r *Result) StatusOf(id string) (Status, bool) {
	for _, ar := range r.Results {
		if ar.ID == id {
			return ar.Status, true
		}
	}
	return "", false
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
