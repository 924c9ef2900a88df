/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package assertion

import (
	"fmt"
	"time"

	"github.com/hostplan/hostplan/pkg/header"
)

const (
	// APIVersion is the schema version for validation result documents.
	APIVersion = "hostplan.dev/v1alpha1"
)

// Status is the outcome of evaluating one assertion, or of the whole batch.
type Status string

const (
	// StatusPassed indicates the invariant holds.
	StatusPassed Status = "passed"

	// StatusFailed indicates the invariant is violated or could not be
	// evaluated.
	StatusFailed Status = "failed"
)

// AssertionResult is the outcome for a single assertion.
type AssertionResult struct {
	// Name identifies the assertion.
	Name string `json:"name" yaml:"name"`

	// Status is passed or failed.
	Status Status `json:"status" yaml:"status"`

	// Message is the operator-facing invariant description.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Error holds the evaluation error, if the check itself failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary contains aggregate statistics for one validation batch.
type Summary struct {
	// Status is the overall outcome: failed if any assertion failed.
	Status Status `json:"status" yaml:"status"`

	// Passed is the count of assertions that held.
	Passed int `json:"passed" yaml:"passed"`

	// Failed is the count of assertions that were violated.
	Failed int `json:"failed" yaml:"failed"`

	// Total is the number of assertions evaluated.
	Total int `json:"total" yaml:"total"`

	// Duration is the wall time of the batch.
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Result is the complete validation outcome document.
type Result struct {
	header.Header `json:",inline" yaml:",inline"`

	// Summary contains aggregate statistics.
	Summary Summary `json:"summary" yaml:"summary"`

	// Results contains per-assertion details.
	Results []AssertionResult `json:"results" yaml:"results"`
}

// NewResult creates an initialized Result with a stamped header.
func NewResult() *Result {
	r := &Result{
		Results: make([]AssertionResult, 0),
	}
	r.Init(header.KindValidationResult, APIVersion, "")
	return r
}

// FailedMessages returns the messages of all failed assertions, so every
// violation surfaces together.
func (r *Result) FailedMessages() []string {
	out := make([]string, 0, r.Summary.Failed)
	for _, ar := range r.Results {
		if ar.Status != StatusFailed {
			continue
		}
		msg := ar.Message
		if msg == "" {
			msg = ar.Name
		}
		if ar.Error != "" {
			msg = fmt.Sprintf("%s (evaluation error: %s)", msg, ar.Error)
		}
		out = append(out, msg)
	}
	return out
}
