/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package assertion

import (
	"context"
	"log/slog"
	"time"

	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/resolver"
)

// Assertion is a cross-cutting invariant over the fully resolved
// configuration, plus the message operators see when it fails.
type Assertion struct {
	// Name identifies the assertion in results and logs.
	Name string

	// Message explains the violated invariant.
	Message string

	// Check returns true when the invariant holds. An error means the
	// assertion could not be evaluated; it is reported as failed with the
	// evaluation error attached.
	Check func(cfg *resolver.ResolvedConfig) (bool, error)
}

// Validate evaluates every assertion against the resolved configuration.
// All failures are collected, not just the first, so operators see every
// problem in one pass. When any assertion fails the returned error carries
// code VALIDATION and the full list of violated messages; the result
// document is returned either way.
func Validate(ctx context.Context, cfg *resolver.ResolvedConfig, assertions []Assertion) (*Result, error) {
	start := time.Now()

	if cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "resolved config cannot be nil")
	}

	result := NewResult()

	for _, a := range assertions {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		ar := AssertionResult{Name: a.Name, Message: a.Message}
		ok, err := a.Check(cfg)
		switch {
		case err != nil:
			ar.Status = StatusFailed
			ar.Error = err.Error()
			result.Summary.Failed++
		case ok:
			ar.Status = StatusPassed
			result.Summary.Passed++
		default:
			ar.Status = StatusFailed
			result.Summary.Failed++
		}
		result.Results = append(result.Results, ar)
	}

	result.Summary.Total = len(assertions)
	result.Summary.Duration = time.Since(start)
	if result.Summary.Failed > 0 {
		result.Summary.Status = StatusFailed
	} else {
		result.Summary.Status = StatusPassed
	}

	slog.Debug("assertions evaluated",
		"total", result.Summary.Total,
		"failed", result.Summary.Failed,
		"duration", result.Summary.Duration)

	if result.Summary.Failed > 0 {
		return result, errors.NewWithContext(errors.ErrCodeValidation,
			"configuration assertions failed",
			map[string]any{"violations": result.FailedMessages()})
	}
	return result, nil
}
