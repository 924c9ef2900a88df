/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package errors provides structured error types for better observability
// and programmatic error handling across the engine.
//
// Every phase of a provisioning pass classifies its failures with an
// ErrorCode so callers can distinguish declaration-time problems
// (DUPLICATE_SLOT, TYPE_MISMATCH) from resolution-time problems
// (CONFLICT, DUPLICATE_KEY) and execution failures.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeConflict,
//	    "conflicting values for slot",
//	    cause,
//	    map[string]any{
//	        "slot":    "database.host",
//	        "sources": []string{"profiles/db.hcl", "profiles/site.hcl"},
//	    },
//	)
package errors
