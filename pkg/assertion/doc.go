/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package assertion implements the assertion validator: a batch pass over
// declared invariants spanning the fully resolved configuration.
//
// Failures are aggregated so every violated invariant is reported in one
// run; any failure aborts the pass before the first side effect.
package assertion
