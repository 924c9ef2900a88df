/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package executor consumes ordered plans and performs the actual side
// effects: idempotent artifact writes, systemd unit operations over D-Bus,
// and one-time bootstrap actions.
//
// Execution respects the plan's partial order, runs independent branches
// in parallel up to a worker bound, skips the transitive dependents of a
// failed action, and never rolls back completed work. Service operations
// are throttled to guard against restart storms.
package executor
