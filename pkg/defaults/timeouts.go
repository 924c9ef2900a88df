/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package defaults

import "time"

// Execution timeouts for plan execution.
const (
	// PassTimeout is the default timeout for a complete provisioning pass.
	PassTimeout = 10 * time.Minute

	// ActionTimeout is the default timeout for a single plan action.
	// Actions should respect parent context deadlines when shorter.
	ActionTimeout = 2 * time.Minute

	// UnitJobTimeout is the timeout for a systemd unit start/stop/restart
	// job to reach a terminal state.
	UnitJobTimeout = 90 * time.Second
)

// Service restart throttling.
const (
	// ServiceOpInterval is the minimum interval between service operations,
	// guarding against restart storms when many artifacts change at once.
	ServiceOpInterval = 500 * time.Millisecond

	// ServiceOpBurst is the number of service operations allowed to proceed
	// immediately before the throttle kicks in.
	ServiceOpBurst = 3
)

// Executor concurrency.
const (
	// ExecutorWorkers is the default number of parallel workers executing
	// independent plan branches. One worker means fully sequential execution.
	ExecutorWorkers = 4
)

// Agent server timeouts.
const (
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second

	// AgentApplyInterval is the default period between convergence passes
	// in agent mode.
	AgentApplyInterval = 5 * time.Minute
)
