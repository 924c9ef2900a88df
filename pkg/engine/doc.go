/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package engine wires the pass phases together: it loads contributions
// from a profile, resolves and validates the configuration, builds the
// ordered plan, and executes it against the host. Phase durations and pass
// outcomes are exported as prometheus metrics.
package engine
