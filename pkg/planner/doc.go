/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package planner implements the activation planner: a pure function from
// resolved configuration and action templates to a topologically ordered
// execution plan.
//
// Dependency edges come from explicit DependsOn declarations, condition
// gates that omit whole subsystems, and artifact-to-action restart
// triggers. The planner renders artifacts and validates the graph but
// never executes anything, so plans are testable without touching real
// state.
package planner
