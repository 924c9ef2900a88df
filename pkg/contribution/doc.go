/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package contribution implements the contribution collector: the gathering
// of proposed slot values from many independent declaration sites, each
// tagged with a priority and an activation condition.
//
// The collector type-checks proposals against the registry at collection
// time (fail fast) and retains them for a single resolution pass. It never
// resolves conflicts itself; resolution is order-independent by design.
package contribution
