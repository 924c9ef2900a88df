/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package profile loads HCL profile files, the declaration sites of the
// composition engine. A profile declares option slots, proposes values for
// them, states invariants over the resolved configuration, and supplies the
// file and service templates the planner turns into actions.
//
// Profile semantics are order-independent: files load in lexical name
// order, but contribution conditions see only activation flags and every
// merge is commutative, so shuffling profile files never changes the
// outcome of a pass.
package profile
