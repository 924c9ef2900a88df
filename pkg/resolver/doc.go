/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package resolver implements the merge resolver: the deterministic
// reduction of all collected contributions into one final value per
// declared slot.
//
// The resolver applies, per slot: condition filtering, priority
// tie-breaking (forced > explicit > default > declared default),
// structural combination for list and record types, and loud conflict
// errors for genuinely disagreeing scalars. The result is an immutable
// ResolvedConfig with per-slot provenance.
package resolver
