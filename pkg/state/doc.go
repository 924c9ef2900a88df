/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package state persists the engine's durable pass state: one completion
// marker per bootstrap action and the content hash of every materialized
// artifact.
//
// The state file is a single yaml document written atomically (temp file +
// rename). It is read at the start of every pass and is the only resource
// shared across passes.
package state
