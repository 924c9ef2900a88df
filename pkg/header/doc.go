/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package header provides the common metadata envelope for documents the
// engine emits: resolved configurations, plans, validation results, and
// the persisted pass state.
//
// The Header carries Kind, APIVersion, a creation timestamp, the tool
// version, and a unique pass ID so every emitted document can be traced
// back to the provisioning pass that produced it.
package header
