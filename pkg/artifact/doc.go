/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package artifact models the byte blobs a provisioning pass materializes:
// config files and unit definitions rendered from resolved configuration.
// Content is opaque to the engine; only the sha256 hash matters for
// idempotence and restart triggering.
package artifact
