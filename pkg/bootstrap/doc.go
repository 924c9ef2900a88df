/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package bootstrap executes one-time provisioning actions — secret
// generation, schema initialization — guarded by externally observable
// completion state so repeated passes never duplicate work.
//
// The guard is check-external-state-before-acting: a durable marker is
// consulted first, then an external probe that can detect completion by an
// out-of-band mechanism, and only then does the effect run.
package bootstrap
