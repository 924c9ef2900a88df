/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package defaults centralizes default timeout and concurrency values
// shared across the engine, so operational tuning lives in one place.
package defaults
