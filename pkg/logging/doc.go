/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package logging provides structured logging utilities for the engine.
//
// It wraps the standard library slog package with project defaults:
// JSON output to stderr, module/version context on every record,
// LOG_LEVEL environment configuration, and source locations for debug
// logs.
//
// Typical usage in main():
//
//	logging.SetDefaultStructuredLogger("hostplan", version)
//	slog.Info("pass started", "profiles", len(paths))
package logging
