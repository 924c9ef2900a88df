/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package server implements the hostplan agent: a long-running process
// that periodically applies the configured profiles to keep the host
// converged, and exposes the outcome over HTTP.
//
// # Architecture
//
// The agent couples two loops behind one process:
//
//   - A convergence loop that runs a full provisioning pass (resolve,
//     validate, plan, execute) on a fixed interval. A failed pass is
//     recorded and retried on the next tick.
//   - An HTTP server with health probes, prometheus metrics, and a small
//     read-only API for inspecting the agent's state.
//
// # API Endpoints
//
// GET /health - Liveness probe
//
//	Always returns 200 OK with {"status": "healthy", "timestamp": "..."}
//
// GET /ready - Readiness probe
//
//	Returns 200 OK after the first convergence pass has completed,
//	503 before that.
//
// GET /metrics - Prometheus metrics
//
// GET /v1/status - Last convergence pass outcome
//
//	Returns the pass summary (completed/unchanged/failed/skipped action
//	counts), the pass identifier, and the last error if the most recent
//	pass failed.
//
// GET /v1/options - Resolved configuration
//
//	Recomputes the resolved option document from the profiles, including
//	per-slot provenance.
//
// # Observability
//
// All API requests accept an optional X-Request-Id header (UUID format);
// the server generates one when absent and echoes it back. Rate limit
// state is reported through X-RateLimit-* response headers, and a 429
// response carries Retry-After.
//
// # Error Handling
//
// API errors return a consistent JSON structure:
//
//	{
//	  "code": "RATE_LIMIT_EXCEEDED",
//	  "message": "Rate limit exceeded",
//	  "request_id": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2026-08-29T12:00:00Z",
//	  "retryable": true
//	}
package server
