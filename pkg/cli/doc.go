/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the hostplan command-line interface.
//
// # Commands
//
// options - Show the resolved configuration:
//
//	hostplan options --profile ./profiles [--format yaml|json|table]
//
// Resolves every declared option slot and reports its effective value,
// winning priority tier, and contributing declaration sites.
//
// validate - Check assertions:
//
//	hostplan validate --profile ./profiles [--flag NAME]
//
// Evaluates every assert block against the resolved configuration and
// reports all violations together.
//
// plan - Build the ordered plan:
//
//	hostplan plan --profile ./profiles [--output plan.yaml]
//
// Emits the topologically ordered action plan without executing anything.
//
// apply - Execute a provisioning pass:
//
//	hostplan apply --profile ./profiles [--dry-run] [--workers N]
//
// Runs the full pass: artifact writes are idempotent, restarts fire only on
// artifact change, and one-time bootstrap actions are guarded by durable
// state markers.
//
// agent - Run as a convergence agent:
//
//	hostplan agent --profile ./profiles [--interval 5m] [--port 8080]
//
// Applies the profiles on an interval and serves health probes, metrics,
// and a read-only status API over HTTP.
//
// # Global Flags
//
//	--log-level    Log level: debug, info, warn, error (also LOG_LEVEL env)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Shared Flags
//
//	--profile, -p  Profile file or directory; repeatable
//	--set          Forced override slot=value; repeatable
//	--flag, -f     Activation flag name[=value]; repeatable
//	--output, -o   Output file path (default: stdout)
//	--format, -t   Output format: yaml, json, table (default: yaml)
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/hostplan/hostplan/pkg/cli.version=1.0.0'"
package cli
