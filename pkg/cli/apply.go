/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/hostplan/hostplan/pkg/engine"
	"github.com/hostplan/hostplan/pkg/executor"
)

func applyCmd() *cli.Command {
	return &cli.Command{
		Name:                  "apply",
		EnableShellCompletion: true,
		Usage:                 "Execute a provisioning pass against this host",
		Description: `Run a complete pass: resolve the configuration, validate assertions,
build the plan, and execute it. Artifact writes are idempotent and service
restarts fire only when a watched artifact changed, so re-running a
successful pass is a no-op.

Any failure before execution aborts with zero side effects. During
execution a failed action skips its dependents while independent branches
complete; the pass is safe to re-run afterwards.

# Examples

Apply profiles with the DNS subsystem enabled:
  hostplan apply --profile ./profiles --flag dns

See what would change without touching the host:
  hostplan apply -p ./profiles --dry-run --format table

Bound execution parallelism:
  hostplan apply -p ./profiles --workers 1`,
		Flags: []cli.Flag{
			profileFlag,
			setFlag,
			activationFlag,
			stateFlag,
			outputFlag,
			formatFlag,
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report planned effects without executing them",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Maximum actions executing concurrently",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := []engine.Option{
				engine.WithExecutorOptions(executorOptions(cmd)...),
			}
			if cmd.Bool("dry-run") {
				opts = append(opts, engine.WithServiceManager(executor.NoopManager{}))
			}

			eng, err := buildEngine(cmd, opts...)
			if err != nil {
				return err
			}

			result, execErr := eng.Apply(ctx)
			if result == nil {
				return execErr
			}

			slog.Info("pass complete",
				"pass", result.PassID(),
				"completed", result.Summary.Completed,
				"unchanged", result.Summary.Unchanged,
				"failed", result.Summary.Failed,
				"skipped", result.Summary.Skipped)

			writer, err := newWriter(cmd)
			if err != nil {
				return err
			}
			if err := writer.Write(result); err != nil {
				return err
			}
			return execErr
		},
	}
}
