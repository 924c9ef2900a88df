/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"
)

func planCmd() *cli.Command {
	return &cli.Command{
		Name:                  "plan",
		EnableShellCompletion: true,
		Usage:                 "Build the ordered action plan without executing it",
		Description: `Resolve and validate the configuration, then emit the topologically
ordered plan the apply command would execute. The plan is a pure document:
nothing on the host is touched.

# Examples

Show the plan for a set of profiles:
  hostplan plan --profile ./profiles --flag dns

Emit the plan as JSON for tooling:
  hostplan plan -p ./profiles -t json -o plan.json`,
		Flags: []cli.Flag{
			profileFlag,
			setFlag,
			activationFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}

			plan, err := eng.Plan(ctx)
			if err != nil {
				return err
			}

			slog.Info("plan built", "pass", plan.PassID(), "actions", plan.Len())

			writer, err := newWriter(cmd)
			if err != nil {
				return err
			}
			return writer.Write(plan)
		},
	}
}
