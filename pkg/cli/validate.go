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

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "validate",
		EnableShellCompletion: true,
		Usage:                 "Check assertions against the resolved configuration",
		Description: `Resolve the configuration and evaluate every assertion against it. All
violations are reported together; the command exits non-zero when any
assertion fails.

# Examples

Validate profiles:
  hostplan validate --profile ./profiles

Validate with an activation flag and see the full result document:
  hostplan validate -p ./profiles -f unprivileged -o result.yaml`,
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

			result, valErr := eng.Validate(ctx)
			if result == nil {
				return valErr
			}

			slog.Info("validation complete",
				"passed", result.Summary.Passed,
				"failed", result.Summary.Failed)

			writer, err := newWriter(cmd)
			if err != nil {
				return err
			}
			if err := writer.Write(result); err != nil {
				return err
			}
			return valErr
		},
	}
}
