/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hostplan/hostplan/pkg/server"
)

func agentCmd() *cli.Command {
	return &cli.Command{
		Name:                  "agent",
		EnableShellCompletion: true,
		Usage:                 "Run as a convergence agent with an HTTP API",
		Description: `Run hostplan as a long-lived agent. The agent executes a full
provisioning pass on a fixed interval so the host converges back onto its
profiles after drift, and serves health probes, prometheus metrics, and a
read-only status API over HTTP.

Endpoints: /health, /ready, /metrics, /v1/status, /v1/options.

# Examples

Converge every five minutes (the default) on port 8080:
  hostplan agent --profile /etc/hostplan/profiles --flag dns

Converge every 30 seconds on a custom port:
  hostplan agent -p ./profiles --interval 30s --port 9090`,
		Flags: []cli.Flag{
			profileFlag,
			setFlag,
			activationFlag,
			stateFlag,
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP listen port",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Time between convergence passes (0 disables the loop)",
				Value: -1,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			eng, err := buildEngine(cmd)
			if err != nil {
				return err
			}

			cfg := server.NewConfig()
			cfg.Version = version
			if port := cmd.Int("port"); port > 0 {
				cfg.Port = int(port)
			}
			if interval := cmd.Duration("interval"); interval >= 0 {
				cfg.Interval = interval
			}

			return server.NewServer(eng, cfg).Run(ctx)
		},
	}
}
