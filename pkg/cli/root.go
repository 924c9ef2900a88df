/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/engine"
	"github.com/hostplan/hostplan/pkg/executor"
	"github.com/hostplan/hostplan/pkg/logging"
	"github.com/hostplan/hostplan/pkg/profile"
	"github.com/hostplan/hostplan/pkg/serializer"
)

const name = "hostplan"

// overridden during build with ldflags
var version = "dev"

var (
	profileFlag = &cli.StringSliceFlag{
		Name:     "profile",
		Aliases:  []string{"p"},
		Required: true,
		Usage:    "Profile file or directory (.hcl); repeatable",
	}

	setFlag = &cli.StringSliceFlag{
		Name:  "set",
		Usage: "Forced slot override as slot=value; repeatable",
	}

	activationFlag = &cli.StringSliceFlag{
		Name:    "flag",
		Aliases: []string{"f"},
		Usage:   "Activation flag as name[=value]; repeatable",
	}

	stateFlag = &cli.StringFlag{
		Name:  "state",
		Usage: "Pass state file location",
		Value: engine.DefaultStatePath,
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Usage:   "Output format: yaml, json, table",
		Value:   string(serializer.FormatYAML),
	}
)

// Run executes the CLI. It is called by main and returns the process exit
// code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cli.Command{
		Name:    name,
		Usage:   "Declarative host configuration composition and provisioning",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars(logging.EnvLogLevel),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			optionsCmd(),
			validateCmd(),
			planCmd(),
			applyCmd(),
			agentCmd(),
		},
	}

	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// buildEngine assembles an engine from the shared command flags.
func buildEngine(cmd *cli.Command, opts ...engine.Option) (*engine.Engine, error) {
	p, err := profile.Load(cmd.StringSlice("profile")...)
	if err != nil {
		return nil, err
	}

	flags, err := contribution.ParseFlags(cmd.StringSlice("flag"))
	if err != nil {
		return nil, err
	}

	opts = append([]engine.Option{
		engine.WithFlags(flags),
		engine.WithOverrides(cmd.StringSlice("set")),
		engine.WithStatePath(cmd.String("state")),
	}, opts...)
	return engine.New(p, opts...), nil
}

// newWriter builds the output writer from the shared format and output
// flags.
func newWriter(cmd *cli.Command) (*serializer.Writer, error) {
	format, err := serializer.ParseFormat(cmd.String("format"))
	if err != nil {
		return nil, err
	}
	return serializer.NewFileWriterOrStdout(format, cmd.String("output")), nil
}

func executorOptions(cmd *cli.Command) []executor.Option {
	opts := []executor.Option{
		executor.WithDryRun(cmd.Bool("dry-run")),
	}
	if n := cmd.Int("workers"); n > 0 {
		opts = append(opts, executor.WithWorkers(int(n)))
	}
	return opts
}
