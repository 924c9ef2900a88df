/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hostplan/hostplan/pkg/serializer"
)

func optionsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "options",
		EnableShellCompletion: true,
		Usage:                 "Show the resolved configuration with provenance",
		Description: `Resolve the configuration from the given profiles and report every
declared option slot with its effective value, the priority tier that won,
and the declaration sites that contributed it.

# Examples

Show all options as a table:
  hostplan options --profile ./profiles --format table

Include an activation flag and an override:
  hostplan options -p ./profiles -f dns --set dns.listen=0.0.0.0

Write the resolved configuration document to a file:
  hostplan options -p ./profiles -o resolved.yaml`,
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

			doc, err := eng.Describe(ctx)
			if err != nil {
				return err
			}

			format, err := serializer.ParseFormat(cmd.String("format"))
			if err != nil {
				return err
			}
			if format == serializer.FormatTable && cmd.String("output") == "" {
				title := cases.Title(language.English)
				fmt.Fprintf(os.Stdout, "%s (%d)\n\n", title.String("resolved options"), len(doc.Options))
			}

			writer := serializer.NewFileWriterOrStdout(format, cmd.String("output"))
			return writer.Write(doc)
		},
	}
}
