/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/hostplan/hostplan/pkg/header"
)

// OptionEntry describes one resolved slot with its provenance.
type OptionEntry struct {
	Slot        string   `json:"slot" yaml:"slot"`
	Type        string   `json:"type" yaml:"type"`
	Value       any      `json:"value" yaml:"value"`
	Priority    string   `json:"priority" yaml:"priority"`
	Sources     []string `json:"sources,omitempty" yaml:"sources,omitempty"`
	Defaulted   bool     `json:"defaulted,omitempty" yaml:"defaulted,omitempty"`
	Merged      bool     `json:"merged,omitempty" yaml:"merged,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// OptionsDocument is the full resolved configuration with provenance, one
// entry per declared slot in path order.
type OptionsDocument struct {
	header.Header `json:",inline" yaml:",inline"`

	Options []OptionEntry `json:"options" yaml:"options"`
}

// TableHeader implements serializer.Tabular.
func (d *OptionsDocument) TableHeader() []string {
	return []string{"SLOT", "TYPE", "VALUE", "PRIORITY", "SOURCES"}
}

// TableRows implements serializer.Tabular.
func (d *OptionsDocument) TableRows() [][]string {
	rows := make([][]string, 0, len(d.Options))
	for _, o := range d.Options {
		priority := o.Priority
		if o.Defaulted {
			priority = "declared default"
		}
		rows = append(rows, []string{
			o.Slot,
			o.Type,
			fmt.Sprintf("%v", o.Value),
			priority,
			strings.Join(o.Sources, ","),
		})
	}
	return rows
}

// Describe resolves the configuration and reports every slot with its
// value, provenance, and declared description.
func (e *Engine) Describe(ctx context.Context) (*OptionsDocument, error) {
	cfg, reg, err := e.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	doc := &OptionsDocument{}
	doc.Init(header.KindResolvedConfig, "hostplan.dev/v1alpha1", "")

	values := cfg.Export()
	for _, schema := range reg.Slots() {
		entry := OptionEntry{
			Slot:        schema.Path,
			Type:        schema.Type.FriendlyName(),
			Value:       values[schema.Path],
			Description: schema.Description,
		}
		if prov, ok := cfg.Provenance(schema.Path); ok {
			entry.Priority = prov.Priority.String()
			entry.Sources = prov.Sources
			entry.Defaulted = prov.Defaulted
			entry.Merged = prov.Merged
		}
		doc.Options = append(doc.Options, entry)
	}
	return doc, nil
}
