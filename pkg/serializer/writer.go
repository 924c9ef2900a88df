/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package serializer

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/hostplan/hostplan/pkg/errors"
)

// Format is the output format for engine documents.
type Format string

const (
	// FormatYAML outputs documents as YAML.
	FormatYAML Format = "yaml"
	// FormatJSON outputs documents as indented JSON.
	FormatJSON Format = "json"
	// FormatTable outputs documents as an aligned text table.
	FormatTable Format = "table"
)

// ParseFormat validates a format name. An empty string means YAML.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatYAML:
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatTable:
		return FormatTable, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidRequest, "unknown output format %q", s)
	}
}

// Tabular lets a document control its own table rendering instead of the
// generic flattened view.
type Tabular interface {
	TableHeader() []string
	TableRows() [][]string
}

// Writer serializes engine documents to an output in a fixed format.
type Writer struct {
	format Format
	out    io.Writer
}

// NewWriter creates a Writer. A nil output means stdout.
func NewWriter(format Format, out io.Writer) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{format: format, out: out}
}

// NewStdoutWriter creates a Writer targeting stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout creates a Writer targeting the given file path,
// falling back to stdout when the path is empty or cannot be created.
func NewFileWriterOrStdout(format Format, path string) *Writer {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return NewStdoutWriter(format)
	}
	file, err := os.Create(trimmed)
	if err != nil {
		slog.Error("failed to create output file", "error", err, "path", trimmed)
		return NewStdoutWriter(format)
	}
	return NewWriter(format, file)
}

// Write serializes the document in the configured format.
func (w *Writer) Write(doc any) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to serialize to JSON", err)
		}
		return nil
	case FormatYAML, "":
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, "failed to serialize to YAML", err)
		}
		return enc.Close()
	case FormatTable:
		return w.writeTable(doc)
	default:
		return errors.Newf(errors.ErrCodeInvalidRequest, "unknown output format %q", w.format)
	}
}

func (w *Writer) writeTable(doc any) error {
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)

	if tab, ok := doc.(Tabular); ok {
		fmt.Fprintln(tw, strings.Join(tab.TableHeader(), "\t"))
		for _, row := range tab.TableRows() {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		return tw.Flush()
	}

	flat, err := flatten(doc)
	if err != nil {
		return err
	}
	if len(flat) == 0 {
		fmt.Fprintln(w.out, "<empty>")
		return nil
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(tw, "FIELD\tVALUE")
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%v\n", k, flat[k])
	}
	return tw.Flush()
}

// flatten reduces an arbitrary document to dotted leaf paths by going
// through its JSON form, so field tags shape the keys the same way they
// shape the json output.
func flatten(doc any) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to flatten document", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to flatten document", err)
	}

	flat := make(map[string]any)
	flattenInto(flat, "", generic)
	return flat, nil
}

func flattenInto(out map[string]any, prefix string, v any) {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			flattenInto(out, joinKey(prefix, k), item)
		}
	case []any:
		for i, item := range val {
			flattenInto(out, fmt.Sprintf("%s[%d]", prefix, i), item)
		}
	default:
		if prefix == "" {
			prefix = "value"
		}
		out[prefix] = v
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
