/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package profile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/hostplan/hostplan/pkg/errors"
)

// fileRoot decodes every top-level block a profile file may carry.
type fileRoot struct {
	Options  []*optionBlock  `hcl:"option,block"`
	Sets     []*setBlock     `hcl:"set,block"`
	Asserts  []*assertBlock  `hcl:"assert,block"`
	Files    []*fileBlock    `hcl:"file,block"`
	Services []*serviceBlock `hcl:"service,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

type optionBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Default     hcl.Expression `hcl:"default,optional"`
	Description string         `hcl:"description,optional"`
}

type setBlock struct {
	Slot     string         `hcl:"slot,label"`
	Value    hcl.Expression `hcl:"value"`
	Priority string         `hcl:"priority,optional"`
	When     hcl.Expression `hcl:"when,optional"`
}

type assertBlock struct {
	Name      string         `hcl:"name,label"`
	Condition hcl.Expression `hcl:"condition"`
	Message   string         `hcl:"message"`
}

type fileBlock struct {
	Name      string         `hcl:"name,label"`
	Path      string         `hcl:"path"`
	Mode      string         `hcl:"mode,optional"`
	Content   hcl.Expression `hcl:"content"`
	When      hcl.Expression `hcl:"when,optional"`
	DependsOn []string       `hcl:"depends_on,optional"`
}

type serviceBlock struct {
	Name      string         `hcl:"name,label"`
	Unit      string         `hcl:"unit,optional"`
	Action    string         `hcl:"action,optional"`
	RestartOn []string       `hcl:"restart_on,optional"`
	DependsOn []string       `hcl:"depends_on,optional"`
	When      hcl.Expression `hcl:"when,optional"`
}

// Profile is the aggregate of all declaration sites loaded from one or more
// profile files. Load order is by file name, but every downstream semantic
// is order-independent, so reordering profile files never changes the
// resolved configuration.
type Profile struct {
	options  []*optionBlock
	sets     []*setBlock
	asserts  []*assertBlock
	files    []*fileBlock
	services []*serviceBlock
}

// Load parses every .hcl file under the given paths. Directories are walked
// recursively; file arguments are taken as-is. Files are processed in
// lexical name order.
func Load(paths ...string) (*Profile, error) {
	files, err := findProfileFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"no profile files found", map[string]any{"paths": paths})
	}

	p := &Profile{}
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, diagsError("failed to parse profile file", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, diagsError("failed to decode profile file", file, diags)
		}

		p.options = append(p.options, root.Options...)
		p.sets = append(p.sets, root.Sets...)
		p.asserts = append(p.asserts, root.Asserts...)
		p.files = append(p.files, root.Files...)
		p.services = append(p.services, root.Services...)
	}
	return p, nil
}

// findProfileFiles walks all given paths and returns the .hcl files found,
// deduplicated and sorted by name.
func findProfileFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, ok := seen[p]; !ok {
			all = append(all, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
				"cannot access profile path", err, map[string]any{"path": path})
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to walk profile directory", err)
		}
	}

	sort.Strings(all)
	return all, nil
}

func diagsError(msg, file string, diags hcl.Diagnostics) error {
	return errors.WrapWithContext(errors.ErrCodeInvalidRequest, msg, diags,
		map[string]any{"file": file})
}

// sourceOf names the declaration site for provenance tracking.
func sourceOf(expr hcl.Expression) string {
	rng := expr.Range()
	return fmt.Sprintf("%s:%d", rng.Filename, rng.Start.Line)
}

// parseMode converts an octal mode string like "0644" to a file mode.
// An empty string means the artifact default applies.
func parseMode(s string) (fs.FileMode, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
			"invalid file mode", err, map[string]any{"mode": s})
	}
	return fs.FileMode(n), nil
}
