/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"

	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/resolver"
)

// DefaultMode is the file mode for artifacts that do not declare one.
const DefaultMode fs.FileMode = 0o644

// Artifact is a target location plus byte content derived from resolved
// configuration. The engine never interprets the content; re-materializing
// unchanged content is a no-op.
type Artifact struct {
	// Name identifies the artifact within a plan (e.g. "postfix_main_cf").
	Name string `json:"name" yaml:"name"`

	// Path is the target filesystem location.
	Path string `json:"path" yaml:"path"`

	// Content is the rendered byte blob.
	Content []byte `json:"-" yaml:"-"`

	// Mode is the file mode to materialize with; zero means DefaultMode.
	Mode fs.FileMode `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// Hash returns the hex sha256 of the artifact content, used for
// restart-trigger comparison against the last materialized state.
func (a *Artifact) Hash() string {
	sum := sha256.Sum256(a.Content)
	return hex.EncodeToString(sum[:])
}

// FileMode returns the effective file mode.
func (a *Artifact) FileMode() fs.FileMode {
	if a.Mode == 0 {
		return DefaultMode
	}
	return a.Mode
}

// Renderer produces an artifact from resolved configuration. Renderers are
// pure functions supplied per artifact kind; the engine treats their output
// as opaque.
type Renderer func(cfg *resolver.ResolvedConfig) (*Artifact, error)

// Render runs a renderer and validates its output.
func Render(cfg *resolver.ResolvedConfig, name string, render Renderer) (*Artifact, error) {
	a, err := render(cfg)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInternal,
			"artifact renderer failed", err, map[string]any{"artifact": name})
	}
	if a == nil || a.Path == "" {
		return nil, errors.Newf(errors.ErrCodeInternal, "artifact %q rendered without a target path", name)
	}
	if a.Name == "" {
		a.Name = name
	}
	return a, nil
}
