/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package registry

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/hostplan/hostplan/pkg/errors"
)

// Schema describes a single declared option slot: its dot-separated path,
// value type, default, and human-readable description. Schemas are
// immutable once declared.
type Schema struct {
	// Path is the slot identifier, e.g. "database.host".
	Path string

	// Type is the declared value type for the slot.
	Type cty.Type

	// Default is the value used when no contribution survives resolution.
	// It always conforms to Type.
	Default cty.Value

	// Description documents the slot for operators.
	Description string
}

// Mergeable reports whether the slot's type supports structural combination
// of multiple same-priority contributions: ordered lists and sets
// concatenate, maps and objects merge key-wise.
func (s *Schema) Mergeable() bool {
	return s.Type.IsListType() || s.Type.IsSetType() || s.Type.IsMapType() || s.Type.IsObjectType()
}

// Registry holds all declared option slots. Slots are declared during an
// initialization phase; after Freeze the registry is immutable and safe to
// share.
type Registry struct {
	slots  map[string]*Schema
	frozen bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		slots: make(map[string]*Schema),
	}
}

// Declare registers a new option slot. It fails with DUPLICATE_SLOT if the
// path is already declared, with INVALID_REQUEST if the registry is frozen
// or the path is empty, and with TYPE_MISMATCH if the default value does
// not conform to the declared type.
func (r *Registry) Declare(path string, typ cty.Type, def cty.Value, description string) error {
	if r.frozen {
		return errors.Newf(errors.ErrCodeInvalidRequest, "cannot declare slot %q: registry is frozen", path)
	}
	if path == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "slot path cannot be empty")
	}
	if _, ok := r.slots[path]; ok {
		return errors.Newf(errors.ErrCodeDuplicateSlot, "slot %q already declared", path)
	}

	converted, err := convert.Convert(def, typ)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeTypeMismatch,
			"default value does not conform to slot type", err,
			map[string]any{"slot": path, "type": typ.FriendlyName()})
	}

	r.slots[path] = &Schema{
		Path:        path,
		Type:        typ,
		Default:     converted,
		Description: description,
	}
	return nil
}

// Lookup returns the schema for the given slot path, or UNKNOWN_SLOT if no
// such slot was declared.
func (r *Registry) Lookup(path string) (*Schema, error) {
	s, ok := r.slots[path]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeUnknownSlot, "unknown slot %q", path)
	}
	return s, nil
}

// Freeze ends the initialization phase. Further Declare calls fail.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether the initialization phase has ended.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Len returns the number of declared slots.
func (r *Registry) Len() int {
	return len(r.slots)
}

// Slots returns all declared schemas sorted by path, giving every consumer
// a deterministic iteration order.
func (r *Registry) Slots() []*Schema {
	out := make([]*Schema, 0, len(r.slots))
	for _, s := range r.slots {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
