/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"math/big"
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/errors"
)

// Provenance records how a slot's final value was produced.
type Provenance struct {
	// Priority is the winning tier; meaningless when Defaulted.
	Priority contribution.Priority `json:"priority" yaml:"priority"`

	// Sources names the declaration sites that supplied the winning value.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Defaulted is true when no contribution survived and the declared
	// default was used.
	Defaulted bool `json:"defaulted,omitempty" yaml:"defaulted,omitempty"`

	// Merged is true when the value was structurally combined from
	// multiple contributions.
	Merged bool `json:"merged,omitempty" yaml:"merged,omitempty"`
}

// ResolvedConfig maps every declared slot to exactly one final value. It is
// produced once per pass and immutable afterward.
type ResolvedConfig struct {
	values map[string]cty.Value
	prov   map[string]Provenance
}

func newResolvedConfig() *ResolvedConfig {
	return &ResolvedConfig{
		values: make(map[string]cty.Value),
		prov:   make(map[string]Provenance),
	}
}

func (rc *ResolvedConfig) set(slot string, v cty.Value, p Provenance) {
	rc.values[slot] = v
	rc.prov[slot] = p
}

// Value returns the final value for a slot, or UNKNOWN_SLOT if the slot was
// never declared.
func (rc *ResolvedConfig) Value(slot string) (cty.Value, error) {
	v, ok := rc.values[slot]
	if !ok {
		return cty.NilVal, errors.Newf(errors.ErrCodeUnknownSlot, "unknown slot %q", slot)
	}
	return v, nil
}

// Provenance returns how the slot's final value was produced.
func (rc *ResolvedConfig) Provenance(slot string) (Provenance, bool) {
	p, ok := rc.prov[slot]
	return p, ok
}

// Slots returns all resolved slot paths in sorted order.
func (rc *ResolvedConfig) Slots() []string {
	out := make([]string, 0, len(rc.values))
	for slot := range rc.values {
		out = append(out, slot)
	}
	sort.Strings(out)
	return out
}

// String returns the slot value as a string. Non-string slots and unknown
// slots return the empty string.
func (rc *ResolvedConfig) String(slot string) string {
	v, ok := rc.values[slot]
	if !ok || v.IsNull() || v.Type() != cty.String {
		return ""
	}
	return v.AsString()
}

// Bool returns the slot value as a bool, or false for non-bool or unknown
// slots.
func (rc *ResolvedConfig) Bool(slot string) bool {
	v, ok := rc.values[slot]
	if !ok || v.IsNull() || v.Type() != cty.Bool {
		return false
	}
	return v.True()
}

// Int returns the slot value as an int64, or 0 for non-number or unknown
// slots.
func (rc *ResolvedConfig) Int(slot string) int64 {
	v, ok := rc.values[slot]
	if !ok || v.IsNull() || v.Type() != cty.Number {
		return 0
	}
	i, _ := v.AsBigFloat().Int64()
	return i
}

// StringList returns the slot value as a []string. Non-list slots return
// nil.
func (rc *ResolvedConfig) StringList(slot string) []string {
	v, ok := rc.values[slot]
	if !ok || v.IsNull() || !v.Type().IsListType() {
		return nil
	}
	out := make([]string, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		if ev.Type() == cty.String && !ev.IsNull() {
			out = append(out, ev.AsString())
		}
	}
	return out
}

// StringMap returns the slot value as a map[string]string. Non-map slots
// return nil.
func (rc *ResolvedConfig) StringMap(slot string) map[string]string {
	v, ok := rc.values[slot]
	if !ok || v.IsNull() || (!v.Type().IsMapType() && !v.Type().IsObjectType()) {
		return nil
	}
	out := make(map[string]string)
	for key, ev := range v.AsValueMap() {
		if ev.Type() == cty.String && !ev.IsNull() {
			out[key] = ev.AsString()
		}
	}
	return out
}

// Values returns all final values keyed by slot path, for condition-free
// consumers such as artifact renderers.
func (rc *ResolvedConfig) Values() map[string]cty.Value {
	out := make(map[string]cty.Value, len(rc.values))
	for k, v := range rc.values {
		out[k] = v
	}
	return out
}

// Export converts the resolved configuration into plain Go values suitable
// for yaml/json serialization, keyed by slot path.
func (rc *ResolvedConfig) Export() map[string]any {
	out := make(map[string]any, len(rc.values))
	for slot, v := range rc.values {
		out[slot] = valueToAny(v)
	}
	return out
}

func valueToAny(v cty.Value) any {
	if v.IsNull() {
		return nil
	}
	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString()
	case t == cty.Bool:
		return v.True()
	case t == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
		f, _ := bf.Float64()
		return f
	case t.IsListType(), t.IsSetType(), t.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, valueToAny(ev))
		}
		return out
	case t.IsMapType(), t.IsObjectType():
		out := make(map[string]any)
		for key, ev := range v.AsValueMap() {
			out[key] = valueToAny(ev)
		}
		return out
	default:
		return v.GoString()
	}
}
