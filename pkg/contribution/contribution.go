/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package contribution

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/registry"
)

// Priority orders contribution tiers. Higher priorities win during
// resolution. The slot's declared default sits below all of these as the
// implicit lowest tier.
type Priority int

const (
	// PriorityDefault marks a soft proposal, overridable by any explicit
	// setting (e.g. a packaging default).
	PriorityDefault Priority = iota

	// PriorityExplicit marks a deliberate setting from a declaration site.
	// Two explicit contributions with different scalar values conflict.
	PriorityExplicit

	// PriorityForced marks an override that beats explicit settings,
	// e.g. a --set flag on the command line.
	PriorityForced
)

// String returns the priority name used in profiles and error messages.
func (p Priority) String() string {
	switch p {
	case PriorityDefault:
		return "default"
	case PriorityExplicit:
		return "explicit"
	case PriorityForced:
		return "forced"
	default:
		return "unknown"
	}
}

// ParsePriority converts a priority name into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "default":
		return PriorityDefault, nil
	case "explicit", "":
		return PriorityExplicit, nil
	case "forced":
		return PriorityForced, nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidRequest, "invalid priority %q (want default, explicit, or forced)", s)
	}
}

// Condition is an activation predicate evaluated against externally
// supplied flags. Conditions never see resolved configuration, which keeps
// resolution order-independent. A nil Condition is always active.
type Condition func(flags Flags) (bool, error)

// Contribution is a proposed value for one option slot, tagged with a
// priority and an activation condition. Contributions are consumed once
// during resolution and not retained afterward.
type Contribution struct {
	// Slot is the target slot path.
	Slot string

	// Value is the proposed value, already converted to the slot's type.
	Value cty.Value

	// Priority is the contribution's tier.
	Priority Priority

	// Condition gates the contribution; nil means always active.
	Condition Condition

	// Source names the declaration site, used in conflict errors.
	Source string
}

// Collector gathers contributions for registry slots from independent
// declaration sites. It performs fail-fast type checking but never resolves
// conflicts; collection order is retained only so list merges are
// deterministic.
type Collector struct {
	reg      *registry.Registry
	contribs map[string][]*Contribution
}

// NewCollector creates a Collector for slots of the given registry.
func NewCollector(reg *registry.Registry) *Collector {
	return &Collector{
		reg:      reg,
		contribs: make(map[string][]*Contribution),
	}
}

// Propose records a contribution for a slot. It fails with UNKNOWN_SLOT if
// the slot is not declared and with TYPE_MISMATCH if the value cannot be
// converted to the slot's declared type. Multiple contributions to the same
// slot are permitted and expected.
func (c *Collector) Propose(slot string, value cty.Value, pri Priority, cond Condition, source string) error {
	schema, err := c.reg.Lookup(slot)
	if err != nil {
		return err
	}

	converted, err := convert.Convert(value, schema.Type)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeTypeMismatch,
			"proposed value does not conform to slot type", err,
			map[string]any{
				"slot":   slot,
				"type":   schema.Type.FriendlyName(),
				"source": source,
			})
	}

	c.contribs[slot] = append(c.contribs[slot], &Contribution{
		Slot:      slot,
		Value:     converted,
		Priority:  pri,
		Condition: cond,
		Source:    source,
	})
	return nil
}

// Contributions returns all contributions for a slot in collection order.
func (c *Collector) Contributions(slot string) []*Contribution {
	return c.contribs[slot]
}

// Slots returns the sorted paths of all slots with at least one
// contribution.
func (c *Collector) Slots() []string {
	out := make([]string, 0, len(c.contribs))
	for slot := range c.contribs {
		out = append(out, slot)
	}
	sort.Strings(out)
	return out
}

// Len returns the total number of collected contributions.
func (c *Collector) Len() int {
	n := 0
	for _, cs := range c.contribs {
		n += len(cs)
	}
	return n
}
