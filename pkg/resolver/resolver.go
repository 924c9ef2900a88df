/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"context"
	"log/slog"

	"github.com/zclconf/go-cty/cty"

	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/registry"
)

// Resolve turns all collected contributions into a ResolvedConfig, giving
// every declared slot exactly one final value.
//
// Per slot: contributions whose condition evaluates false are discarded;
// among the rest only the highest priority tier survives; a single or
// unanimous value wins outright; list and record types combine
// structurally; differing same-tier scalars fail with CONFLICT; and the
// declared default fills slots with no surviving contribution.
//
// Resolution is a pure function of (registry, contributions, flags): it is
// order-independent except for list concatenation, which preserves
// collection order.
func Resolve(ctx context.Context, reg *registry.Registry, col *contribution.Collector, flags contribution.Flags) (*ResolvedConfig, error) {
	if !reg.Frozen() {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "registry must be frozen before resolution")
	}

	rc := newResolvedConfig()

	for _, schema := range reg.Slots() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		value, prov, err := resolveSlot(schema, col.Contributions(schema.Path), flags)
		if err != nil {
			return nil, err
		}
		rc.set(schema.Path, value, prov)
	}

	slog.Debug("configuration resolved",
		"slots", reg.Len(),
		"contributions", col.Len())
	return rc, nil
}

func resolveSlot(schema *registry.Schema, contribs []*contribution.Contribution, flags contribution.Flags) (cty.Value, Provenance, error) {
	active, err := activeContributions(schema.Path, contribs, flags)
	if err != nil {
		return cty.NilVal, Provenance{}, err
	}

	if len(active) == 0 {
		return schema.Default, Provenance{Defaulted: true}, nil
	}

	top := highestTier(active)
	prov := Provenance{
		Priority: top[0].Priority,
		Sources:  sources(top),
	}

	// A single survivor, or unanimous values, wins outright.
	if unanimous(top) {
		return top[0].Value, prov, nil
	}

	if schema.Mergeable() {
		merged, err := mergeStructural(schema, top)
		if err != nil {
			return cty.NilVal, Provenance{}, err
		}
		prov.Merged = true
		return merged, prov, nil
	}

	a, b := firstDisagreement(top)
	return cty.NilVal, Provenance{}, errors.NewWithContext(errors.ErrCodeConflict,
		"conflicting values for slot at the same priority",
		map[string]any{
			"slot":     schema.Path,
			"priority": a.Priority.String(),
			"sources":  []string{a.Source, b.Source},
		})
}

// activeContributions discards contributions whose condition evaluates
// false. A condition evaluation error aborts the pass.
func activeContributions(slot string, contribs []*contribution.Contribution, flags contribution.Flags) ([]*contribution.Contribution, error) {
	active := make([]*contribution.Contribution, 0, len(contribs))
	for _, c := range contribs {
		if c.Condition == nil {
			active = append(active, c)
			continue
		}
		ok, err := c.Condition(flags)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
				"condition evaluation failed", err,
				map[string]any{"slot": slot, "source": c.Source})
		}
		if ok {
			active = append(active, c)
		}
	}
	return active, nil
}

// highestTier keeps only the contributions of the highest priority present,
// preserving collection order within the tier.
func highestTier(contribs []*contribution.Contribution) []*contribution.Contribution {
	top := contribs[0].Priority
	for _, c := range contribs[1:] {
		if c.Priority > top {
			top = c.Priority
		}
	}
	kept := make([]*contribution.Contribution, 0, len(contribs))
	for _, c := range contribs {
		if c.Priority == top {
			kept = append(kept, c)
		}
	}
	return kept
}

func unanimous(contribs []*contribution.Contribution) bool {
	for _, c := range contribs[1:] {
		if !c.Value.RawEquals(contribs[0].Value) {
			return false
		}
	}
	return true
}

func firstDisagreement(contribs []*contribution.Contribution) (a, b *contribution.Contribution) {
	for _, c := range contribs[1:] {
		if !c.Value.RawEquals(contribs[0].Value) {
			return contribs[0], c
		}
	}
	return contribs[0], contribs[0]
}

func sources(contribs []*contribution.Contribution) []string {
	out := make([]string, 0, len(contribs))
	for _, c := range contribs {
		out = append(out, c.Source)
	}
	return out
}
