/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package overrides

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/registry"
)

// Source tags contributions that came from command-line overrides.
const Source = "--set"

// Apply parses "slot=value" override pairs and proposes each as a
// forced-priority contribution, so overrides beat every profile value.
// Values are coerced to the slot's declared type: booleans accept yes/no
// style spellings, lists split on commas, maps take comma-separated k=v
// pairs. All failed overrides are reported together instead of stopping at
// the first failure.
func Apply(col *contribution.Collector, reg *registry.Registry, pairs []string) error {
	var failed []string

	for _, pair := range pairs {
		slot, raw, found := strings.Cut(pair, "=")
		slot = strings.TrimSpace(slot)
		if !found || slot == "" {
			failed = append(failed, fmt.Sprintf("%s: expected slot=value", pair))
			continue
		}

		schema, err := reg.Lookup(slot)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", pair, err))
			continue
		}

		value, err := coerce(raw, schema.Type)
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", pair, err))
			continue
		}

		if err := col.Propose(slot, value, contribution.PriorityForced, nil, Source); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", pair, err))
		}
	}

	if len(failed) > 0 {
		return errors.Newf(errors.ErrCodeInvalidRequest,
			"failed to apply overrides: %s", strings.Join(failed, "; "))
	}
	return nil
}

// coerce converts a raw override string to the slot's declared type.
func coerce(raw string, typ cty.Type) (cty.Value, error) {
	raw = strings.TrimSpace(raw)

	switch {
	case typ == cty.Bool:
		b, err := parseBool(raw)
		if err != nil {
			return cty.NilVal, err
		}
		return cty.BoolVal(b), nil

	case typ == cty.Number:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cty.NilVal, fmt.Errorf("invalid number %q", raw)
		}
		return cty.NumberFloatVal(f), nil

	case typ == cty.String:
		return cty.StringVal(raw), nil

	case typ.IsListType() || typ.IsSetType():
		elems := splitList(raw)
		if len(elems) == 0 {
			return cty.ListValEmpty(typ.ElementType()), nil
		}
		vals := make([]cty.Value, 0, len(elems))
		for _, e := range elems {
			v, err := coerce(e, typ.ElementType())
			if err != nil {
				return cty.NilVal, err
			}
			vals = append(vals, v)
		}
		if typ.IsSetType() {
			return cty.SetVal(vals), nil
		}
		return cty.ListVal(vals), nil

	case typ.IsMapType():
		elems := splitList(raw)
		entries := make(map[string]cty.Value, len(elems))
		for _, e := range elems {
			k, v, ok := strings.Cut(e, "=")
			if !ok {
				return cty.NilVal, fmt.Errorf("invalid map entry %q: expected key=value", e)
			}
			cv, err := coerce(v, typ.ElementType())
			if err != nil {
				return cty.NilVal, err
			}
			entries[strings.TrimSpace(k)] = cv
		}
		if len(entries) == 0 {
			return cty.MapValEmpty(typ.ElementType()), nil
		}
		return cty.MapVal(entries), nil
	}

	// Last resort for anything else the registry allows.
	v, err := convert.Convert(cty.StringVal(raw), typ)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot convert %q to %s", raw, typ.FriendlyName())
	}
	return v, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// parseBool parses boolean values with support for various spellings.
func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true", "yes", "1", "on", "enabled":
		return true, nil
	case "false", "no", "0", "off", "disabled":
		return false, nil
	default:
		return false, fmt.Errorf("cannot parse %q as boolean", value)
	}
}
