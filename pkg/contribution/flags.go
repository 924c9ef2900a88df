/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package contribution

import (
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/hostplan/hostplan/pkg/errors"
)

// Flags are externally supplied key-value inputs available to activation
// conditions, e.g. "unprivileged" or "first_boot". They are fixed for the
// duration of a pass.
type Flags map[string]cty.Value

// Bool returns the named flag as a bool, or false if absent or not a bool.
func (f Flags) Bool(name string) bool {
	v, ok := f[name]
	if !ok || v.Type() != cty.Bool || v.IsNull() {
		return false
	}
	return v.True()
}

// ParseFlags parses "name=value" pairs into Flags. Values parse as bool or
// number when they look like one, and fall back to strings. A bare name
// with no "=" is treated as a true boolean flag. All parse failures are
// collected into a single error.
func ParseFlags(pairs []string) (Flags, error) {
	flags := make(Flags, len(pairs))
	var bad []string

	for _, pair := range pairs {
		name, raw, found := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if name == "" {
			bad = append(bad, pair)
			continue
		}
		if !found {
			flags[name] = cty.True
			continue
		}
		flags[name] = sniffValue(strings.TrimSpace(raw))
	}

	if len(bad) > 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidRequest,
			"invalid flag(s): %s", strings.Join(bad, ", "))
	}
	return flags, nil
}

func sniffValue(raw string) cty.Value {
	switch raw {
	case "true":
		return cty.True
	case "false":
		return cty.False
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return cty.NumberFloatVal(f)
	}
	return cty.StringVal(raw)
}
