/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package registry

import "github.com/zclconf/go-cty/cty"

// Convenience aliases for the slot value types the engine supports.
// Multi-line text and opaque references are both carried as strings; the
// engine never interprets their content.
var (
	// Bool is the boolean slot type.
	Bool = cty.Bool

	// String is the string slot type, also used for multi-line text and
	// opaque references.
	String = cty.String

	// Number is the numeric slot type.
	Number = cty.Number

	// StringList is an ordered list of strings; same-priority contributions
	// concatenate in collection order.
	StringList = cty.List(cty.String)

	// StringMap is a record of named string sub-values; same-priority
	// contributions merge key-wise and conflicting keys are an error.
	StringMap = cty.Map(cty.String)
)

// List returns an ordered-list slot type with the given element type.
func List(elem cty.Type) cty.Type {
	return cty.List(elem)
}

// Record returns a record slot type mapping names to values of the given
// element type.
func Record(elem cty.Type) cty.Type {
	return cty.Map(elem)
}
