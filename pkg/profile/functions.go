/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package profile

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/hostplan/hostplan/pkg/version"
)

// evalFunctions are available in every profile expression. Version
// comparison respects constraint precision: version_at_least("6.8.1",
// "6.8") holds.
func evalFunctions() map[string]function.Function {
	return map[string]function.Function{
		"version_at_least": versionFunc(version.Version.AtLeast),
		"version_newer":    versionFunc(version.Version.Newer),
		"version_equals":   versionFunc(version.Version.Equals),
	}
}

func versionFunc(cmp func(a, b version.Version) bool) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "have", Type: cty.String},
			{Name: "want", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.Bool),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			have, err := version.Parse(args[0].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			want, err := version.Parse(args[1].AsString())
			if err != nil {
				return cty.NilVal, err
			}
			return cty.BoolVal(cmp(have, want)), nil
		},
	})
}
