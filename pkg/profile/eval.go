/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package profile

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/resolver"
)

// ctyType parses a type expression such as `bool` or `list(string)`.
func ctyType(expr hcl.Expression) (cty.Type, error) {
	typ, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.NilType, errors.Wrap(errors.ErrCodeInvalidRequest,
			"invalid option type expression", diags)
	}
	return typ, nil
}

// flagContext builds the evaluation context for expressions over flag.*.
// Flags referenced by the expression but not supplied evaluate to false, so
// profiles can gate on flags the operator never mentioned.
func flagContext(expr hcl.Expression, flags contribution.Flags) *hcl.EvalContext {
	attrs := make(map[string]cty.Value, len(flags))
	for name, v := range flags {
		attrs[name] = v
	}
	for _, trav := range expr.Variables() {
		if trav.RootName() != "flag" || len(trav) < 2 {
			continue
		}
		attr, ok := trav[1].(hcl.TraverseAttr)
		if !ok {
			continue
		}
		if _, present := attrs[attr.Name]; !present {
			attrs[attr.Name] = cty.False
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"flag": cty.ObjectVal(attrs)},
		Functions: evalFunctions(),
	}
}

// optionContext exposes every resolved slot as option["slot.path"].
func optionContext(cfg *resolver.ResolvedConfig) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"option": cty.ObjectVal(cfg.Values())},
		Functions: evalFunctions(),
	}
}

// evalBool evaluates an expression to a boolean.
func evalBool(expr hcl.Expression, ctx *hcl.EvalContext) (bool, error) {
	v, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return false, errors.Wrap(errors.ErrCodeInvalidRequest, "expression evaluation failed", diags)
	}
	b, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeTypeMismatch, "expression is not a boolean", err)
	}
	if b.IsNull() {
		return false, nil
	}
	return b.True(), nil
}

// evalString evaluates an expression to a string.
func evalString(expr hcl.Expression, ctx *hcl.EvalContext) (string, error) {
	v, diags := expr.Value(ctx)
	if diags.HasErrors() {
		return "", errors.Wrap(errors.ErrCodeInvalidRequest, "expression evaluation failed", diags)
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeTypeMismatch, "expression is not a string", err)
	}
	if s.IsNull() {
		return "", errors.New(errors.ErrCodeTypeMismatch, "expression evaluated to null")
	}
	return s.AsString(), nil
}
