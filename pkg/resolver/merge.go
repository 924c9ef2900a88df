/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/registry"
)

// mergeStructural combines same-tier contributions by the slot type's
// combination rule: lists concatenate in collection order, sets union, and
// record types (maps, objects) merge key-wise with conflicting keys
// reported as DUPLICATE_KEY.
func mergeStructural(schema *registry.Schema, contribs []*contribution.Contribution) (cty.Value, error) {
	switch {
	case schema.Type.IsListType():
		return mergeList(schema, contribs), nil
	case schema.Type.IsSetType():
		return mergeSet(schema, contribs), nil
	case schema.Type.IsMapType(), schema.Type.IsObjectType():
		return mergeRecord(schema, contribs)
	default:
		// resolveSlot only calls this for mergeable types.
		return cty.NilVal, errors.Newf(errors.ErrCodeInternal,
			"slot %q type %s is not structurally mergeable", schema.Path, schema.Type.FriendlyName())
	}
}

func mergeList(schema *registry.Schema, contribs []*contribution.Contribution) cty.Value {
	elemType := schema.Type.ElementType()
	var elems []cty.Value
	for _, c := range contribs {
		if c.Value.IsNull() {
			continue
		}
		for it := c.Value.ElementIterator(); it.Next(); {
			_, v := it.Element()
			elems = append(elems, v)
		}
	}
	if len(elems) == 0 {
		return cty.ListValEmpty(elemType)
	}
	return cty.ListVal(elems)
}

func mergeSet(schema *registry.Schema, contribs []*contribution.Contribution) cty.Value {
	elemType := schema.Type.ElementType()
	seen := make(map[string]cty.Value)
	var elems []cty.Value
	for _, c := range contribs {
		if c.Value.IsNull() {
			continue
		}
		for it := c.Value.ElementIterator(); it.Next(); {
			_, v := it.Element()
			key := v.GoString()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = v
			elems = append(elems, v)
		}
	}
	if len(elems) == 0 {
		return cty.SetValEmpty(elemType)
	}
	return cty.SetVal(elems)
}

func mergeRecord(schema *registry.Schema, contribs []*contribution.Contribution) (cty.Value, error) {
	merged := make(map[string]cty.Value)
	owner := make(map[string]string)

	for _, c := range contribs {
		if c.Value.IsNull() {
			continue
		}
		for key, v := range c.Value.AsValueMap() {
			prev, ok := merged[key]
			if !ok {
				merged[key] = v
				owner[key] = c.Source
				continue
			}
			if !prev.RawEquals(v) {
				return cty.NilVal, errors.NewWithContext(errors.ErrCodeDuplicateKey,
					"conflicting values for record key",
					map[string]any{
						"slot":    schema.Path,
						"key":     key,
						"sources": []string{owner[key], c.Source},
					})
			}
		}
	}

	if schema.Type.IsObjectType() {
		if len(merged) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(merged), nil
	}
	if len(merged) == 0 {
		return cty.MapValEmpty(schema.Type.ElementType()), nil
	}
	return cty.MapVal(merged), nil
}
