/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package profile

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/hostplan/hostplan/pkg/artifact"
	"github.com/hostplan/hostplan/pkg/assertion"
	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/planner"
	"github.com/hostplan/hostplan/pkg/registry"
	"github.com/hostplan/hostplan/pkg/resolver"
)

// Register declares every option block against the registry. Duplicate
// declarations across profile files fail the pass.
func (p *Profile) Register(reg *registry.Registry) error {
	for _, opt := range p.options {
		typ, err := ctyType(opt.Type)
		if err != nil {
			return err
		}

		def := cty.NullVal(typ)
		if opt.Default != nil {
			v, diags := opt.Default.Value(nil)
			if diags.HasErrors() {
				return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
					"failed to evaluate option default", diags,
					map[string]any{"slot": opt.Name})
			}
			def = v
		}

		if err := reg.Declare(opt.Name, typ, def, opt.Description); err != nil {
			return err
		}
	}
	return nil
}

// Contribute proposes every set block to the collector. Value expressions
// may reference flag.*, conditions are deferred to resolution so their
// outcome is independent of profile load order.
func (p *Profile) Contribute(col *contribution.Collector, flags contribution.Flags) error {
	for _, set := range p.sets {
		pri, err := contribution.ParsePriority(set.Priority)
		if err != nil {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
				"invalid contribution priority", err,
				map[string]any{"slot": set.Slot, "source": sourceOf(set.Value)})
		}

		value, diags := set.Value.Value(flagContext(set.Value, flags))
		if diags.HasErrors() {
			return errors.WrapWithContext(errors.ErrCodeInvalidRequest,
				"failed to evaluate contribution value", diags,
				map[string]any{"slot": set.Slot, "source": sourceOf(set.Value)})
		}

		var cond contribution.Condition
		if when := set.When; when != nil {
			cond = func(f contribution.Flags) (bool, error) {
				return evalBool(when, flagContext(when, f))
			}
		}

		if err := col.Propose(set.Slot, value, pri, cond, sourceOf(set.Value)); err != nil {
			return err
		}
	}
	return nil
}

// Assertions converts assert blocks to engine assertions. Conditions
// evaluate over option.* after resolution.
func (p *Profile) Assertions() []assertion.Assertion {
	out := make([]assertion.Assertion, 0, len(p.asserts))
	for _, a := range p.asserts {
		cond := a.Condition
		out = append(out, assertion.Assertion{
			Name:    a.Name,
			Message: a.Message,
			Check: func(cfg *resolver.ResolvedConfig) (bool, error) {
				return evalBool(cond, optionContext(cfg))
			},
		})
	}
	return out
}

// Templates converts file and service blocks to planner templates. File
// block names double as artifact names, so service restart_on lists
// reference them directly.
func (p *Profile) Templates() ([]planner.Template, error) {
	out := make([]planner.Template, 0, len(p.files)+len(p.services))

	for _, f := range p.files {
		mode, err := parseMode(f.Mode)
		if err != nil {
			return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
				"invalid file block", err, map[string]any{"file": f.Name})
		}

		path, content := f.Path, f.Content
		out = append(out, planner.Template{
			ID:        f.Name,
			Kind:      planner.KindWriteArtifact,
			DependsOn: f.DependsOn,
			When:      gateFor(f.When),
			Renderer: func(cfg *resolver.ResolvedConfig) (*artifact.Artifact, error) {
				rendered, err := evalString(content, optionContext(cfg))
				if err != nil {
					return nil, err
				}
				return &artifact.Artifact{
					Path:    path,
					Content: []byte(rendered),
					Mode:    mode,
				}, nil
			},
		})
	}

	for _, s := range p.services {
		kind, err := serviceKind(s)
		if err != nil {
			return nil, err
		}
		unit := s.Unit
		if unit == "" {
			unit = s.Name + ".service"
		}
		out = append(out, planner.Template{
			ID:        s.Name,
			Kind:      kind,
			Unit:      unit,
			DependsOn: s.DependsOn,
			RestartOn: s.RestartOn,
			When:      gateFor(s.When),
		})
	}
	return out, nil
}

// gateFor wraps a when expression as a planner gate. Gates see both the
// resolved options and the activation flags.
func gateFor(when hcl.Expression) planner.Gate {
	if when == nil {
		return nil
	}
	return func(cfg *resolver.ResolvedConfig, flags contribution.Flags) (bool, error) {
		ctx := flagContext(when, flags)
		ctx.Variables["option"] = cty.ObjectVal(cfg.Values())
		return evalBool(when, ctx)
	}
}

// serviceKind maps the block's action to a planner kind. Omitted actions
// default to restart when the block watches artifacts and to start
// otherwise.
func serviceKind(s *serviceBlock) (planner.Kind, error) {
	switch s.Action {
	case "":
		if len(s.RestartOn) > 0 {
			return planner.KindRestartService, nil
		}
		return planner.KindStartService, nil
	case "restart":
		return planner.KindRestartService, nil
	case "start":
		return planner.KindStartService, nil
	case "stop":
		return planner.KindStopService, nil
	default:
		return "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"unknown service action", map[string]any{"service": s.Name, "action": s.Action})
	}
}
