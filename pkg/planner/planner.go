/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package planner

import (
	"log/slog"
	"sort"

	"github.com/hostplan/hostplan/pkg/artifact"
	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/header"
	"github.com/hostplan/hostplan/pkg/resolver"
)

// Build maps resolved configuration and action templates to a topologically
// ordered execution plan.
//
// Gated-off templates are omitted entirely; dependency edges pointing at
// omitted actions are dropped, edges pointing at undeclared actions are an
// error. Restart actions gain implicit edges on the write actions of the
// artifacts they watch. A dependency cycle fails with CYCLIC_DEPENDENCY
// naming the cycle.
func Build(cfg *resolver.ResolvedConfig, flags contribution.Flags, templates []Template) (*Plan, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "resolved config cannot be nil")
	}
	if err := checkTemplates(templates); err != nil {
		return nil, err
	}

	actions, err := gateAndRender(cfg, flags, templates)
	if err != nil {
		return nil, err
	}

	if err := linkRestartTriggers(actions); err != nil {
		return nil, err
	}

	if err := pruneEdges(actions, templates); err != nil {
		return nil, err
	}

	ordered, err := sortTopologically(actions)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Actions:    ordered,
		dependents: dependentsIndex(ordered),
	}
	plan.Init(header.KindPlan, APIVersion, "")

	slog.Debug("plan built",
		"templates", len(templates),
		"actions", len(ordered))
	return plan, nil
}

func checkTemplates(templates []Template) error {
	seen := make(map[string]bool, len(templates))
	for _, t := range templates {
		if t.ID == "" {
			return errors.New(errors.ErrCodeInvalidRequest, "action template without an ID")
		}
		if seen[t.ID] {
			return errors.Newf(errors.ErrCodeInvalidRequest, "duplicate action template %q", t.ID)
		}
		seen[t.ID] = true

		switch t.Kind {
		case KindWriteArtifact:
			if t.Renderer == nil {
				return errors.Newf(errors.ErrCodeInvalidRequest, "write action %q has no renderer", t.ID)
			}
		case KindStartService, KindRestartService, KindStopService:
			if t.Unit == "" {
				return errors.Newf(errors.ErrCodeInvalidRequest, "service action %q has no unit", t.ID)
			}
		case KindBootstrap:
			if t.Effect == nil {
				return errors.Newf(errors.ErrCodeInvalidRequest, "bootstrap action %q has no effect", t.ID)
			}
		default:
			return errors.Newf(errors.ErrCodeInvalidRequest, "action %q has unknown kind %q", t.ID, t.Kind)
		}
	}
	return nil
}

// gateAndRender evaluates gates and renders artifacts for the surviving
// write actions. Rendering happens at plan time so a renderer failure
// aborts before any side effect.
func gateAndRender(cfg *resolver.ResolvedConfig, flags contribution.Flags, templates []Template) (map[string]*Action, error) {
	actions := make(map[string]*Action, len(templates))

	for _, t := range templates {
		if t.When != nil {
			ok, err := t.When(cfg, flags)
			if err != nil {
				return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
					"action gate evaluation failed", err, map[string]any{"action": t.ID})
			}
			if !ok {
				slog.Debug("action gated off", "action", t.ID)
				continue
			}
		}

		a := &Action{
			ID:        t.ID,
			Kind:      t.Kind,
			Unit:      t.Unit,
			DependsOn: append([]string(nil), t.DependsOn...),
			RestartOn: append([]string(nil), t.RestartOn...),
			Probe:     t.Probe,
			Effect:    t.Effect,
		}

		if t.Kind == KindWriteArtifact {
			rendered, err := artifact.Render(cfg, t.ID, t.Renderer)
			if err != nil {
				return nil, err
			}
			a.Artifact = rendered
		}

		actions[t.ID] = a
	}
	return actions, nil
}

// linkRestartTriggers adds the implicit edge from each watched artifact's
// write action to the restart action watching it, so a restart always runs
// after the content it depends on is materialized.
func linkRestartTriggers(actions map[string]*Action) error {
	byArtifact := make(map[string]string)
	for id, a := range actions {
		if a.Artifact != nil {
			byArtifact[a.Artifact.Name] = id
		}
	}

	for _, a := range actions {
		for _, name := range a.RestartOn {
			writerID, ok := byArtifact[name]
			if !ok {
				return errors.NewWithContext(errors.ErrCodeInvalidRequest,
					"restart trigger references unknown artifact",
					map[string]any{"action": a.ID, "artifact": name})
			}
			if !contains(a.DependsOn, writerID) {
				a.DependsOn = append(a.DependsOn, writerID)
			}
		}
	}
	return nil
}

// pruneEdges drops dependencies on gated-off actions and rejects
// dependencies on actions no template ever declared.
func pruneEdges(actions map[string]*Action, templates []Template) error {
	declared := make(map[string]bool, len(templates))
	for _, t := range templates {
		declared[t.ID] = true
	}

	for _, a := range actions {
		kept := a.DependsOn[:0]
		for _, dep := range a.DependsOn {
			if dep == a.ID {
				return errors.Newf(errors.ErrCodeInvalidRequest, "action %q depends on itself", a.ID)
			}
			if _, present := actions[dep]; present {
				kept = append(kept, dep)
				continue
			}
			if !declared[dep] {
				return errors.NewWithContext(errors.ErrCodeInvalidRequest,
					"dependency on undeclared action",
					map[string]any{"action": a.ID, "dependsOn": dep})
			}
			// Declared but gated off: the edge disappears with the node.
		}
		a.DependsOn = kept
		sort.Strings(a.DependsOn)
	}
	return nil
}

func dependentsIndex(actions []*Action) map[string][]string {
	idx := make(map[string][]string)
	for _, a := range actions {
		for _, dep := range a.DependsOn {
			idx[dep] = append(idx[dep], a.ID)
		}
	}
	for _, ids := range idx {
		sort.Strings(ids)
	}
	return idx
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
