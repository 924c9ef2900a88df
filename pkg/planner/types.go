/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package planner

import (
	"github.com/hostplan/hostplan/pkg/artifact"
	"github.com/hostplan/hostplan/pkg/bootstrap"
	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/header"
	"github.com/hostplan/hostplan/pkg/resolver"
)

const (
	// APIVersion is the schema version for plan documents.
	APIVersion = "hostplan.dev/v1alpha1"
)

// Kind classifies a plan action.
type Kind string

const (
	// KindWriteArtifact materializes an artifact to its target path.
	KindWriteArtifact Kind = "write"

	// KindStartService ensures a service unit is running.
	KindStartService Kind = "start"

	// KindRestartService restarts a service unit when any of its watched
	// artifacts changed content.
	KindRestartService Kind = "restart"

	// KindStopService stops a service unit.
	KindStopService Kind = "stop"

	// KindBootstrap runs a one-time bootstrap action through the
	// idempotent executor.
	KindBootstrap Kind = "bootstrap"
)

// Gate decides whether an action is included in the plan at all. When the
// gate returns false the node is omitted entirely, along with every edge
// touching it. This is how optional subsystems are included or excluded.
type Gate func(cfg *resolver.ResolvedConfig, flags contribution.Flags) (bool, error)

// Template declares a candidate action before planning: its identity, its
// dependencies, its gate, and — depending on kind — the artifact renderer,
// service unit, or bootstrap hooks it carries.
type Template struct {
	// ID uniquely identifies the action within a plan.
	ID string

	// Kind classifies the action.
	Kind Kind

	// Unit is the service unit name for start/restart/stop actions.
	Unit string

	// Renderer produces the artifact for write actions.
	Renderer artifact.Renderer

	// DependsOn lists predecessor action IDs. Edges to gated-off actions
	// are dropped silently; edges to undeclared actions are an error.
	DependsOn []string

	// When gates the action; nil means always included.
	When Gate

	// RestartOn names artifacts whose content change forces this action to
	// re-execute. Only meaningful for restart actions.
	RestartOn []string

	// Probe and Effect drive bootstrap actions.
	Probe  bootstrap.Probe
	Effect bootstrap.Effect
}

// Action is a planned, ready-to-execute operation.
type Action struct {
	// ID uniquely identifies the action.
	ID string `json:"id" yaml:"id"`

	// Kind classifies the action.
	Kind Kind `json:"kind" yaml:"kind"`

	// Unit is the service unit for service actions.
	Unit string `json:"unit,omitempty" yaml:"unit,omitempty"`

	// Artifact is the rendered artifact for write actions.
	Artifact *artifact.Artifact `json:"artifact,omitempty" yaml:"artifact,omitempty"`

	// DependsOn lists predecessor action IDs surviving gating.
	DependsOn []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`

	// RestartOn names watched artifacts for restart actions.
	RestartOn []string `json:"restartOn,omitempty" yaml:"restartOn,omitempty"`

	// Probe and Effect drive bootstrap actions. Not serialized.
	Probe  bootstrap.Probe  `json:"-" yaml:"-"`
	Effect bootstrap.Effect `json:"-" yaml:"-"`
}

// Plan is a topologically ordered execution plan. It is a pure value: the
// planner never executes anything, so plans can be inspected and tested
// without touching real state.
type Plan struct {
	header.Header `json:",inline" yaml:",inline"`

	// Actions in execution order: every action appears after all of its
	// declared predecessors.
	Actions []*Action `json:"actions" yaml:"actions"`

	dependents map[string][]string
}

// Action returns the planned action with the given ID, or nil.
func (p *Plan) Action(id string) *Action {
	for _, a := range p.Actions {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// Dependents returns the IDs of actions that directly depend on the given
// action, in sorted order.
func (p *Plan) Dependents(id string) []string {
	return p.dependents[id]
}

// Len returns the number of planned actions.
func (p *Plan) Len() int {
	return len(p.Actions)
}
