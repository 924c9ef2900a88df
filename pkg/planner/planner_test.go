/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/hostplan/hostplan/pkg/artifact"
	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/registry"
	"github.com/hostplan/hostplan/pkg/resolver"
)

func testConfig(t *testing.T) *resolver.ResolvedConfig {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Declare("bridge.enable", registry.Bool, cty.False, ""))
	require.NoError(t, reg.Declare("app.listen", registry.String, cty.StringVal(":8080"), ""))
	reg.Freeze()

	cfg, err := resolver.Resolve(t.Context(), reg, contribution.NewCollector(reg), nil)
	require.NoError(t, err)
	return cfg
}

func staticRenderer(path, content string) artifact.Renderer {
	return func(*resolver.ResolvedConfig) (*artifact.Artifact, error) {
		return &artifact.Artifact{Path: path, Content: []byte(content)}, nil
	}
}

func orderOf(p *Plan) map[string]int {
	idx := make(map[string]int, len(p.Actions))
	for i, a := range p.Actions {
		idx[a.ID] = i
	}
	return idx
}

func TestBuildOrdersDependencies(t *testing.T) {
	cfg := testConfig(t)

	plan, err := Build(cfg, nil, []Template{
		{ID: "restart_app", Kind: KindRestartService, Unit: "app.service", RestartOn: []string{"app_conf"}},
		{ID: "app_conf", Kind: KindWriteArtifact, Renderer: staticRenderer("/etc/app.conf", "listen = :8080\n")},
		{ID: "start_db", Kind: KindStartService, Unit: "db.service"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, plan.Len())

	// An action never precedes one of its declared predecessors.
	idx := orderOf(plan)
	assert.Less(t, idx["app_conf"], idx["restart_app"], "restart must follow the artifact write")

	// The restart action gained the implicit edge on the write action.
	restart := plan.Action("restart_app")
	require.NotNil(t, restart)
	assert.Contains(t, restart.DependsOn, "app_conf")

	// The write action was rendered at plan time.
	write := plan.Action("app_conf")
	require.NotNil(t, write)
	require.NotNil(t, write.Artifact)
	assert.Equal(t, "/etc/app.conf", write.Artifact.Path)
}

func TestBuildDeterministicOrder(t *testing.T) {
	cfg := testConfig(t)
	templates := []Template{
		{ID: "c", Kind: KindStartService, Unit: "c.service"},
		{ID: "a", Kind: KindStartService, Unit: "a.service"},
		{ID: "b", Kind: KindStartService, Unit: "b.service"},
	}

	first, err := Build(cfg, nil, templates)
	require.NoError(t, err)

	// Independent actions order lexicographically, every time.
	ids := make([]string, 0, first.Len())
	for _, a := range first.Actions {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestBuildCycle(t *testing.T) {
	cfg := testConfig(t)

	_, err := Build(cfg, nil, []Template{
		{ID: "a", Kind: KindStartService, Unit: "a.service", DependsOn: []string{"b"}},
		{ID: "b", Kind: KindStartService, Unit: "b.service", DependsOn: []string{"a"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCyclicDependency), "got %v", err)

	var se *errors.StructuredError
	require.ErrorAs(t, err, &se)
	cycle, ok := se.Context["cycle"].([]string)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(cycle), 3, "cycle should name the full path, got %v", cycle)
}

func TestBuildGatingOmitsSubsystem(t *testing.T) {
	cfg := testConfig(t)

	bridgeEnabled := func(cfg *resolver.ResolvedConfig, _ contribution.Flags) (bool, error) {
		return cfg.Bool("bridge.enable"), nil
	}

	templates := []Template{
		{ID: "start_bridge", Kind: KindStartService, Unit: "bridge.service", When: bridgeEnabled},
		{ID: "start_app", Kind: KindStartService, Unit: "app.service", DependsOn: []string{"start_bridge"}},
	}

	// bridge.enable defaults to false: the bridge node disappears and the
	// dependent's edge is dropped with it.
	plan, err := Build(cfg, nil, templates)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Len())
	assert.Nil(t, plan.Action("start_bridge"))
	assert.Empty(t, plan.Action("start_app").DependsOn)
}

func TestBuildGateSeesFlags(t *testing.T) {
	cfg := testConfig(t)

	unprivileged := func(_ *resolver.ResolvedConfig, flags contribution.Flags) (bool, error) {
		return flags.Bool("unprivileged"), nil
	}
	templates := []Template{
		{ID: "start_userbridge", Kind: KindStartService, Unit: "userbridge.service", When: unprivileged},
	}

	plan, err := Build(cfg, nil, templates)
	require.NoError(t, err)
	assert.Equal(t, 0, plan.Len())

	plan, err = Build(cfg, contribution.Flags{"unprivileged": cty.True}, templates)
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Len())
}

func TestBuildUndeclaredDependency(t *testing.T) {
	cfg := testConfig(t)

	_, err := Build(cfg, nil, []Template{
		{ID: "a", Kind: KindStartService, Unit: "a.service", DependsOn: []string{"ghost"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest), "got %v", err)
}

func TestBuildUnknownRestartArtifact(t *testing.T) {
	cfg := testConfig(t)

	_, err := Build(cfg, nil, []Template{
		{ID: "restart_app", Kind: KindRestartService, Unit: "app.service", RestartOn: []string{"ghost_conf"}},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest), "got %v", err)
}

func TestBuildRendererFailureAborts(t *testing.T) {
	cfg := testConfig(t)

	_, err := Build(cfg, nil, []Template{
		{ID: "bad_conf", Kind: KindWriteArtifact, Renderer: func(*resolver.ResolvedConfig) (*artifact.Artifact, error) {
			return nil, assert.AnError
		}},
	})
	require.Error(t, err)
}

func TestBuildDuplicateTemplate(t *testing.T) {
	cfg := testConfig(t)

	_, err := Build(cfg, nil, []Template{
		{ID: "a", Kind: KindStartService, Unit: "a.service"},
		{ID: "a", Kind: KindStartService, Unit: "a.service"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest), "got %v", err)
}

func TestDependents(t *testing.T) {
	cfg := testConfig(t)

	plan, err := Build(cfg, nil, []Template{
		{ID: "conf", Kind: KindWriteArtifact, Renderer: staticRenderer("/etc/a.conf", "x")},
		{ID: "restart_a", Kind: KindRestartService, Unit: "a.service", RestartOn: []string{"conf"}},
		{ID: "restart_b", Kind: KindRestartService, Unit: "b.service", RestartOn: []string{"conf"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"restart_a", "restart_b"}, plan.Dependents("conf"))
}
