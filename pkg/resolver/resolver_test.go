/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/registry"
)

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	require.NoError(t, r.Declare("database.host", registry.String, cty.StringVal("localhost"), "database host"))
	require.NoError(t, r.Declare("database.port", registry.Number, cty.NumberIntVal(5432), "database port"))
	require.NoError(t, r.Declare("mail.enable", registry.Bool, cty.False, "enable mail service"))
	require.NoError(t, r.Declare("plugins", registry.StringList, cty.ListValEmpty(cty.String), "plugin list"))
	require.NoError(t, r.Declare("mail.domains", registry.StringMap, cty.MapValEmpty(cty.String), "domain routing"))
	return r
}

func list(items ...string) cty.Value {
	if len(items) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(items))
	for i, s := range items {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}

func TestResolveDefaults(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)
	reg.Freeze()

	cfg, err := Resolve(t.Context(), reg, col, nil)
	require.NoError(t, err)

	// Every slot with no surviving contribution resolves to its default.
	assert.Equal(t, "localhost", cfg.String("database.host"))
	assert.Equal(t, int64(5432), cfg.Int("database.port"))
	assert.False(t, cfg.Bool("mail.enable"))
	assert.Empty(t, cfg.StringList("plugins"))

	p, ok := cfg.Provenance("database.host")
	require.True(t, ok)
	assert.True(t, p.Defaulted)
}

func TestResolveUnfrozenRegistry(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)

	_, err := Resolve(t.Context(), reg, col, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest), "got %v", err)
}

func TestResolveExplicitBeatsDefault(t *testing.T) {
	// An explicit value beats a default: "localhost" vs "db.internal".
	// Declaration order must not matter.
	orders := map[string][]struct {
		value string
		pri   contribution.Priority
	}{
		"default first":  {{"localhost", contribution.PriorityDefault}, {"db.internal", contribution.PriorityExplicit}},
		"explicit first": {{"db.internal", contribution.PriorityExplicit}, {"localhost", contribution.PriorityDefault}},
	}

	for name, contribs := range orders {
		t.Run(name, func(t *testing.T) {
			reg := newRegistry(t)
			col := contribution.NewCollector(reg)
			for i, c := range contribs {
				require.NoError(t, col.Propose("database.host", cty.StringVal(c.value), c.pri, nil, []string{"site-a", "site-b"}[i]))
			}
			reg.Freeze()

			cfg, err := Resolve(t.Context(), reg, col, nil)
			require.NoError(t, err)
			assert.Equal(t, "db.internal", cfg.String("database.host"))

			p, _ := cfg.Provenance("database.host")
			assert.Equal(t, contribution.PriorityExplicit, p.Priority)
		})
	}
}

func TestResolveForcedBeatsExplicit(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)
	require.NoError(t, col.Propose("database.host", cty.StringVal("db.internal"), contribution.PriorityExplicit, nil, "site-a"))
	require.NoError(t, col.Propose("database.host", cty.StringVal("db.override"), contribution.PriorityForced, nil, "cli"))
	reg.Freeze()

	cfg, err := Resolve(t.Context(), reg, col, nil)
	require.NoError(t, err)
	assert.Equal(t, "db.override", cfg.String("database.host"))
}

func TestResolveScalarConflict(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)
	require.NoError(t, col.Propose("database.host", cty.StringVal("a.example"), contribution.PriorityExplicit, nil, "site-a"))
	require.NoError(t, col.Propose("database.host", cty.StringVal("b.example"), contribution.PriorityExplicit, nil, "site-b"))
	reg.Freeze()

	_, err := Resolve(t.Context(), reg, col, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConflict), "got %v", err)

	var se *errors.StructuredError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "database.host", se.Context["slot"])
	assert.ElementsMatch(t, []string{"site-a", "site-b"}, se.Context["sources"])
}

func TestResolveIdenticalScalarsAgree(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)
	require.NoError(t, col.Propose("database.host", cty.StringVal("same"), contribution.PriorityExplicit, nil, "site-a"))
	require.NoError(t, col.Propose("database.host", cty.StringVal("same"), contribution.PriorityExplicit, nil, "site-b"))
	reg.Freeze()

	cfg, err := Resolve(t.Context(), reg, col, nil)
	require.NoError(t, err)
	assert.Equal(t, "same", cfg.String("database.host"))
}

func TestResolveListConcatenation(t *testing.T) {
	// Two same-priority list contributions concatenate, never conflict.
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)
	require.NoError(t, col.Propose("plugins", list("a"), contribution.PriorityExplicit, nil, "site-a"))
	require.NoError(t, col.Propose("plugins", list("b"), contribution.PriorityExplicit, nil, "site-b"))
	reg.Freeze()

	cfg, err := Resolve(t.Context(), reg, col, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cfg.StringList("plugins"))

	p, _ := cfg.Provenance("plugins")
	assert.True(t, p.Merged)
}

func TestResolveListHigherPriorityReplaces(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)
	require.NoError(t, col.Propose("plugins", list("a", "b"), contribution.PriorityExplicit, nil, "site-a"))
	require.NoError(t, col.Propose("plugins", list("only"), contribution.PriorityForced, nil, "cli"))
	reg.Freeze()

	cfg, err := Resolve(t.Context(), reg, col, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, cfg.StringList("plugins"))
}

func TestResolveRecordMerge(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)
	require.NoError(t, col.Propose("mail.domains",
		cty.MapVal(map[string]cty.Value{"example.org": cty.StringVal("primary")}),
		contribution.PriorityExplicit, nil, "site-a"))
	require.NoError(t, col.Propose("mail.domains",
		cty.MapVal(map[string]cty.Value{"example.net": cty.StringVal("alias")}),
		contribution.PriorityExplicit, nil, "site-b"))
	reg.Freeze()

	cfg, err := Resolve(t.Context(), reg, col, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"example.org": "primary",
		"example.net": "alias",
	}, cfg.StringMap("mail.domains"))
}

func TestResolveRecordDuplicateKey(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)
	require.NoError(t, col.Propose("mail.domains",
		cty.MapVal(map[string]cty.Value{"example.org": cty.StringVal("primary")}),
		contribution.PriorityExplicit, nil, "site-a"))
	require.NoError(t, col.Propose("mail.domains",
		cty.MapVal(map[string]cty.Value{"example.org": cty.StringVal("alias")}),
		contribution.PriorityExplicit, nil, "site-b"))
	reg.Freeze()

	_, err := Resolve(t.Context(), reg, col, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDuplicateKey), "got %v", err)

	var se *errors.StructuredError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "example.org", se.Context["key"])
}

func TestResolveRecordSameKeySameValue(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)
	require.NoError(t, col.Propose("mail.domains",
		cty.MapVal(map[string]cty.Value{"example.org": cty.StringVal("primary")}),
		contribution.PriorityExplicit, nil, "site-a"))
	require.NoError(t, col.Propose("mail.domains",
		cty.MapVal(map[string]cty.Value{"example.org": cty.StringVal("primary"), "example.net": cty.StringVal("alias")}),
		contribution.PriorityExplicit, nil, "site-b"))
	reg.Freeze()

	cfg, err := Resolve(t.Context(), reg, col, nil)
	require.NoError(t, err)
	assert.Len(t, cfg.StringMap("mail.domains"), 2)
}

func TestResolveConditionFiltering(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)

	whenUnprivileged := func(flags contribution.Flags) (bool, error) {
		return flags.Bool("unprivileged"), nil
	}
	require.NoError(t, col.Propose("database.host", cty.StringVal("user.socket"), contribution.PriorityExplicit, whenUnprivileged, "site-a"))
	reg.Freeze()

	// Condition false: contribution discarded, default wins.
	cfg, err := Resolve(t.Context(), reg, col, contribution.Flags{})
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.String("database.host"))

	// Condition true: contribution survives.
	cfg, err = Resolve(t.Context(), reg, col, contribution.Flags{"unprivileged": cty.True})
	require.NoError(t, err)
	assert.Equal(t, "user.socket", cfg.String("database.host"))
}

func TestResolveConditionError(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)
	broken := func(contribution.Flags) (bool, error) {
		return false, assert.AnError
	}
	require.NoError(t, col.Propose("database.host", cty.StringVal("x"), contribution.PriorityExplicit, broken, "site-a"))
	reg.Freeze()

	_, err := Resolve(t.Context(), reg, col, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidRequest), "got %v", err)
}

func TestExport(t *testing.T) {
	reg := newRegistry(t)
	col := contribution.NewCollector(reg)
	require.NoError(t, col.Propose("plugins", list("a", "b"), contribution.PriorityExplicit, nil, "site-a"))
	reg.Freeze()

	cfg, err := Resolve(t.Context(), reg, col, nil)
	require.NoError(t, err)

	exported := cfg.Export()
	assert.Equal(t, "localhost", exported["database.host"])
	assert.Equal(t, int64(5432), exported["database.port"])
	assert.Equal(t, false, exported["mail.enable"])
	assert.Equal(t, []any{"a", "b"}, exported["plugins"])
}
