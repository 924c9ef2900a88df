/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/hostplan/hostplan/pkg/contribution"
	"github.com/hostplan/hostplan/pkg/errors"
	"github.com/hostplan/hostplan/pkg/executor"
	"github.com/hostplan/hostplan/pkg/header"
	"github.com/hostplan/hostplan/pkg/planner"
	"github.com/hostplan/hostplan/pkg/profile"
)

type fakeServices struct {
	mu  sync.Mutex
	ops []string
}

func (f *fakeServices) record(kind, unit string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, kind+" "+unit)
	return nil
}

func (f *fakeServices) StartUnit(_ context.Context, unit string) error {
	return f.record("start", unit)
}

func (f *fakeServices) RestartUnit(_ context.Context, unit string) error {
	return f.record("restart", unit)
}

func (f *fakeServices) StopUnit(_ context.Context, unit string) error {
	return f.record("stop", unit)
}

func (f *fakeServices) Close() error { return nil }

func (f *fakeServices) operations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

const profileTemplate = `
option "dns.enable" {
  type    = bool
  default = false
}

option "dns.listen" {
  type    = string
  default = "127.0.0.1"
}

set "dns.enable" {
  value = true
  when  = flag.dns
}

assert "listen_not_empty" {
  condition = option["dns.listen"] != ""
  message   = "dns.listen must not be empty"
}

file "dnsmasq_conf" {
  path    = %q
  content = "listen-address=${option["dns.listen"]}\n"
  when    = option["dns.enable"]
}

service "dnsmasq" {
  restart_on = ["dnsmasq_conf"]
  when       = option["dns.enable"]
}
`

func loadTestProfile(t *testing.T, artifactPath string) *profile.Profile {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(profileTemplate, artifactPath)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dns.hcl"), []byte(content), 0o644))

	p, err := profile.Load(dir)
	require.NoError(t, err)
	return p
}

func TestApplyFullPass(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dnsmasq.conf")
	p := loadTestProfile(t, target)

	svc := &fakeServices{}
	eng := New(p,
		WithFlags(contribution.Flags{"dns": cty.True}),
		WithStatePath(filepath.Join(t.TempDir(), "state.yaml")),
		WithServiceManager(svc),
	)

	result, err := eng.Apply(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.Completed)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "listen-address=127.0.0.1\n", string(data))
	assert.Equal(t, []string{"restart dnsmasq.service"}, svc.operations())

	// The second pass converges to a no-op.
	result, err = eng.Apply(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Summary.Completed)
	assert.Equal(t, 2, result.Summary.Unchanged)
	assert.Equal(t, []string{"restart dnsmasq.service"}, svc.operations())
}

func TestApplyGatedOffIsEmpty(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dnsmasq.conf")
	p := loadTestProfile(t, target)

	eng := New(p,
		WithStatePath(filepath.Join(t.TempDir(), "state.yaml")),
		WithServiceManager(&fakeServices{}),
	)

	result, err := eng.Apply(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Summary.Total)

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestApplyOverrideBeatsProfile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dnsmasq.conf")
	p := loadTestProfile(t, target)

	eng := New(p,
		WithFlags(contribution.Flags{"dns": cty.True}),
		WithOverrides([]string{"dns.listen=0.0.0.0"}),
		WithStatePath(filepath.Join(t.TempDir(), "state.yaml")),
		WithServiceManager(&fakeServices{}),
	)

	_, err := eng.Apply(t.Context())
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "listen-address=0.0.0.0\n", string(data))
}

func TestValidateFailureAbortsBeforePlanning(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dnsmasq.conf")
	p := loadTestProfile(t, target)

	eng := New(p,
		WithFlags(contribution.Flags{"dns": cty.True}),
		WithOverrides([]string{"dns.listen="}),
		WithStatePath(filepath.Join(t.TempDir(), "state.yaml")),
		WithServiceManager(&fakeServices{}),
	)

	_, err := eng.Apply(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation), "got %v", err)

	// Zero side effects on a pre-plan failure.
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPlanDoesNotExecute(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dnsmasq.conf")
	p := loadTestProfile(t, target)

	eng := New(p, WithFlags(contribution.Flags{"dns": cty.True}))
	plan, err := eng.Plan(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Len())
	assert.Equal(t, header.KindPlan, plan.Kind)

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestApplyRunsBootstrapTemplates(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dnsmasq.conf")
	p := loadTestProfile(t, target)

	var effectRuns int
	eng := New(p,
		WithStatePath(filepath.Join(t.TempDir(), "state.yaml")),
		WithServiceManager(&fakeServices{}),
		WithTemplates(planner.Template{
			ID:   "init_store",
			Kind: planner.KindBootstrap,
			Effect: func(context.Context) error {
				effectRuns++
				return nil
			},
		}),
	)

	_, err := eng.Apply(t.Context())
	require.NoError(t, err)
	_, err = eng.Apply(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, effectRuns)
}

func TestDescribe(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dnsmasq.conf")
	p := loadTestProfile(t, target)

	eng := New(p, WithFlags(contribution.Flags{"dns": cty.True}))
	doc, err := eng.Describe(t.Context())
	require.NoError(t, err)

	require.Len(t, doc.Options, 2)
	assert.Equal(t, header.KindResolvedConfig, doc.Kind)

	byName := make(map[string]OptionEntry)
	for _, o := range doc.Options {
		byName[o.Slot] = o
	}
	assert.Equal(t, true, byName["dns.enable"].Value)
	assert.False(t, byName["dns.enable"].Defaulted)
	assert.True(t, byName["dns.listen"].Defaulted)

	rows := doc.TableRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "dns.enable", rows[0][0])
}

func TestApplyDryRun(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dnsmasq.conf")
	p := loadTestProfile(t, target)

	svc := &fakeServices{}
	eng := New(p,
		WithFlags(contribution.Flags{"dns": cty.True}),
		WithStatePath(filepath.Join(t.TempDir(), "state.yaml")),
		WithServiceManager(svc),
		WithExecutorOptions(executor.WithDryRun(true)),
	)

	result, err := eng.Apply(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.Completed)

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, svc.operations())
}
