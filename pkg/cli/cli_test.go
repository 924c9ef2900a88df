/*
Copyright © 2025 Hostplan Authors
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestProfile(t *testing.T, artifactPath string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`
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
`, artifactPath)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dns.hcl"), []byte(content), 0o644))
	return dir
}

func TestOptionsCommand(t *testing.T) {
	profiles := writeTestProfile(t, filepath.Join(t.TempDir(), "dnsmasq.conf"))
	out := filepath.Join(t.TempDir(), "options.json")

	err := optionsCmd().Run(t.Context(), []string{
		"options", "--profile", profiles, "--flag", "dns", "--format", "json", "--output", out,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc struct {
		Kind    string `json:"kind"`
		Options []struct {
			Slot  string `json:"slot"`
			Value any    `json:"value"`
		} `json:"options"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "ResolvedConfig", doc.Kind)
	require.Len(t, doc.Options, 2)
	assert.Equal(t, "dns.enable", doc.Options[0].Slot)
	assert.Equal(t, true, doc.Options[0].Value)
}

func TestPlanCommand(t *testing.T) {
	profiles := writeTestProfile(t, filepath.Join(t.TempDir(), "dnsmasq.conf"))
	out := filepath.Join(t.TempDir(), "plan.json")

	err := planCmd().Run(t.Context(), []string{
		"plan", "--profile", profiles, "--flag", "dns", "--format", "json", "--output", out,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc struct {
		Kind    string `json:"kind"`
		Actions []struct {
			ID   string `json:"id"`
			Kind string `json:"kind"`
		} `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Plan", doc.Kind)
	require.Len(t, doc.Actions, 2)
	assert.Equal(t, "dnsmasq_conf", doc.Actions[0].ID)
	assert.Equal(t, "dnsmasq", doc.Actions[1].ID)
}

func TestValidateCommandFails(t *testing.T) {
	profiles := writeTestProfile(t, filepath.Join(t.TempDir(), "dnsmasq.conf"))
	out := filepath.Join(t.TempDir(), "result.yaml")

	err := validateCmd().Run(t.Context(), []string{
		"validate", "--profile", profiles, "--set", "dns.listen=", "--output", out,
	})
	require.Error(t, err)

	// The result document is still written for inspection.
	raw, readErr := os.ReadFile(out)
	require.NoError(t, readErr)
	assert.Contains(t, string(raw), "dns.listen must not be empty")
}

func TestApplyCommandDryRun(t *testing.T) {
	target := filepath.Join(t.TempDir(), "dnsmasq.conf")
	profiles := writeTestProfile(t, target)
	out := filepath.Join(t.TempDir(), "result.yaml")

	err := applyCmd().Run(t.Context(), []string{
		"apply", "--profile", profiles, "--flag", "dns", "--dry-run",
		"--state", filepath.Join(t.TempDir(), "state.yaml"), "--output", out,
	})
	require.NoError(t, err)

	// Dry run leaves the host untouched.
	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ExecutionResult")
}

func TestCommandRejectsUnknownFormat(t *testing.T) {
	profiles := writeTestProfile(t, filepath.Join(t.TempDir(), "dnsmasq.conf"))

	err := optionsCmd().Run(t.Context(), []string{
		"options", "--profile", profiles, "--format", "xml",
	})
	require.Error(t, err)
}
