package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinelgrid/analyzer/internal/config"
	"github.com/sentinelgrid/analyzer/pkg/common"
)

func TestResolveDefaultsMissingMultipliersToOne(t *testing.T) {
	threshold := 1.2
	mods := config.PolicyModifiers{ThresholdMultiplier: &threshold}
	resolved := mods.Resolve()

	assert.Equal(t, 1.2, resolved.ThresholdMultiplier)
	assert.Equal(t, 1.0, resolved.WindowMultiplier)
	assert.Equal(t, 1.0, resolved.MTTDMultiplier)
	assert.Equal(t, 1.0, resolved.MTTRMultiplier)
	assert.Equal(t, 1.0, resolved.ImpactMultiplier)
}

func TestNeutralModifiersAreAllOne(t *testing.T) {
	n := config.NeutralModifiers()
	assert.Equal(t, config.ResolvedModifiers{1.0, 1.0, 1.0, 1.0, 1.0}, n)
}

func writeRulesYAML(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadRulesRejectsUnknownFamilyPrefix(t *testing.T) {
	dir := writeRulesYAML(t, `
rules:
  - id: RULE-MYSTERY-001
    threat_type: credential_attack
    enabled: true
    window_sec: 60
    threshold: 5
    confidence: 0.8
`)
	_, err := config.LoadRules(dir)
	require.Error(t, err)
	assert.True(t, common.IsCode(err, "E1002"))
}

func TestRuleThresholdMustBeAtLeastOne(t *testing.T) {
	dir := writeRulesYAML(t, `
rules:
  - id: RULE-BF-001
    threat_type: credential_attack
    enabled: true
    window_sec: 60
    threshold: 0
    confidence: 0.8
`)
	_, err := config.LoadRules(dir)
	require.Error(t, err)
	assert.True(t, common.IsCode(err, "E1002"))
}

func TestRuleWindowSecMustBeNonNegative(t *testing.T) {
	dir := writeRulesYAML(t, `
rules:
  - id: RULE-BF-001
    threat_type: credential_attack
    enabled: true
    window_sec: -1
    threshold: 5
    confidence: 0.8
`)
	_, err := config.LoadRules(dir)
	require.Error(t, err)
	assert.True(t, common.IsCode(err, "E1002"))
}

func TestDuplicateRuleIDsRejected(t *testing.T) {
	dir := writeRulesYAML(t, `
rules:
  - id: RULE-BF-001
    threat_type: credential_attack
    enabled: true
    window_sec: 60
    threshold: 5
    confidence: 0.8
  - id: RULE-BF-001
    threat_type: credential_attack
    enabled: true
    window_sec: 60
    threshold: 5
    confidence: 0.8
`)
	_, err := config.LoadRules(dir)
	require.Error(t, err)
	assert.True(t, common.IsCode(err, "E1002"))
}

func TestLoadRulesAcceptsWellFormedConfig(t *testing.T) {
	dir := writeRulesYAML(t, `
rules:
  - id: RULE-BF-001
    name: "Repeated authentication failures"
    threat_type: credential_attack
    enabled: true
    match:
      event: auth_failure
      group_by: [ip, source]
    window_sec: 60
    threshold: 5
    severity: high
    confidence: 0.85
`)
	cfg, err := config.LoadRules(dir)
	require.NoError(t, err)
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, "RULE-BF-001", cfg.Rules[0].ID)
	assert.Equal(t, []string{"ip", "source"}, cfg.Rules[0].Match.GroupBy)
}

func writePoliciesYAML(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "policies.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadPoliciesRejectsNonPositiveMultiplier(t *testing.T) {
	dir := writePoliciesYAML(t, `
policies:
  minimal:
    controls:
      mfa:
        enabled: false
    modifiers:
      credential_attack:
        mttd_multiplier: 0
`)
	_, err := config.LoadPolicies(dir)
	require.Error(t, err)
	assert.True(t, common.IsCode(err, "E1002"))
}

func TestLoadPoliciesAcceptsWellFormedConfig(t *testing.T) {
	dir := writePoliciesYAML(t, `
policies:
  standard:
    controls:
      mfa:
        enabled: true
    modifiers:
      credential_attack:
        mttd_multiplier: 0.5
`)
	cfg, err := config.LoadPolicies(dir)
	require.NoError(t, err)
	require.Contains(t, cfg.Policies, "standard")
	assert.True(t, cfg.Policies["standard"].Controls["mfa"].Enabled)
}
