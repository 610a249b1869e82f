package config

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sentinelgrid/analyzer/pkg/common"
)

// LoadRules reads and validates rules.yaml from configDir. A missing or
// unreadable file is fatal at startup (spec.md §7).
func LoadRules(configDir string) (RulesConfig, error) {
	var cfg RulesConfig
	if err := loadYAML(configDir, "rules.yaml", &cfg); err != nil {
		return RulesConfig{}, err
	}
	if err := validateRules(cfg); err != nil {
		return RulesConfig{}, err
	}
	common.Info("rules config loaded", zap.Int("rule_count", len(cfg.Rules)))
	return cfg, nil
}

// LoadPolicies reads and validates policies.yaml from configDir.
func LoadPolicies(configDir string) (PoliciesConfig, error) {
	var cfg PoliciesConfig
	if err := loadYAML(configDir, "policies.yaml", &cfg); err != nil {
		return PoliciesConfig{}, err
	}
	if err := validatePolicies(cfg); err != nil {
		return PoliciesConfig{}, err
	}
	common.Info("policies config loaded", zap.Int("policy_count", len(cfg.Policies)))
	return cfg, nil
}

// loadYAML reads <configDir>/<file> through viper — grounded on the
// teacher's internal/config/loader.go ConfigLoader.LoadConfig, which reads
// via viper then re-marshals AllSettings back through yaml.v3 into a typed
// struct. The KMS secret-decryption step from the teacher is dropped: this
// system's config never carries secrets (see SPEC_FULL.md §B dropped
// deps), and neither is the teacher's config-version gate, since
// rules.yaml/policies.yaml have no version field in spec.md §6.
func loadYAML(configDir, file string, out interface{}) error {
	path := configDir + "/" + file
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return common.NewErrorFrom("E1001", err, "failed to read configuration file", map[string]interface{}{"path": path})
	}

	raw, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return common.WrapError(err, "failed to re-marshal configuration", map[string]interface{}{"path": path})
	}

	if err := yaml.Unmarshal(raw, out); err != nil {
		return common.WrapError(err, "failed to unmarshal configuration", map[string]interface{}{"path": path})
	}
	return nil
}
