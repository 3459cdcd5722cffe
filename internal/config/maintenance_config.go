package config

import (
	"fmt"
	"github.com/spf13/viper"
	"strings"
	"time"
)

type MaintenanceConfig struct {
	// ExemptPrefixes is a comma-separated list of path prefixes that bypass the gate.
	ExemptPrefixes string        `mapstructure:"exempt_prefixes"`
	RedirectPath   string        `mapstructure:"redirect_path"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

func (config MaintenanceConfig) Prefixes() []string {
	var prefixes []string
	for _, part := range strings.Split(config.ExemptPrefixes, ",") {
		if part = strings.TrimSpace(part); part != "" {
			prefixes = append(prefixes, part)
		}
	}
	return prefixes
}

func (config MaintenanceConfig) validate() error {
	if !strings.HasPrefix(config.RedirectPath, "/") || strings.ContainsAny(config.RedirectPath, " {}") {
		return fmt.Errorf("invalid redirect_path: %q", config.RedirectPath)
	}
	return nil
}

func (config MaintenanceConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("maintenance.exempt_prefixes", "MAINTENANCE_EXEMPT_PREFIXES")
}
