package config

import (
	"fmt"
	"github.com/spf13/viper"
	"net/netip"
	"time"
)

type HTTPConfig struct {
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
}

func (config HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", config.Port)
}

func (config HTTPConfig) validate() error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid port: %d", config.Port)
	}
	if config.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	for _, proxy := range config.TrustedProxies {
		if _, err := netip.ParsePrefix(proxy); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(proxy); err != nil {
			return fmt.Errorf("invalid trusted proxy: %q", proxy)
		}
	}
	return nil
}

func (config HTTPConfig) bindEnvironmentVariables(v *viper.Viper) error {
	if err := v.BindEnv("http.port", "PORT"); err != nil {
		return err
	}
	if err := v.BindEnv("http.trusted_proxies", "HTTP_TRUSTED_PROXIES"); err != nil {
		return err
	}
	return v.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")
}
