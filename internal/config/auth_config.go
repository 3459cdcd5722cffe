package config

import (
	"fmt"
	"github.com/spf13/viper"
)

type AuthConfig struct {
	JWTSecret     string   `mapstructure:"jwt_secret"`
	SessionCookie string   `mapstructure:"session_cookie"`
	AdminEmails   []string `mapstructure:"admin_emails"`
}

func (config AuthConfig) validate() error {
	if config.JWTSecret == "" {
		return fmt.Errorf("missing variable: jwt_secret")
	}
	return nil
}

func (config AuthConfig) bindEnvironmentVariables(v *viper.Viper) error {
	if err := v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET"); err != nil {
		return err
	}
	return v.BindEnv("auth.admin_emails", "AUTH_ADMIN_EMAILS")
}
