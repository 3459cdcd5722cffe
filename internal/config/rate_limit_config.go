package config

import "github.com/spf13/viper"

type RateLimitConfig struct {
	ApplicationsPerMinute int    `mapstructure:"applications_per_minute"`
	RedisAddr             string `mapstructure:"redis_addr"`
}

func (config RateLimitConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("rate_limit.redis_addr", "REDIS_ADDR")
}

type SchedulerConfig struct {
	CycleSweepSpec string `mapstructure:"cycle_sweep_spec"`
}
