package config

import (
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	DB          DBConfig          `mapstructure:"db"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Uploads     UploadsConfig     `mapstructure:"uploads"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
}

var configFile = "./configs/config.yaml"

func Get() *Config {

	file := configFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		file = value
	}

	config, err := loadConfig(file)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(file)
	v.AutomaticEnv()

	setDefaults(v)

	err := bindEnvironmentVariables(v)
	if err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	err = config.validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.request_timeout", "60s")
	v.SetDefault("http.read_timeout", "60s")
	v.SetDefault("http.write_timeout", "120s")
	v.SetDefault("http.max_body_bytes", 1<<20)
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("auth.session_cookie", "portal_session")
	v.SetDefault("maintenance.redirect_path", "/maintenance")
	v.SetDefault("maintenance.cache_ttl", "5s")
	v.SetDefault("uploads.dir", "./uploads")
	v.SetDefault("uploads.max_bytes", 20<<20)
	v.SetDefault("rate_limit.applications_per_minute", 5)
	v.SetDefault("scheduler.cycle_sweep_spec", "*/5 * * * *")
	v.SetDefault("logger.log_level", LevelInfo)
	v.SetDefault("logger.output_file", "./logs/portal.log")
	v.SetDefault("logger.app_name", "club-portal")
}

func bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	httpCfg, db, auth, maintenance, rateLimit, logger :=
		HTTPConfig{}, DBConfig{}, AuthConfig{}, MaintenanceConfig{}, RateLimitConfig{}, LoggerConfig{}

	if err := httpCfg.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("HTTPConfig: %w", err))
	}

	if err := db.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := auth.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("AuthConfig: %w", err))
	}

	if err := maintenance.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("MaintenanceConfig: %w", err))
	}

	if err := rateLimit.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("RateLimitConfig: %w", err))
	}

	if err := logger.bindEnvironmentVariables(v); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	if err := config.HTTP.validate(); err != nil {
		errs = append(errs, fmt.Errorf("HTTPConfig: %w", err))
	}

	if err := config.DB.validate(); err != nil {
		errs = append(errs, fmt.Errorf("DBConfig: %w", err))
	}

	if err := config.Auth.validate(); err != nil {
		errs = append(errs, fmt.Errorf("AuthConfig: %w", err))
	}

	if err := config.Maintenance.validate(); err != nil {
		errs = append(errs, fmt.Errorf("MaintenanceConfig: %w", err))
	}

	if err := config.Uploads.validate(); err != nil {
		errs = append(errs, fmt.Errorf("UploadsConfig: %w", err))
	}

	if err := config.Logger.validate(); err != nil {
		errs = append(errs, fmt.Errorf("LoggerConfig: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}
