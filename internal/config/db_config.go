package config

import (
	"fmt"
	"github.com/spf13/viper"
	"time"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

type DBConfig struct {
	Driver           Driver        `mapstructure:"driver"`
	ConnectionString string        `mapstructure:"connection_string"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}
	switch config.Driver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported db driver: %q", config.Driver)
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables(v *viper.Viper) error {
	if err := v.BindEnv("db.driver", "DB_DRIVER"); err != nil {
		return err
	}
	return v.BindEnv("db.connection_string", "DB_CONNECTION_STRING")
}
