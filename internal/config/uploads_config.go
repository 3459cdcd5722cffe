package config

import "fmt"

type UploadsConfig struct {
	Dir      string `mapstructure:"dir"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

func (config UploadsConfig) validate() error {
	if config.Dir == "" {
		return fmt.Errorf("missing variable: uploads dir")
	}
	if config.MaxBytes <= 0 {
		return fmt.Errorf("max_bytes must be positive")
	}
	return nil
}
