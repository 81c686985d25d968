package core

import (
	"fmt"
	"strings"
	"time"
)

type ValidationConfig struct {
	Timeout        time.Duration `koanf:"timeout" mapstructure:"timeout"`
	MaxKeyAttempts int           `koanf:"max_key_attempts" mapstructure:"max_key_attempts"`
}

type Config struct {
	ServiceName     string           `koanf:"service_name" mapstructure:"service_name"`
	DefaultProvider string           `koanf:"default_provider" mapstructure:"default_provider"`
	Validation      ValidationConfig `koanf:"validation" mapstructure:"validation"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:     "chat",
		DefaultProvider: "eliza",
		Validation: ValidationConfig{
			Timeout:        defaultValidationTimeout,
			MaxKeyAttempts: defaultMaxKeyAttempts,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Validation.Timeout < 0 {
		return fmt.Errorf("core: validation.timeout must be >= 0")
	}
	if c.Validation.MaxKeyAttempts < 0 {
		return fmt.Errorf("core: validation.max_key_attempts must be >= 0")
	}
	return nil
}
