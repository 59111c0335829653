package core

import (
	"fmt"
	"strings"
	"time"
)

type RotationConfig struct {
	LeadTime    time.Duration `koanf:"lead_time" mapstructure:"lead_time"`
	MaxAttempts int           `koanf:"max_attempts" mapstructure:"max_attempts"`
}

type Config struct {
	ServiceName     string         `koanf:"service_name" mapstructure:"service_name"`
	DefaultDEKAlias string         `koanf:"default_dek_alias" mapstructure:"default_dek_alias"`
	Rotation        RotationConfig `koanf:"rotation" mapstructure:"rotation"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:     "credentials",
		DefaultDEKAlias: "primary",
		Rotation: RotationConfig{
			LeadTime:    defaultRotationLeadTime,
			MaxAttempts: defaultRotationMaxAttempts,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Rotation.LeadTime < 0 {
		return fmt.Errorf("core: rotation lead_time must not be negative")
	}
	if c.Rotation.MaxAttempts < 0 {
		return fmt.Errorf("core: rotation max_attempts must not be negative")
	}
	return nil
}
