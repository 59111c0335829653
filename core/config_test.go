package core

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ServiceName != "credentials" {
		t.Fatalf("unexpected service name %q", cfg.ServiceName)
	}
	if cfg.DefaultDEKAlias != "primary" {
		t.Fatalf("unexpected dek alias %q", cfg.DefaultDEKAlias)
	}
	if cfg.Rotation.LeadTime != 5*time.Minute {
		t.Fatalf("unexpected rotation lead time %v", cfg.Rotation.LeadTime)
	}
	if cfg.Rotation.MaxAttempts != 3 {
		t.Fatalf("unexpected rotation max attempts %d", cfg.Rotation.MaxAttempts)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  DefaultConfig(),
		},
		{
			name:    "missing service name",
			cfg:     Config{ServiceName: "  "},
			wantErr: true,
		},
		{
			name: "negative lead time",
			cfg: Config{
				ServiceName: "credentials",
				Rotation:    RotationConfig{LeadTime: -time.Minute},
			},
			wantErr: true,
		},
		{
			name: "negative max attempts",
			cfg: Config{
				ServiceName: "credentials",
				Rotation:    RotationConfig{MaxAttempts: -1},
			},
			wantErr: true,
		},
		{
			name: "zero rotation settings fall back to defaults elsewhere",
			cfg:  Config{ServiceName: "credentials"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation failure")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected config to validate, got %v", err)
			}
		})
	}
}
