package core

import (
	"context"
	"testing"
	"time"
)

func TestNewService_UsesDefaultsWhenUnconfigured(t *testing.T) {
	service, err := NewService(Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cfg := service.Config()
	if cfg.ServiceName != "credentials" {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
	if cfg.DefaultDEKAlias != "primary" {
		t.Fatalf("expected default dek alias, got %q", cfg.DefaultDEKAlias)
	}
	if cfg.Rotation.LeadTime != 5*time.Minute || cfg.Rotation.MaxAttempts != 3 {
		t.Fatalf("expected default rotation settings, got %+v", cfg.Rotation)
	}
	if service.Registry() == nil {
		t.Fatalf("expected a default registry")
	}
}

func TestNewService_RuntimeConfigOverridesDefaults(t *testing.T) {
	service, err := NewService(Config{
		ServiceName:     "broker",
		DefaultDEKAlias: "tenant_key",
		Rotation:        RotationConfig{LeadTime: time.Minute, MaxAttempts: 7},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cfg := service.Config()
	if cfg.ServiceName != "broker" {
		t.Fatalf("expected runtime service name to win, got %q", cfg.ServiceName)
	}
	if cfg.DefaultDEKAlias != "tenant_key" {
		t.Fatalf("expected runtime dek alias to win, got %q", cfg.DefaultDEKAlias)
	}
	if cfg.Rotation.LeadTime != time.Minute || cfg.Rotation.MaxAttempts != 7 {
		t.Fatalf("expected runtime rotation settings to win, got %+v", cfg.Rotation)
	}
}

func TestNewService_ConfigProviderLayersUnderRuntime(t *testing.T) {
	provider := NewCfgxConfigProvider(staticRawConfigLoader{Values: map[string]any{
		"service_name":      "loaded",
		"default_dek_alias": "loaded_key",
		"rotation": map[string]any{
			"max_attempts": 9,
		},
	}})

	service, err := NewService(
		Config{ServiceName: "runtime"},
		WithConfigProvider(provider),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	cfg := service.Config()
	if cfg.ServiceName != "runtime" {
		t.Fatalf("runtime layer must outrank the config layer, got %q", cfg.ServiceName)
	}
	if cfg.DefaultDEKAlias != "loaded_key" {
		t.Fatalf("config layer must outrank defaults, got %q", cfg.DefaultDEKAlias)
	}
	if cfg.Rotation.MaxAttempts != 9 {
		t.Fatalf("expected loaded rotation max attempts, got %d", cfg.Rotation.MaxAttempts)
	}
	if cfg.Rotation.LeadTime != 5*time.Minute {
		t.Fatalf("untouched settings keep their defaults, got %v", cfg.Rotation.LeadTime)
	}
}

func TestGoOptionsResolver_Precedence(t *testing.T) {
	resolver := GoOptionsResolver{}

	resolved, err := resolver.Resolve(
		DefaultConfig(),
		Config{ServiceName: "loaded", DefaultDEKAlias: "loaded_key"},
		Config{DefaultDEKAlias: "runtime_key"},
	)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if resolved.ServiceName != "loaded" {
		t.Fatalf("expected loaded service name, got %q", resolved.ServiceName)
	}
	if resolved.DefaultDEKAlias != "runtime_key" {
		t.Fatalf("expected runtime dek alias, got %q", resolved.DefaultDEKAlias)
	}
	if resolved.Rotation.LeadTime != 5*time.Minute {
		t.Fatalf("expected default rotation lead time, got %v", resolved.Rotation.LeadTime)
	}
}

func TestGoOptionsResolver_ValidatesMergedConfig(t *testing.T) {
	resolver := GoOptionsResolver{}

	_, err := resolver.Resolve(
		Config{ServiceName: "credentials", Rotation: RotationConfig{LeadTime: -time.Minute}},
		Config{},
		Config{},
	)
	if err == nil {
		t.Fatalf("expected invalid merged config to be rejected")
	}
}

func TestStaticRawConfigLoader_CopiesValues(t *testing.T) {
	loader := staticRawConfigLoader{Values: map[string]any{"service_name": "broker"}}

	raw, err := loader.LoadRaw(context.Background())
	if err != nil {
		t.Fatalf("load raw: %v", err)
	}
	raw["service_name"] = "mutated"
	if loader.Values["service_name"] != "broker" {
		t.Fatalf("loader must hand out copies")
	}

	empty, err := staticRawConfigLoader{}.LoadRaw(context.Background())
	if err != nil {
		t.Fatalf("load raw empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty map, got %v", empty)
	}
}

func TestNewService_OptionOverridesCollaborators(t *testing.T) {
	recorder := newRecordingMetrics()
	registry := NewProviderRegistry()
	if err := registry.Register(newAuthCodeTestProvider("acme_mail")); err != nil {
		t.Fatalf("register: %v", err)
	}

	service, err := NewService(Config{},
		WithMetricsRecorder(recorder),
		WithRegistry(registry),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, ok := service.Registry().Get("acme_mail"); !ok {
		t.Fatalf("expected supplied registry to be used")
	}
	if service.metricsRecorder != recorder {
		t.Fatalf("expected supplied metrics recorder to be used")
	}
}
