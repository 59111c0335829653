package providers

import (
	"github.com/goliatone/go-credentials/core"
	"github.com/goliatone/go-credentials/providers/googlemail"
)

// Builtin returns the fixed provider set. Extending it means adding a new
// implementation here, not loading plugins at runtime.
func Builtin() ([]core.Provider, error) {
	googleMail, err := googlemail.New(googlemail.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return []core.Provider{googleMail}, nil
}

// DefaultRegistry builds a registry populated with the builtin providers.
func DefaultRegistry() (core.Registry, error) {
	registry := core.NewProviderRegistry()
	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}
	for _, provider := range builtin {
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
