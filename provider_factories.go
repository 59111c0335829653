package credentials

import (
	"github.com/goliatone/go-credentials/core"
	"github.com/goliatone/go-credentials/providers"
	"github.com/goliatone/go-credentials/providers/googlemail"
)

// GoogleMailProvider builds the builtin Google Mail provider with the given
// scope overrides.
func GoogleMailProvider(cfg googlemail.Config) (core.Provider, error) {
	return googlemail.New(cfg)
}

// BuiltinProviders returns the fixed provider set the default registry ships
// with.
func BuiltinProviders() ([]core.Provider, error) {
	return providers.Builtin()
}

// DefaultRegistry builds a registry populated with the builtin providers.
func DefaultRegistry() (core.Registry, error) {
	return providers.DefaultRegistry()
}
