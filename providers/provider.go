package providers

import (
	"github.com/goliatone/go-credentials/core"
	"github.com/goliatone/go-credentials/internal/providerdef"
)

// Definition declares everything a provider implementation needs: identity,
// the credential types it accepts per context, and its static endpoint
// bundles. The provider set is closed; implementations are registered at
// build time from definitions, never discovered at runtime.
type Definition = providerdef.Definition

// New builds a core.Provider from a definition.
func New(def Definition) (core.Provider, error) {
	return providerdef.New(def)
}
