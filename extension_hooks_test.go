package credentials

import (
	"testing"

	"github.com/goliatone/go-credentials/core"
)

func TestExtensionHooks_RegisterAndApplyProviderPacks(t *testing.T) {
	hooks := NewExtensionHooks()
	pack := ProviderPack{
		Name: "downstream-pack",
		Providers: []core.Provider{
			extensionProvider{id: "custom_provider"},
		},
	}
	if err := hooks.RegisterProviderPack(pack); err != nil {
		t.Fatalf("register provider pack: %v", err)
	}
	if err := hooks.RegisterProviderPack(pack); err == nil {
		t.Fatalf("expected duplicate provider pack registration error")
	}

	registry := core.NewProviderRegistry()
	if err := hooks.ApplyProviderPacks(registry); err != nil {
		t.Fatalf("apply provider packs: %v", err)
	}
	if _, ok := registry.Get("custom_provider"); !ok {
		t.Fatalf("expected provider pack registration in registry")
	}
}

func TestExtensionHooks_CommandQueryBundles(t *testing.T) {
	hooks := NewExtensionHooks()

	if err := hooks.RegisterCommandQueryBundle("rotation_bundle", func(service CommandQueryService) (any, error) {
		return map[string]any{
			"rotate_fn":   service.RotateUserCredential,
			"list_due_fn": service.ListDueForRotation,
		}, nil
	}); err != nil {
		t.Fatalf("register bundle: %v", err)
	}
	if err := hooks.RegisterCommandQueryBundle("rotation_bundle", func(CommandQueryService) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate bundle registration error")
	}

	names := hooks.BundleNames()
	if len(names) != 1 || names[0] != "rotation_bundle" {
		t.Fatalf("unexpected bundle names %#v", names)
	}

	svc := &stubFacadeService{}
	bundles, err := hooks.BuildCommandQueryBundles(svc)
	if err != nil {
		t.Fatalf("build bundles: %v", err)
	}
	if len(bundles) != 1 {
		t.Fatalf("expected one bundle, got %d", len(bundles))
	}
	if _, ok := bundles["rotation_bundle"]; !ok {
		t.Fatalf("expected rotation_bundle entry in built bundles")
	}

	if _, err := hooks.BuildCommandQueryBundles(nil); err == nil {
		t.Fatalf("expected nil service error")
	}
}

type extensionProvider struct {
	id string
}

func (p extensionProvider) ID() string { return p.id }

func (extensionProvider) Name() string { return "Custom Provider" }

func (extensionProvider) DocumentationURL() string { return "https://example.test/docs" }

func (p extensionProvider) SaveResourceServerCredential(credential core.ResourceServerCredential) (core.ResourceServerCredentialRecord, error) {
	return core.NewCredential[core.ResourceServerCredential](credential), nil
}

func (p extensionProvider) SaveUserCredential(credential core.UserCredential) (core.UserCredentialRecord, error) {
	return core.NewCredential[core.UserCredential](credential), nil
}

func (extensionProvider) StaticCredentials(core.CredentialType) (core.StaticCredentialConfig, error) {
	return core.NoAuthStaticConfig{}, nil
}
