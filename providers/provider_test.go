package providers

import (
	"strings"
	"testing"

	"github.com/goliatone/go-credentials/core"
)

func validDefinition() Definition {
	return Definition{
		ID:               "acme_mail",
		Name:             "Acme Mail",
		DocumentationURL: "https://docs.acme.test/mail",
		ResourceServerTypes: []core.CredentialType{
			core.CredentialTypeOAuth2AuthorizationCodeFlow,
		},
		UserTypes: []core.CredentialType{
			core.CredentialTypeOAuth2AuthorizationCodeFlow,
		},
		StaticConfigs: map[core.CredentialType]core.StaticCredentialConfig{
			core.CredentialTypeOAuth2AuthorizationCodeFlow: core.OAuth2AuthorizationCodeFlowStaticConfig{
				AuthURI:  "https://accounts.acme.test/authorize",
				TokenURI: "https://accounts.acme.test/token",
				Scopes:   []string{"mail.read"},
			},
		},
	}
}

func TestDefinition_Validate(t *testing.T) {
	if err := validDefinition().Validate(); err != nil {
		t.Fatalf("expected valid definition, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(d *Definition)
	}{
		{"missing id", func(d *Definition) { d.ID = "  " }},
		{"missing name", func(d *Definition) { d.Name = "" }},
		{"invalid resource server type", func(d *Definition) {
			d.ResourceServerTypes = []core.CredentialType{"ApiKey"}
		}},
		{"invalid user type", func(d *Definition) {
			d.UserTypes = []core.CredentialType{"ApiKey"}
		}},
		{"nil static config", func(d *Definition) {
			d.StaticConfigs = map[core.CredentialType]core.StaticCredentialConfig{
				core.CredentialTypeNoAuth: nil,
			}
		}},
		{"mismatched static config", func(d *Definition) {
			d.StaticConfigs = map[core.CredentialType]core.StaticCredentialConfig{
				core.CredentialTypeNoAuth: core.CustomStaticConfig{},
			}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := validDefinition()
			tc.mutate(&def)
			if err := def.Validate(); err == nil {
				t.Fatalf("expected validation failure")
			}
		})
	}
}

func TestNew_TrimsIdentity(t *testing.T) {
	def := validDefinition()
	def.ID = "  acme_mail  "
	def.Name = "  Acme Mail  "

	provider, err := New(def)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if provider.ID() != "acme_mail" || provider.Name() != "Acme Mail" {
		t.Fatalf("expected trimmed identity, got %q / %q", provider.ID(), provider.Name())
	}
	if provider.DocumentationURL() != "https://docs.acme.test/mail" {
		t.Fatalf("unexpected documentation url %q", provider.DocumentationURL())
	}
}

func TestProvider_SaveValidatesCredentialTypes(t *testing.T) {
	provider, err := New(validDefinition())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	record, err := provider.SaveResourceServerCredential(core.OAuth2AuthorizationCodeFlowResourceServerCredential{
		ClientID:     "client_1",
		ClientSecret: "secret_1",
		RedirectURI:  "https://app.acme.test/callback",
	})
	if err != nil {
		t.Fatalf("save resource server credential: %v", err)
	}
	if record.ID == "" || record.CreatedAt.IsZero() {
		t.Fatalf("save must stamp identity and timestamps: %+v", record)
	}

	_, err = provider.SaveResourceServerCredential(core.NoAuthResourceServerCredential{})
	if !core.IsInvalidRequest(err) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unsupported credential type for acme_mail") {
		t.Fatalf("unexpected message: %v", err)
	}

	_, err = provider.SaveUserCredential(core.NoAuthUserCredential{})
	if !core.IsInvalidRequest(err) {
		t.Fatalf("expected invalid request, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unsupported credential type for acme_mail") {
		t.Fatalf("unexpected message: %v", err)
	}

	if _, err := provider.SaveUserCredential(nil); !core.IsInvalidRequest(err) {
		t.Fatalf("expected nil credential rejection, got %v", err)
	}
}

func TestProvider_StaticCredentialsReturnsCopies(t *testing.T) {
	provider, err := New(validDefinition())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	first, err := provider.StaticCredentials(core.CredentialTypeOAuth2AuthorizationCodeFlow)
	if err != nil {
		t.Fatalf("static credentials: %v", err)
	}
	config := first.(core.OAuth2AuthorizationCodeFlowStaticConfig)
	config.Scopes[0] = "mutated"

	second, err := provider.StaticCredentials(core.CredentialTypeOAuth2AuthorizationCodeFlow)
	if err != nil {
		t.Fatalf("static credentials: %v", err)
	}
	if second.(core.OAuth2AuthorizationCodeFlowStaticConfig).Scopes[0] != "mail.read" {
		t.Fatalf("static bundles must be handed out as copies")
	}

	if _, err := provider.StaticCredentials(core.CredentialTypeCustom); !core.IsInvalidRequest(err) {
		t.Fatalf("expected unsupported type rejection, got %v", err)
	}
}

func TestBuiltin(t *testing.T) {
	builtin, err := Builtin()
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	if len(builtin) != 1 || builtin[0].ID() != "google_mail" {
		t.Fatalf("unexpected builtin set: %v", builtin)
	}

	registry, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}
	if _, ok := registry.Get("google_mail"); !ok {
		t.Fatalf("expected google_mail in the default registry")
	}
}
