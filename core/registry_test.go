package core

import "testing"

func TestProviderRegistry_RegisterAndGet(t *testing.T) {
	registry := NewProviderRegistry()

	if err := registry.Register(newAuthCodeTestProvider("acme_mail")); err != nil {
		t.Fatalf("register: %v", err)
	}

	provider, ok := registry.Get("acme_mail")
	if !ok {
		t.Fatalf("expected provider to be registered")
	}
	if provider.ID() != "acme_mail" {
		t.Fatalf("unexpected provider id %q", provider.ID())
	}

	if _, ok := registry.Get("missing"); ok {
		t.Fatalf("expected lookup miss for unregistered provider")
	}
}

func TestProviderRegistry_RejectsDuplicates(t *testing.T) {
	registry := NewProviderRegistry()

	if err := registry.Register(newAuthCodeTestProvider("acme_mail")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(newAuthCodeTestProvider("acme_mail")); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestProviderRegistry_RejectsInvalidProviders(t *testing.T) {
	registry := NewProviderRegistry()

	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected nil provider to be rejected")
	}
	if err := registry.Register(testProvider{id: "   "}); err == nil {
		t.Fatalf("expected blank provider id to be rejected")
	}
}

func TestProviderRegistry_ListIsSorted(t *testing.T) {
	registry := NewProviderRegistry()

	for _, id := range []string{"zulu", "alpha", "mike"} {
		if err := registry.Register(newAuthCodeTestProvider(id)); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}

	listed := registry.List()
	if len(listed) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(listed))
	}
	for i, want := range []string{"alpha", "mike", "zulu"} {
		if listed[i].ID() != want {
			t.Fatalf("expected provider %d to be %q, got %q", i, want, listed[i].ID())
		}
	}
}
