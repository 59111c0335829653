package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// BrokerActionType discriminates the pending action carried by a broker
// state row.
type BrokerActionType string

const (
	BrokerActionTypeRedirect BrokerActionType = "redirect"
	BrokerActionTypeNone     BrokerActionType = "none"
)

// BrokerAction tells the caller what the flow needs next: send the end
// user to URL, or nothing (the flow proceeds without user interaction).
type BrokerAction struct {
	Type BrokerActionType `json:"type"`
	URL  string           `json:"url,omitempty"`
}

func RedirectBrokerAction(url string) BrokerAction {
	return BrokerAction{Type: BrokerActionTypeRedirect, URL: strings.TrimSpace(url)}
}

func NoneBrokerAction() BrokerAction {
	return BrokerAction{Type: BrokerActionTypeNone}
}

func (a BrokerAction) Validate() error {
	switch a.Type {
	case BrokerActionTypeRedirect:
		if strings.TrimSpace(a.URL) == "" {
			return fmt.Errorf("core: broker redirect action requires a url")
		}
		return nil
	case BrokerActionTypeNone:
		return nil
	}
	return fmt.Errorf("core: broker action type %q is invalid", a.Type)
}

// BrokerState is the persisted correlation record for an in-flight
// handshake. It exists while the flow is pending and is deleted once the
// resulting credential has been saved and attached to the tool group.
type BrokerState struct {
	ID             string
	ToolGroupID    string
	ProviderID     string
	CredentialType CredentialType
	Metadata       Metadata
	Action         BrokerAction
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (s BrokerState) Clone() BrokerState {
	cloned := s
	cloned.Metadata = s.Metadata.Clone()
	return cloned
}

// BrokerInput carries the callback material a provider hands back when an
// interactive flow returns, optionally with a PKCE verifier.
type BrokerInput struct {
	Code         string
	CodeVerifier string
}

// MemoryBrokerStateStore is an in-process BrokerStateStore for tests and
// embedded use.
type MemoryBrokerStateStore struct {
	mu      sync.Mutex
	entries map[string]BrokerState
}

func NewMemoryBrokerStateStore() *MemoryBrokerStateStore {
	return &MemoryBrokerStateStore{entries: map[string]BrokerState{}}
}

func (s *MemoryBrokerStateStore) Create(_ context.Context, state BrokerState) (BrokerState, error) {
	if s == nil {
		return BrokerState{}, fmt.Errorf("core: broker state store is not configured")
	}
	id := strings.TrimSpace(state.ID)
	if id == "" {
		return BrokerState{}, fmt.Errorf("core: broker state id is required")
	}
	if err := state.Action.Validate(); err != nil {
		return BrokerState{}, err
	}

	now := time.Now().UTC()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	if state.UpdatedAt.IsZero() {
		state.UpdatedAt = state.CreatedAt
	}
	if state.Metadata == nil {
		state.Metadata = Metadata{}
	}
	state.ID = id

	s.mu.Lock()
	s.entries[id] = state.Clone()
	s.mu.Unlock()

	return state.Clone(), nil
}

func (s *MemoryBrokerStateStore) GetByID(_ context.Context, id string) (BrokerState, error) {
	if s == nil {
		return BrokerState{}, fmt.Errorf("core: broker state store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return BrokerState{}, fmt.Errorf("core: broker state id is required")
	}

	s.mu.Lock()
	state, ok := s.entries[id]
	s.mu.Unlock()

	if !ok {
		return BrokerState{}, NewNotFoundError(fmt.Sprintf("core: broker state not found: %s", id))
	}
	return state.Clone(), nil
}

func (s *MemoryBrokerStateStore) Delete(_ context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("core: broker state store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("core: broker state id is required")
	}

	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()

	return nil
}

var _ BrokerStateStore = (*MemoryBrokerStateStore)(nil)
