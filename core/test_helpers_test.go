package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// testProvider is a configurable in-memory Provider implementation used
// across the package tests.
type testProvider struct {
	id                  string
	resourceServerTypes []CredentialType
	userTypes           []CredentialType
	statics             map[CredentialType]StaticCredentialConfig
	injector            RequestInjector
}

func (p testProvider) ID() string { return p.id }

func (p testProvider) Name() string { return strings.ReplaceAll(p.id, "_", " ") }

func (p testProvider) DocumentationURL() string {
	return "https://docs.example.test/" + p.id
}

func (p testProvider) SaveResourceServerCredential(credential ResourceServerCredential) (ResourceServerCredentialRecord, error) {
	if credential == nil {
		return ResourceServerCredentialRecord{}, NewInvalidRequestError("core: resource server credential is required")
	}
	if !p.supports(p.resourceServerTypes, credential.CredentialType()) {
		return ResourceServerCredentialRecord{}, NewInvalidRequestError(
			fmt.Sprintf("core: Unsupported credential type for %s: %s", p.id, credential.CredentialType()))
	}
	return NewCredential[ResourceServerCredential](credential), nil
}

func (p testProvider) SaveUserCredential(credential UserCredential) (UserCredentialRecord, error) {
	if credential == nil {
		return UserCredentialRecord{}, NewInvalidRequestError("core: user credential is required")
	}
	if !p.supports(p.userTypes, credential.CredentialType()) {
		return UserCredentialRecord{}, NewInvalidRequestError(
			fmt.Sprintf("core: Unsupported credential type for %s: %s", p.id, credential.CredentialType()))
	}
	return NewCredential[UserCredential](credential), nil
}

func (p testProvider) StaticCredentials(credentialType CredentialType) (StaticCredentialConfig, error) {
	if config, ok := p.statics[credentialType]; ok {
		return config, nil
	}
	return nil, NewInvalidRequestError(
		fmt.Sprintf("core: Unsupported credential type for %s: %s", p.id, credentialType))
}

func (p testProvider) Injector() RequestInjector { return p.injector }

func (p testProvider) supports(types []CredentialType, credentialType CredentialType) bool {
	for _, supported := range types {
		if supported == credentialType {
			return true
		}
	}
	return false
}

// newAuthCodeTestProvider mirrors the builtin google_mail surface closely
// enough for service-level tests.
func newAuthCodeTestProvider(id string) testProvider {
	return testProvider{
		id:                  id,
		resourceServerTypes: []CredentialType{CredentialTypeOAuth2AuthorizationCodeFlow},
		userTypes:           []CredentialType{CredentialTypeOAuth2AuthorizationCodeFlow},
		statics: map[CredentialType]StaticCredentialConfig{
			CredentialTypeOAuth2AuthorizationCodeFlow: OAuth2AuthorizationCodeFlowStaticConfig{
				AuthURI:  "https://accounts.google.com/o/oauth2/auth",
				TokenURI: "https://oauth2.googleapis.com/token",
				Scopes:   []string{"https://www.googleapis.com/auth/gmail.readonly"},
			},
		},
	}
}

// memoryCredentialStore backs both credential store interfaces in tests.
type memoryCredentialStore struct {
	mu    sync.Mutex
	rows  map[string]SerializedCredential
	order []string
}

func newMemoryCredentialStore() *memoryCredentialStore {
	return &memoryCredentialStore{rows: map[string]SerializedCredential{}}
}

func (s *memoryCredentialStore) Create(_ context.Context, credential SerializedCredential) (SerializedCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(credential.ID) == "" {
		return SerializedCredential{}, fmt.Errorf("core: credential id is required")
	}
	s.rows[credential.ID] = credential.Clone()
	s.order = append(s.order, credential.ID)
	return credential.Clone(), nil
}

func (s *memoryCredentialStore) GetByID(_ context.Context, id string) (SerializedCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[strings.TrimSpace(id)]
	if !ok {
		return SerializedCredential{}, NewNotFoundError(fmt.Sprintf("core: credential not found: %s", id))
	}
	return row.Clone(), nil
}

func (s *memoryCredentialStore) UpdatePartial(_ context.Context, id string, in UpdateCredentialInput) (SerializedCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[strings.TrimSpace(id)]
	if !ok {
		return SerializedCredential{}, NewNotFoundError(fmt.Sprintf("core: credential not found: %s", id))
	}
	if in.IsZero() {
		return row.Clone(), nil
	}
	if in.Value != nil {
		row.Value = append([]byte(nil), in.Value...)
	}
	if in.Metadata != nil {
		row.Metadata = in.Metadata.Clone()
	}
	if in.NextRotationTime != nil {
		row.NextRotationTime = cloneTimePointer(in.NextRotationTime)
	}
	if in.UpdatedAt != nil {
		row.UpdatedAt = in.UpdatedAt.UTC()
	}
	s.rows[row.ID] = row.Clone()
	return row.Clone(), nil
}

func (s *memoryCredentialStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id = strings.TrimSpace(id)
	delete(s.rows, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memoryCredentialStore) List(_ context.Context, page Pagination) ([]SerializedCredential, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := len(s.order)
	start := page.Offset
	if start > total {
		start = total
	}
	end := total
	if page.Limit > 0 && start+page.Limit < end {
		end = start + page.Limit
	}
	out := make([]SerializedCredential, 0, end-start)
	for _, id := range s.order[start:end] {
		out = append(out, s.rows[id].Clone())
	}
	return out, total, nil
}

// memoryToolGroupStore joins tool groups with the credential stores so the
// rotation-due query behaves like the SQL implementation.
type memoryToolGroupStore struct {
	mu    sync.Mutex
	rows  map[string]ToolGroup
	order []string

	resourceServerStore *memoryCredentialStore
	userStore           *memoryCredentialStore
}

func newMemoryToolGroupStore(resourceServerStore, userStore *memoryCredentialStore) *memoryToolGroupStore {
	return &memoryToolGroupStore{
		rows:                map[string]ToolGroup{},
		resourceServerStore: resourceServerStore,
		userStore:           userStore,
	}
}

func (s *memoryToolGroupStore) Create(_ context.Context, group ToolGroup) (ToolGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(group.ID) == "" {
		return ToolGroup{}, fmt.Errorf("core: tool group id is required")
	}
	if group.Status == "" {
		group.Status = ToolGroupStatusPending
	}
	s.rows[group.ID] = group.Clone()
	s.order = append(s.order, group.ID)
	return group.Clone(), nil
}

func (s *memoryToolGroupStore) GetByID(_ context.Context, id string) (ToolGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.rows[strings.TrimSpace(id)]
	if !ok {
		return ToolGroup{}, NewNotFoundError(fmt.Sprintf("core: tool group not found: %s", id))
	}
	return group.Clone(), nil
}

func (s *memoryToolGroupStore) UpdateCredentialRefs(_ context.Context, id string, refs CredentialRefs) (ToolGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.rows[strings.TrimSpace(id)]
	if !ok {
		return ToolGroup{}, NewNotFoundError(fmt.Sprintf("core: tool group not found: %s", id))
	}
	if refs.ResourceServerCredentialID != nil {
		group.ResourceServerCredentialID = *refs.ResourceServerCredentialID
	}
	if refs.UserCredentialID != nil {
		id := *refs.UserCredentialID
		group.UserCredentialID = &id
	}
	group.UpdatedAt = time.Now().UTC()
	s.rows[group.ID] = group.Clone()
	return group.Clone(), nil
}

func (s *memoryToolGroupStore) UpdateStatus(_ context.Context, id string, status ToolGroupStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	group, ok := s.rows[strings.TrimSpace(id)]
	if !ok {
		return NewNotFoundError(fmt.Sprintf("core: tool group not found: %s", id))
	}
	if !group.Status.CanTransitionTo(status) {
		return NewInvalidRequestError(
			fmt.Sprintf("core: tool group status transition %s -> %s is invalid", group.Status, status))
	}
	group.Status = status
	group.UpdatedAt = time.Now().UTC()
	s.rows[group.ID] = group.Clone()
	return nil
}

func (s *memoryToolGroupStore) ListWithCredentials(ctx context.Context, query ToolGroupQuery) ([]ToolGroupWithCredentials, int, error) {
	s.mu.Lock()
	ids := append([]string(nil), s.order...)
	s.mu.Unlock()
	sort.Strings(ids)

	matched := make([]ToolGroupWithCredentials, 0, len(ids))
	for _, id := range ids {
		s.mu.Lock()
		group := s.rows[id].Clone()
		s.mu.Unlock()

		if query.Status != nil && group.Status != *query.Status {
			continue
		}

		entry := ToolGroupWithCredentials{ToolGroup: group}
		if s.resourceServerStore != nil {
			if row, err := s.resourceServerStore.GetByID(ctx, group.ResourceServerCredentialID); err == nil {
				entry.ResourceServerCredential = row
			}
		}
		if group.UserCredentialID != nil && s.userStore != nil {
			if row, err := s.userStore.GetByID(ctx, *group.UserCredentialID); err == nil {
				entry.UserCredential = &row
			}
		}
		if query.RotationDueBefore != nil {
			resourceServerDue := entry.ResourceServerCredential.NextRotationTime != nil &&
				!entry.ResourceServerCredential.NextRotationTime.After(*query.RotationDueBefore)
			userDue := entry.UserCredential != nil && entry.UserCredential.NextRotationTime != nil &&
				!entry.UserCredential.NextRotationTime.After(*query.RotationDueBefore)
			if !resourceServerDue && !userDue {
				continue
			}
		}
		matched = append(matched, entry)
	}

	total := len(matched)
	start := query.Page.Offset
	if start > total {
		start = total
	}
	end := total
	if query.Page.Limit > 0 && start+query.Page.Limit < end {
		end = start + query.Page.Limit
	}
	return matched[start:end], total, nil
}

type stubExchanger struct {
	codeFn      func(ctx context.Context, req ExchangeCodeRequest) (TokenGrant, error)
	assertionFn func(ctx context.Context, req ExchangeAssertionRequest) (TokenGrant, error)
	refreshFn   func(ctx context.Context, req RefreshTokenRequest) (TokenGrant, error)
}

func (e *stubExchanger) ExchangeAuthorizationCode(ctx context.Context, req ExchangeCodeRequest) (TokenGrant, error) {
	if e.codeFn == nil {
		return TokenGrant{}, fmt.Errorf("unexpected authorization code exchange")
	}
	return e.codeFn(ctx, req)
}

func (e *stubExchanger) ExchangeAssertion(ctx context.Context, req ExchangeAssertionRequest) (TokenGrant, error) {
	if e.assertionFn == nil {
		return TokenGrant{}, fmt.Errorf("unexpected assertion exchange")
	}
	return e.assertionFn(ctx, req)
}

func (e *stubExchanger) RefreshAccessToken(ctx context.Context, req RefreshTokenRequest) (TokenGrant, error) {
	if e.refreshFn == nil {
		return TokenGrant{}, fmt.Errorf("unexpected token refresh")
	}
	return e.refreshFn(ctx, req)
}

type testServiceEnv struct {
	service             *Service
	resourceServerStore *memoryCredentialStore
	userStore           *memoryCredentialStore
	toolGroupStore      *memoryToolGroupStore
	brokerStateStore    *MemoryBrokerStateStore
	exchanger           *stubExchanger
}

func newTestServiceEnv(providers []Provider, extra ...Option) (*testServiceEnv, error) {
	registry := NewProviderRegistry()
	for _, provider := range providers {
		if err := registry.Register(provider); err != nil {
			return nil, err
		}
	}

	env := &testServiceEnv{
		resourceServerStore: newMemoryCredentialStore(),
		userStore:           newMemoryCredentialStore(),
		brokerStateStore:    NewMemoryBrokerStateStore(),
		exchanger:           &stubExchanger{},
	}
	env.toolGroupStore = newMemoryToolGroupStore(env.resourceServerStore, env.userStore)

	options := append([]Option{
		WithRegistry(registry),
		WithResourceServerCredentialStore(env.resourceServerStore),
		WithUserCredentialStore(env.userStore),
		WithToolGroupStore(env.toolGroupStore),
		WithBrokerStateStore(env.brokerStateStore),
		WithTokenExchanger(env.exchanger),
	}, extra...)

	service, err := NewService(Config{}, options...)
	if err != nil {
		return nil, err
	}
	env.service = service
	return env, nil
}

type recordingMetrics struct {
	mu         sync.Mutex
	counters   map[string]int64
	histograms map[string]float64
	tags       map[string]map[string]string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters:   map[string]int64{},
		histograms: map[string]float64{},
		tags:       map[string]map[string]string{},
	}
}

func (r *recordingMetrics) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[name] += value
	r.tags[name] = tags
}

func (r *recordingMetrics) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histograms[name] = value
	r.tags[name] = tags
}
