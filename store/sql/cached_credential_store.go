package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-credentials/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const credentialCacheKeyPrefix = "go-credentials::credential::v1"

const (
	credentialCacheKindResourceServer = "resource_server"
	credentialCacheKindUser           = "user"
)

// CachedCredentialStore decorates a credential store with a read-through
// cache on GetByID. Writes invalidate the cached entry before returning so
// the next read refetches from the base store.
type CachedCredentialStore struct {
	base  core.ResourceServerCredentialStore
	kind  string
	cache repositorycache.CacheService
}

// NewCachedResourceServerCredentialStore wraps a resource server credential
// store with the shared cache decorator.
func NewCachedResourceServerCredentialStore(
	base core.ResourceServerCredentialStore,
	cacheService repositorycache.CacheService,
) (*CachedCredentialStore, error) {
	return newCachedCredentialStore(base, credentialCacheKindResourceServer, cacheService)
}

// NewCachedUserCredentialStore wraps a user credential store with the shared
// cache decorator. The two store contracts carry the same method set, so one
// decorator serves both.
func NewCachedUserCredentialStore(
	base core.UserCredentialStore,
	cacheService repositorycache.CacheService,
) (*CachedCredentialStore, error) {
	return newCachedCredentialStore(base, credentialCacheKindUser, cacheService)
}

func newCachedCredentialStore(
	base core.ResourceServerCredentialStore,
	kind string,
	cacheService repositorycache.CacheService,
) (*CachedCredentialStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base credential store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: credential cache service is required")
	}
	return &CachedCredentialStore{base: base, kind: kind, cache: cacheService}, nil
}

// CredentialCacheKey returns the deterministic cache key contract for
// credential reads: go-credentials::credential::v1::<kind>::<id> with each
// segment URL-path escaped.
func CredentialCacheKey(kind string, id string) (string, error) {
	kind = strings.TrimSpace(kind)
	id = strings.TrimSpace(id)
	if kind == "" {
		return "", fmt.Errorf("sqlstore: credential cache kind is required")
	}
	if id == "" {
		return "", fmt.Errorf("sqlstore: credential cache id is required")
	}
	segments := []string{url.PathEscape(kind), url.PathEscape(id)}
	return strings.Join(append([]string{credentialCacheKeyPrefix}, segments...), "::"), nil
}

func (s *CachedCredentialStore) Create(ctx context.Context, credential core.SerializedCredential) (core.SerializedCredential, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	created, err := s.base.Create(ctx, credential)
	if err != nil {
		return core.SerializedCredential{}, err
	}
	if err := s.invalidate(ctx, created.ID); err != nil {
		return core.SerializedCredential{}, err
	}
	return created, nil
}

func (s *CachedCredentialStore) GetByID(ctx context.Context, id string) (core.SerializedCredential, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	cacheKey, err := CredentialCacheKey(s.kind, id)
	if err != nil {
		return core.SerializedCredential{}, err
	}

	credential, err := repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.SerializedCredential, error) {
		fetched, fetchErr := s.base.GetByID(ctx, id)
		if fetchErr != nil {
			return core.SerializedCredential{}, fetchErr
		}
		return fetched.Clone(), nil
	})
	if err != nil {
		return core.SerializedCredential{}, err
	}
	return credential.Clone(), nil
}

func (s *CachedCredentialStore) UpdatePartial(ctx context.Context, id string, in core.UpdateCredentialInput) (core.SerializedCredential, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	updated, err := s.base.UpdatePartial(ctx, id, in)
	if err != nil {
		return core.SerializedCredential{}, err
	}
	if err := s.invalidate(ctx, id); err != nil {
		return core.SerializedCredential{}, err
	}
	return updated, nil
}

func (s *CachedCredentialStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	if err := s.base.Delete(ctx, id); err != nil {
		return err
	}
	return s.invalidate(ctx, id)
}

func (s *CachedCredentialStore) List(ctx context.Context, page core.Pagination) ([]core.SerializedCredential, int, error) {
	if s == nil || s.base == nil {
		return nil, 0, fmt.Errorf("sqlstore: cached credential store is not configured")
	}
	return s.base.List(ctx, page)
}

func (s *CachedCredentialStore) invalidate(ctx context.Context, id string) error {
	cacheKey, err := CredentialCacheKey(s.kind, id)
	if err != nil {
		return err
	}
	return s.cache.Delete(ctx, cacheKey)
}

var (
	_ core.ResourceServerCredentialStore = (*CachedCredentialStore)(nil)
	_ core.UserCredentialStore           = (*CachedCredentialStore)(nil)
)
