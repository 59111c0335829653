package sqlstore

import (
	"fmt"

	"github.com/goliatone/go-credentials/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// RepositoryFactory wires the SQL-backed stores off one bun handle. When a
// cache service is attached, credential reads go through the cached
// decorators.
type RepositoryFactory struct {
	db           *bun.DB
	cacheService repositorycache.CacheService

	resourceServerStore core.ResourceServerCredentialStore
	userStore           core.UserCredentialStore
	brokerStateStore    *BrokerStateStore
	toolGroupStore      *ToolGroupStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

// WithCacheService attaches a cache before BuildStores runs.
func (f *RepositoryFactory) WithCacheService(cacheService repositorycache.CacheService) *RepositoryFactory {
	if f == nil {
		return nil
	}
	f.cacheService = cacheService
	return f
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.resourceServerStore != nil && f.userStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) ResourceServerCredentialStore() core.ResourceServerCredentialStore {
	if f == nil {
		return nil
	}
	return f.resourceServerStore
}

func (f *RepositoryFactory) UserCredentialStore() core.UserCredentialStore {
	if f == nil {
		return nil
	}
	return f.userStore
}

func (f *RepositoryFactory) BrokerStateStore() core.BrokerStateStore {
	if f == nil {
		return nil
	}
	return f.brokerStateStore
}

func (f *RepositoryFactory) ToolGroupStore() core.ToolGroupStore {
	if f == nil {
		return nil
	}
	return f.toolGroupStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) initStores() error {
	resourceServerStore, err := NewResourceServerCredentialStore(f.db)
	if err != nil {
		return err
	}
	userStore, err := NewUserCredentialStore(f.db)
	if err != nil {
		return err
	}
	brokerStateStore, err := NewBrokerStateStore(f.db)
	if err != nil {
		return err
	}
	toolGroupStore, err := NewToolGroupStore(f.db)
	if err != nil {
		return err
	}

	f.resourceServerStore = resourceServerStore
	f.userStore = userStore
	f.brokerStateStore = brokerStateStore
	f.toolGroupStore = toolGroupStore

	if f.cacheService != nil {
		cachedResourceServer, cacheErr := NewCachedResourceServerCredentialStore(resourceServerStore, f.cacheService)
		if cacheErr != nil {
			return cacheErr
		}
		cachedUser, cacheErr := NewCachedUserCredentialStore(userStore, f.cacheService)
		if cacheErr != nil {
			return cacheErr
		}
		f.resourceServerStore = cachedResourceServer
		f.userStore = cachedUser
	}
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
