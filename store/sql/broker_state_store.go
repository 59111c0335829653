package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-credentials/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// BrokerStateStore persists in-flight handshake correlation rows. Delete is
// idempotent; a state that has been consumed stays gone, so a second resume
// of the same flow surfaces as not found.
type BrokerStateStore struct {
	db   *bun.DB
	repo repository.Repository[*brokerStateRecord]
}

func NewBrokerStateStore(db *bun.DB) (*BrokerStateStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*brokerStateRecord](db, brokerStateHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid broker state repository wiring: %w", err)
		}
	}
	return &BrokerStateStore{db: db, repo: repo}, nil
}

func (s *BrokerStateStore) Create(ctx context.Context, state core.BrokerState) (core.BrokerState, error) {
	if s == nil || s.repo == nil {
		return core.BrokerState{}, fmt.Errorf("sqlstore: broker state store is not configured")
	}
	if strings.TrimSpace(state.ID) == "" {
		return core.BrokerState{}, fmt.Errorf("sqlstore: broker state id is required")
	}
	if strings.TrimSpace(state.ToolGroupID) == "" {
		return core.BrokerState{}, fmt.Errorf("sqlstore: broker state tool group id is required")
	}
	if err := state.Action.Validate(); err != nil {
		return core.BrokerState{}, err
	}

	record := newBrokerStateRecord(state, time.Now().UTC())
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.BrokerState{}, core.NewRepositoryError("create broker state", err)
	}
	return created.toDomain(), nil
}

func (s *BrokerStateStore) GetByID(ctx context.Context, id string) (core.BrokerState, error) {
	if s == nil || s.db == nil {
		return core.BrokerState{}, fmt.Errorf("sqlstore: broker state store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.BrokerState{}, fmt.Errorf("sqlstore: broker state id is required")
	}

	record := &brokerStateRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.BrokerState{}, core.NewNotFoundError(
				fmt.Sprintf("sqlstore: broker state not found: %s", id))
		}
		return core.BrokerState{}, core.NewRepositoryError("get broker state", err)
	}
	return record.toDomain(), nil
}

func (s *BrokerStateStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: broker state store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("sqlstore: broker state id is required")
	}
	_, err := s.db.NewDelete().
		Model((*brokerStateRecord)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return core.NewRepositoryError("delete broker state", err)
	}
	return nil
}

var _ core.BrokerStateStore = (*BrokerStateStore)(nil)
