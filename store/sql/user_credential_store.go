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

// UserCredentialStore persists serialized user credential envelopes. These
// rows carry the rotation deadline the sweep queries against.
type UserCredentialStore struct {
	db   *bun.DB
	repo repository.Repository[*userCredentialRecord]
}

func NewUserCredentialStore(db *bun.DB) (*UserCredentialStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*userCredentialRecord](db, userCredentialHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid user credential repository wiring: %w", err)
		}
	}
	return &UserCredentialStore{db: db, repo: repo}, nil
}

func (s *UserCredentialStore) Create(ctx context.Context, credential core.SerializedCredential) (core.SerializedCredential, error) {
	if s == nil || s.repo == nil {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: user credential store is not configured")
	}
	if err := validateSerializedCredential(credential); err != nil {
		return core.SerializedCredential{}, err
	}

	record := newUserCredentialRecord(credential, time.Now().UTC())
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.SerializedCredential{}, core.NewRepositoryError("create user credential", err)
	}
	return created.toDomain(), nil
}

func (s *UserCredentialStore) GetByID(ctx context.Context, id string) (core.SerializedCredential, error) {
	if s == nil || s.db == nil {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: user credential store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: user credential id is required")
	}

	record := &userCredentialRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.SerializedCredential{}, core.NewNotFoundError(
				fmt.Sprintf("sqlstore: user credential not found: %s", id))
		}
		return core.SerializedCredential{}, core.NewRepositoryError("get user credential", err)
	}
	return record.toDomain(), nil
}

func (s *UserCredentialStore) UpdatePartial(ctx context.Context, id string, in core.UpdateCredentialInput) (core.SerializedCredential, error) {
	if s == nil || s.db == nil {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: user credential store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: user credential id is required")
	}
	if in.IsZero() {
		return s.GetByID(ctx, id)
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		query := tx.NewUpdate().
			Model((*userCredentialRecord)(nil)).
			Where("id = ?", id)
		applyCredentialUpdate(query, in)
		result, execErr := query.Exec(ctx)
		if execErr != nil {
			return execErr
		}
		affected, execErr := result.RowsAffected()
		if execErr != nil {
			return execErr
		}
		if affected == 0 {
			return core.NewNotFoundError(
				fmt.Sprintf("sqlstore: user credential not found: %s", id))
		}
		return nil
	})
	if err != nil {
		if core.IsNotFound(err) {
			return core.SerializedCredential{}, err
		}
		return core.SerializedCredential{}, core.NewRepositoryError("update user credential", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserCredentialStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: user credential store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("sqlstore: user credential id is required")
	}
	_, err := s.db.NewDelete().
		Model((*userCredentialRecord)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return core.NewRepositoryError("delete user credential", err)
	}
	return nil
}

func (s *UserCredentialStore) List(ctx context.Context, page core.Pagination) ([]core.SerializedCredential, int, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("sqlstore: user credential store is not configured")
	}
	limit, offset := normalizePagination(page)
	records, total, err := s.repo.List(ctx,
		repository.OrderBy("created_at ASC"),
		repository.SelectPaginate(limit, offset),
	)
	if err != nil {
		return nil, 0, core.NewRepositoryError("list user credentials", err)
	}
	out := make([]core.SerializedCredential, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, total, nil
}

var _ core.UserCredentialStore = (*UserCredentialStore)(nil)
