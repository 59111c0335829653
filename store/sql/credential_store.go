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

// ResourceServerCredentialStore persists serialized resource server
// credential envelopes.
type ResourceServerCredentialStore struct {
	db   *bun.DB
	repo repository.Repository[*resourceServerCredentialRecord]
}

func NewResourceServerCredentialStore(db *bun.DB) (*ResourceServerCredentialStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*resourceServerCredentialRecord](db, resourceServerCredentialHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid resource server credential repository wiring: %w", err)
		}
	}
	return &ResourceServerCredentialStore{db: db, repo: repo}, nil
}

func (s *ResourceServerCredentialStore) Create(ctx context.Context, credential core.SerializedCredential) (core.SerializedCredential, error) {
	if s == nil || s.repo == nil {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: resource server credential store is not configured")
	}
	if err := validateSerializedCredential(credential); err != nil {
		return core.SerializedCredential{}, err
	}

	record := newResourceServerCredentialRecord(credential, time.Now().UTC())
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.SerializedCredential{}, core.NewRepositoryError("create resource server credential", err)
	}
	return created.toDomain(), nil
}

func (s *ResourceServerCredentialStore) GetByID(ctx context.Context, id string) (core.SerializedCredential, error) {
	if s == nil || s.db == nil {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: resource server credential store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: resource server credential id is required")
	}

	record := &resourceServerCredentialRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.SerializedCredential{}, core.NewNotFoundError(
				fmt.Sprintf("sqlstore: resource server credential not found: %s", id))
		}
		return core.SerializedCredential{}, core.NewRepositoryError("get resource server credential", err)
	}
	return record.toDomain(), nil
}

func (s *ResourceServerCredentialStore) UpdatePartial(ctx context.Context, id string, in core.UpdateCredentialInput) (core.SerializedCredential, error) {
	if s == nil || s.db == nil {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: resource server credential store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.SerializedCredential{}, fmt.Errorf("sqlstore: resource server credential id is required")
	}
	if in.IsZero() {
		return s.GetByID(ctx, id)
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		query := tx.NewUpdate().
			Model((*resourceServerCredentialRecord)(nil)).
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
				fmt.Sprintf("sqlstore: resource server credential not found: %s", id))
		}
		return nil
	})
	if err != nil {
		if core.IsNotFound(err) {
			return core.SerializedCredential{}, err
		}
		return core.SerializedCredential{}, core.NewRepositoryError("update resource server credential", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ResourceServerCredentialStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: resource server credential store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("sqlstore: resource server credential id is required")
	}
	_, err := s.db.NewDelete().
		Model((*resourceServerCredentialRecord)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return core.NewRepositoryError("delete resource server credential", err)
	}
	return nil
}

func (s *ResourceServerCredentialStore) List(ctx context.Context, page core.Pagination) ([]core.SerializedCredential, int, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("sqlstore: resource server credential store is not configured")
	}
	limit, offset := normalizePagination(page)
	records, total, err := s.repo.List(ctx,
		repository.OrderBy("created_at ASC"),
		repository.SelectPaginate(limit, offset),
	)
	if err != nil {
		return nil, 0, core.NewRepositoryError("list resource server credentials", err)
	}
	out := make([]core.SerializedCredential, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, total, nil
}

func applyCredentialUpdate(query *bun.UpdateQuery, in core.UpdateCredentialInput) {
	if in.Value != nil {
		query.Set("value = ?", append([]byte(nil), in.Value...))
	}
	if in.Metadata != nil {
		query.Set("metadata = ?", copyAnyMap(in.Metadata))
	}
	if in.NextRotationTime != nil {
		query.Set("next_rotation_time = ?", in.NextRotationTime.UTC())
	}
	updatedAt := time.Now().UTC()
	if in.UpdatedAt != nil {
		updatedAt = in.UpdatedAt.UTC()
	}
	query.Set("updated_at = ?", updatedAt)
}

func validateSerializedCredential(credential core.SerializedCredential) error {
	if strings.TrimSpace(credential.ID) == "" {
		return fmt.Errorf("sqlstore: credential id is required")
	}
	if strings.TrimSpace(credential.TypeID) == "" {
		return fmt.Errorf("sqlstore: credential type id is required")
	}
	if len(credential.Value) == 0 {
		return fmt.Errorf("sqlstore: credential value is required")
	}
	if strings.TrimSpace(credential.DEKAlias) == "" {
		return fmt.Errorf("sqlstore: credential dek alias is required")
	}
	return nil
}

func normalizePagination(page core.Pagination) (int, int) {
	limit := page.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

var _ core.ResourceServerCredentialStore = (*ResourceServerCredentialStore)(nil)
