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

// ToolGroupStore persists tool groups and serves the rotation sweep query.
type ToolGroupStore struct {
	db   *bun.DB
	repo repository.Repository[*toolGroupRecord]
}

func NewToolGroupStore(db *bun.DB) (*ToolGroupStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*toolGroupRecord](db, toolGroupHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid tool group repository wiring: %w", err)
		}
	}
	return &ToolGroupStore{db: db, repo: repo}, nil
}

func (s *ToolGroupStore) Create(ctx context.Context, group core.ToolGroup) (core.ToolGroup, error) {
	if s == nil || s.repo == nil {
		return core.ToolGroup{}, fmt.Errorf("sqlstore: tool group store is not configured")
	}
	if strings.TrimSpace(group.ID) == "" {
		return core.ToolGroup{}, fmt.Errorf("sqlstore: tool group id is required")
	}
	if err := group.Validate(); err != nil {
		return core.ToolGroup{}, err
	}
	if strings.TrimSpace(string(group.Status)) == "" {
		group.Status = core.ToolGroupStatusPending
	}

	record := newToolGroupRecord(group, time.Now().UTC())
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return core.ToolGroup{}, core.NewRepositoryError("create tool group", err)
	}
	return created.toDomain(), nil
}

func (s *ToolGroupStore) GetByID(ctx context.Context, id string) (core.ToolGroup, error) {
	if s == nil || s.db == nil {
		return core.ToolGroup{}, fmt.Errorf("sqlstore: tool group store is not configured")
	}
	record, err := s.findByID(ctx, id)
	if err != nil {
		return core.ToolGroup{}, err
	}
	return record.toDomain(), nil
}

func (s *ToolGroupStore) UpdateCredentialRefs(ctx context.Context, id string, refs core.CredentialRefs) (core.ToolGroup, error) {
	if s == nil || s.repo == nil {
		return core.ToolGroup{}, fmt.Errorf("sqlstore: tool group store is not configured")
	}
	current, err := s.findByID(ctx, id)
	if err != nil {
		return core.ToolGroup{}, err
	}
	if refs.ResourceServerCredentialID != nil {
		current.ResourceServerCredentialID = strings.TrimSpace(*refs.ResourceServerCredentialID)
	}
	if refs.UserCredentialID != nil {
		userCredentialID := strings.TrimSpace(*refs.UserCredentialID)
		current.UserCredentialID = &userCredentialID
	}
	current.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, current, repository.UpdateByID(current.ID))
	if err != nil {
		return core.ToolGroup{}, core.NewRepositoryError("update tool group credential refs", err)
	}
	return updated.toDomain(), nil
}

func (s *ToolGroupStore) UpdateStatus(ctx context.Context, id string, status core.ToolGroupStatus) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: tool group store is not configured")
	}
	if !status.Valid() {
		return fmt.Errorf("sqlstore: tool group status %q is invalid", status)
	}
	current, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}
	if !core.ToolGroupStatus(current.Status).CanTransitionTo(status) {
		return fmt.Errorf("sqlstore: tool group status transition %q -> %q is invalid", current.Status, status)
	}
	current.Status = string(status)
	current.UpdatedAt = time.Now().UTC()

	if _, err := s.repo.Update(ctx, current, repository.UpdateByID(current.ID)); err != nil {
		return core.NewRepositoryError("update tool group status", err)
	}
	return nil
}

// ListWithCredentials pages through tool groups together with their
// credential rows. A RotationDueBefore bound restricts the result to groups
// where either credential carries a rotation deadline at or before the
// bound; groups without a user credential still match on the resource
// server deadline.
func (s *ToolGroupStore) ListWithCredentials(ctx context.Context, query core.ToolGroupQuery) ([]core.ToolGroupWithCredentials, int, error) {
	if s == nil || s.db == nil {
		return nil, 0, fmt.Errorf("sqlstore: tool group store is not configured")
	}
	limit, offset := normalizePagination(query.Page)

	var records []*toolGroupRecord
	selectQuery := s.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at ASC").
		Limit(limit).
		Offset(offset)
	if query.Status != nil {
		selectQuery = selectQuery.Where("?TableAlias.status = ?", string(*query.Status))
	}
	if query.RotationDueBefore != nil {
		bound := query.RotationDueBefore.UTC()
		selectQuery = selectQuery.
			Join("JOIN resource_server_credentials AS rsc ON rsc.id = ?TableAlias.resource_server_credential_id").
			Join("LEFT JOIN user_credentials AS uc ON uc.id = ?TableAlias.user_credential_id").
			Where("(rsc.next_rotation_time IS NOT NULL AND rsc.next_rotation_time <= ?) OR (uc.next_rotation_time IS NOT NULL AND uc.next_rotation_time <= ?)", bound, bound)
	}

	total, err := selectQuery.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, core.NewRepositoryError("list tool groups", err)
	}

	out := make([]core.ToolGroupWithCredentials, 0, len(records))
	for _, record := range records {
		entry, hydrateErr := s.hydrateCredentials(ctx, record)
		if hydrateErr != nil {
			return nil, 0, hydrateErr
		}
		out = append(out, entry)
	}
	return out, total, nil
}

func (s *ToolGroupStore) hydrateCredentials(ctx context.Context, record *toolGroupRecord) (core.ToolGroupWithCredentials, error) {
	entry := core.ToolGroupWithCredentials{ToolGroup: record.toDomain()}

	resourceServer := &resourceServerCredentialRecord{}
	err := s.db.NewSelect().
		Model(resourceServer).
		Where("?TableAlias.id = ?", record.ResourceServerCredentialID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.ToolGroupWithCredentials{}, core.NewNotFoundError(
				fmt.Sprintf("sqlstore: resource server credential not found: %s", record.ResourceServerCredentialID))
		}
		return core.ToolGroupWithCredentials{}, core.NewRepositoryError("get resource server credential", err)
	}
	entry.ResourceServerCredential = resourceServer.toDomain()

	if record.UserCredentialID == nil || strings.TrimSpace(*record.UserCredentialID) == "" {
		return entry, nil
	}
	user := &userCredentialRecord{}
	err = s.db.NewSelect().
		Model(user).
		Where("?TableAlias.id = ?", *record.UserCredentialID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.ToolGroupWithCredentials{}, core.NewNotFoundError(
				fmt.Sprintf("sqlstore: user credential not found: %s", *record.UserCredentialID))
		}
		return core.ToolGroupWithCredentials{}, core.NewRepositoryError("get user credential", err)
	}
	userCredential := user.toDomain()
	entry.UserCredential = &userCredential
	return entry, nil
}

func (s *ToolGroupStore) findByID(ctx context.Context, id string) (*toolGroupRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("sqlstore: tool group id is required")
	}
	record := &toolGroupRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NewNotFoundError(fmt.Sprintf("sqlstore: tool group not found: %s", id))
		}
		return nil, core.NewRepositoryError("get tool group", err)
	}
	return record, nil
}

var _ core.ToolGroupStore = (*ToolGroupStore)(nil)
