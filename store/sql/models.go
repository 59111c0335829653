package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type resourceServerCredentialRecord struct {
	bun.BaseModel `bun:"table:resource_server_credentials,alias:rsc"`

	ID               string         `bun:"id,pk"`
	TypeID           string         `bun:"type_id,notnull"`
	Metadata         map[string]any `bun:"metadata,type:jsonb,notnull"`
	Value            []byte         `bun:"value,notnull"`
	NextRotationTime *time.Time     `bun:"next_rotation_time,nullzero"`
	DEKAlias         string         `bun:"dek_alias,notnull"`
	CreatedAt        time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type userCredentialRecord struct {
	bun.BaseModel `bun:"table:user_credentials,alias:uc"`

	ID               string         `bun:"id,pk"`
	TypeID           string         `bun:"type_id,notnull"`
	Metadata         map[string]any `bun:"metadata,type:jsonb,notnull"`
	Value            []byte         `bun:"value,notnull"`
	NextRotationTime *time.Time     `bun:"next_rotation_time,nullzero"`
	DEKAlias         string         `bun:"dek_alias,notnull"`
	CreatedAt        time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt        time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type brokerStateRecord struct {
	bun.BaseModel `bun:"table:broker_states,alias:bs"`

	ID             string         `bun:"id,pk"`
	ToolGroupID    string         `bun:"tool_group_id,notnull"`
	ProviderID     string         `bun:"provider_id,notnull"`
	CredentialType string         `bun:"credential_type,notnull"`
	Metadata       map[string]any `bun:"metadata,type:jsonb,notnull"`
	ActionType     string         `bun:"action_type,notnull"`
	ActionURL      string         `bun:"action_url"`
	CreatedAt      time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type toolGroupRecord struct {
	bun.BaseModel `bun:"table:tool_groups,alias:tg"`

	ID                         string         `bun:"id,pk"`
	DisplayName                string         `bun:"display_name,notnull"`
	ProviderID                 string         `bun:"provider_id,notnull"`
	CredentialType             string         `bun:"credential_type,notnull"`
	ResourceServerCredentialID string         `bun:"resource_server_credential_id,notnull"`
	UserCredentialID           *string        `bun:"user_credential_id"`
	Status                     string         `bun:"status,notnull"`
	ReturnURL                  string         `bun:"return_url"`
	Metadata                   map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt                  time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt                  time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
