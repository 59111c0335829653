package core

import (
	"fmt"
	"strings"
	"time"
)

// ToolGroupStatus tracks where a tool group sits in its brokering
// lifecycle.
type ToolGroupStatus string

const (
	ToolGroupStatusPending  ToolGroupStatus = "pending"
	ToolGroupStatusActive   ToolGroupStatus = "active"
	ToolGroupStatusDisabled ToolGroupStatus = "disabled"
)

func (s ToolGroupStatus) Valid() bool {
	switch s {
	case ToolGroupStatusPending, ToolGroupStatusActive, ToolGroupStatusDisabled:
		return true
	}
	return false
}

func (s ToolGroupStatus) CanTransitionTo(next ToolGroupStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	switch s {
	case ToolGroupStatusPending:
		return next == ToolGroupStatusActive || next == ToolGroupStatusDisabled
	case ToolGroupStatusActive:
		return next == ToolGroupStatusDisabled
	case ToolGroupStatusDisabled:
		return next == ToolGroupStatusActive
	}
	return false
}

// ToolGroup is a configured integration with one provider plus a chosen
// credential scheme. UserCredentialID stays nil until a brokering flow
// resolves.
type ToolGroup struct {
	ID                         string
	DisplayName                string
	ProviderID                 string
	CredentialType             CredentialType
	ResourceServerCredentialID string
	UserCredentialID           *string
	Status                     ToolGroupStatus
	ReturnURL                  string
	Metadata                   Metadata
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

func (g ToolGroup) Validate() error {
	if strings.TrimSpace(g.DisplayName) == "" {
		return fmt.Errorf("core: tool group display name is required")
	}
	if strings.TrimSpace(g.ProviderID) == "" {
		return fmt.Errorf("core: tool group provider id is required")
	}
	if !g.CredentialType.Valid() {
		return fmt.Errorf("core: tool group credential type %q is invalid", g.CredentialType)
	}
	if strings.TrimSpace(g.ResourceServerCredentialID) == "" {
		return fmt.Errorf("core: tool group resource server credential id is required")
	}
	if strings.TrimSpace(string(g.Status)) != "" && !g.Status.Valid() {
		return fmt.Errorf("core: tool group status %q is invalid", g.Status)
	}
	return nil
}

func (g ToolGroup) Clone() ToolGroup {
	cloned := g
	cloned.Metadata = g.Metadata.Clone()
	if g.UserCredentialID != nil {
		id := *g.UserCredentialID
		cloned.UserCredentialID = &id
	}
	return cloned
}
