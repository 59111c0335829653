package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func resourceServerCredentialHandlers() repository.ModelHandlers[*resourceServerCredentialRecord] {
	return repository.ModelHandlers[*resourceServerCredentialRecord]{
		NewRecord: func() *resourceServerCredentialRecord {
			return &resourceServerCredentialRecord{}
		},
		GetID: func(record *resourceServerCredentialRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *resourceServerCredentialRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *resourceServerCredentialRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func userCredentialHandlers() repository.ModelHandlers[*userCredentialRecord] {
	return repository.ModelHandlers[*userCredentialRecord]{
		NewRecord: func() *userCredentialRecord {
			return &userCredentialRecord{}
		},
		GetID: func(record *userCredentialRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *userCredentialRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *userCredentialRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func brokerStateHandlers() repository.ModelHandlers[*brokerStateRecord] {
	return repository.ModelHandlers[*brokerStateRecord]{
		NewRecord: func() *brokerStateRecord {
			return &brokerStateRecord{}
		},
		GetID: func(record *brokerStateRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *brokerStateRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *brokerStateRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func toolGroupHandlers() repository.ModelHandlers[*toolGroupRecord] {
	return repository.ModelHandlers[*toolGroupRecord]{
		NewRecord: func() *toolGroupRecord {
			return &toolGroupRecord{}
		},
		GetID: func(record *toolGroupRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *toolGroupRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *toolGroupRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
