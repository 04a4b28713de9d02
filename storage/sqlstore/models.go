package sqlstore

import (
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type stateRecord struct {
	bun.BaseModel `bun:"table:client_state,alias:cs"`

	ID        string    `bun:"id,pk"`
	EntryKey  string    `bun:"entry_key,notnull,unique"`
	Value     string    `bun:"entry_value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func stateHandlers() repository.ModelHandlers[*stateRecord] {
	return repository.ModelHandlers[*stateRecord]{
		NewRecord: func() *stateRecord {
			return &stateRecord{}
		},
		GetID: func(record *stateRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *stateRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *stateRecord) string {
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
