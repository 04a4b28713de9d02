package session

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UserRecord is the backend-defined identity payload. The client never
// depends on its shape beyond storing it verbatim and reading a few display
// fields, so it stays an open map rather than a fixed struct.
type UserRecord map[string]any

// ParseUserRecord decodes a persisted user entry. A payload that is not a
// JSON object is corruption, not a user.
func ParseUserRecord(raw string) (UserRecord, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("session: empty user payload")
	}
	var record UserRecord
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return nil, fmt.Errorf("session: decode user payload: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("session: user payload is not an object")
	}
	return record, nil
}

// Encode serializes the record for persistence.
func (u UserRecord) Encode() (string, error) {
	if u == nil {
		return "", fmt.Errorf("session: user record is nil")
	}
	payload, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("session: encode user record: %w", err)
	}
	return string(payload), nil
}

func (u UserRecord) Clone() UserRecord {
	if u == nil {
		return nil
	}
	copied := make(UserRecord, len(u))
	for key, value := range u {
		copied[key] = value
	}
	return copied
}

// ID returns the backend identifier rendered as a string, or "" when absent.
func (u UserRecord) ID() string {
	return u.stringField("id")
}

func (u UserRecord) Username() string {
	return u.stringField("username")
}

func (u UserRecord) Email() string {
	return u.stringField("email")
}

func (u UserRecord) stringField(key string) string {
	if u == nil {
		return ""
	}
	switch typed := u[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	case float64:
		if typed == float64(int64(typed)) {
			return fmt.Sprintf("%d", int64(typed))
		}
		return fmt.Sprintf("%v", typed)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}
