package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RawJSON persists an opaque JSON payload as JSONB.
type RawJSON json.RawMessage

// Value marshals the payload for Postgres, storing empty payloads as NULL.
func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	if !json.Valid(r) {
		return nil, fmt.Errorf("raw json: invalid payload")
	}
	return string(r), nil
}

// Scan copies the stored JSONB.
func (r *RawJSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = nil
	case string:
		*r = RawJSON(v)
	case []byte:
		*r = append(RawJSON(nil), v...)
	default:
		return fmt.Errorf("raw json: unsupported scan type %T", value)
	}
	return nil
}

// MarshalJSON emits the payload verbatim.
func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON stores a copy of data.
func (r *RawJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}
