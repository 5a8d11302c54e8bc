package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	errNotObject = errors.New("record is not a JSON object")
	errMissingID = errors.New("record has no id field")
)

// Record is a single seed entity. Its fields are opaque payload; only "id"
// is inspected, because it names the record's file in the store.
// Raw keeps the record bytes exactly as received so field order and nested
// values survive the trip to disk.
type Record struct {
	ID  string
	Raw json.RawMessage
}

// UnmarshalJSON accepts any JSON object carrying a usable string id
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return errNotObject
	}

	rawID, ok := fields["id"]
	if !ok {
		return errMissingID
	}

	var id string
	if len(rawID) == 0 || rawID[0] != '"' || json.Unmarshal(rawID, &id) != nil {
		return fmt.Errorf("record id must be a string, got %s", string(rawID))
	}
	if err := ValidateID(id); err != nil {
		return err
	}

	r.ID = id
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON returns the record bytes unchanged
func (r Record) MarshalJSON() ([]byte, error) {
	if len(r.Raw) == 0 {
		return nil, errNotObject
	}
	return r.Raw, nil
}

// Fields decodes the record into a generic field map
func (r Record) Fields() (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(r.Raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", r.ID, err)
	}
	return fields, nil
}

// ValidateID rejects ids that cannot be used verbatim as a file name
func ValidateID(id string) error {
	switch {
	case id == "":
		return errors.New("record id is empty")
	case id == "." || id == "..":
		return fmt.Errorf("record id %q is not a valid file name", id)
	case strings.ContainsAny(id, "/\\\x00"):
		return fmt.Errorf("record id %q contains a path separator", id)
	}
	return nil
}
