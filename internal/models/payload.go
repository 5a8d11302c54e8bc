package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Payload is a decoded seed document. Keys other than the five
// collections are ignored.
type Payload struct {
	Conversations []Record
	Messages      []Record
	Notes         []Record
	Branches      []Record
	Snapshots     []Record
}

// DecodePayload parses a seed document. The top level must be a JSON
// object. A missing or null collection decodes as empty; anything else
// that is not an array of valid records is an error.
func DecodePayload(data []byte) (*Payload, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return nil, errors.New("seed payload must be a JSON object")
	}

	p := &Payload{}
	for _, c := range Collections {
		raw, ok := top[string(c)]
		if !ok || string(raw) == "null" {
			continue
		}

		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%s must be an array", c)
		}

		records := make([]Record, len(items))
		for i, item := range items {
			if err := records[i].UnmarshalJSON(item); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", c, i, err)
			}
		}
		p.set(c, records)
	}

	return p, nil
}

// Records returns the records of one collection in source order
func (p *Payload) Records(c Collection) []Record {
	switch c {
	case Conversations:
		return p.Conversations
	case Messages:
		return p.Messages
	case Notes:
		return p.Notes
	case Branches:
		return p.Branches
	case Snapshots:
		return p.Snapshots
	}
	return nil
}

func (p *Payload) set(c Collection, records []Record) {
	switch c {
	case Conversations:
		p.Conversations = records
	case Messages:
		p.Messages = records
	case Notes:
		p.Notes = records
	case Branches:
		p.Branches = records
	case Snapshots:
		p.Snapshots = records
	}
}
