package models

import "fmt"

// Collection names one of the five record kinds in a seed payload.
// The name doubles as the store subdirectory for that kind.
type Collection string

const (
	Conversations Collection = "conversations"
	Messages      Collection = "messages"
	Notes         Collection = "notes"
	Branches      Collection = "branches"
	Snapshots     Collection = "snapshots"
)

// Collections lists every collection in materialization order.
var Collections = []Collection{Conversations, Messages, Notes, Branches, Snapshots}

// ParseCollection validates a user supplied collection name
func ParseCollection(name string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection: %s (must be: conversations, messages, notes, branches, snapshots)", name)
}
