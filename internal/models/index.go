package models

// IndexVersion is the schema version written to index.json
const IndexVersion = 1

// Index represents the index.json summary record at the store root
type Index struct {
	Version       int   `json:"version"`
	GeneratedAt   int64 `json:"generated_at"`
	Conversations int   `json:"conversations"`
	Messages      int   `json:"messages"`
	Notes         int   `json:"notes"`
	Branches      int   `json:"branches"`
	Snapshots     int   `json:"snapshots"`
}

// Count returns the count recorded for a collection
func (i Index) Count(c Collection) int {
	switch c {
	case Conversations:
		return i.Conversations
	case Messages:
		return i.Messages
	case Notes:
		return i.Notes
	case Branches:
		return i.Branches
	case Snapshots:
		return i.Snapshots
	}
	return 0
}

// SetCount records the count for a collection
func (i *Index) SetCount(c Collection, n int) {
	switch c {
	case Conversations:
		i.Conversations = n
	case Messages:
		i.Messages = n
	case Notes:
		i.Notes = n
	case Branches:
		i.Branches = n
	case Snapshots:
		i.Snapshots = n
	}
}

// Summary is what a seed run reports on stdout
type Summary struct {
	Seeded Index  `json:"seeded"`
	Store  string `json:"store"`
}
