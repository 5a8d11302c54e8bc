// Package seed holds the document served by the seed server.
package seed

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pders01/notes-seed/internal/models"
)

// ErrInvalidSeedFormat is returned when a seed file's top-level value is
// not a JSON object
var ErrInvalidSeedFormat = errors.New("seed file must be a JSON object")

//go:embed default_seed.json
var defaultSeed []byte

// Document is an immutable, pre-encoded seed document. It is safe for
// concurrent use since nothing mutates it after Load returns.
type Document struct {
	body   []byte
	counts map[models.Collection]int
}

// Default returns the built-in seed document
func Default() *Document {
	doc, err := parse(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("built-in seed is invalid: %v", err))
	}
	return doc
}

// Load returns the built-in document when path is empty, otherwise the
// JSON object stored at path
func Load(path string) (*Document, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	doc, err := parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func parse(raw []byte) (*Document, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to parse seed JSON: %w", err)
	}

	top, ok := v.(map[string]any)
	if !ok {
		return nil, ErrInvalidSeedFormat
	}

	// Compact keeps key and element order, so /seed serves the file as written
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("failed to compact seed JSON: %w", err)
	}

	counts := make(map[models.Collection]int, len(models.Collections))
	for _, c := range models.Collections {
		if items, ok := top[string(c)].([]any); ok {
			counts[c] = len(items)
		}
	}

	return &Document{body: buf.Bytes(), counts: counts}, nil
}

// Bytes returns the encoded document. Callers must not modify the slice.
func (d *Document) Bytes() []byte {
	return d.body
}

// Count reports how many entries a collection holds, or 0 when the
// collection is absent or not an array
func (d *Document) Count(c models.Collection) int {
	return d.counts[c]
}
