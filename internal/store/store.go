// Package store lays seed records out as one JSON file per record.
//
// Layout, rooted at <workspace>/.codex-notes:
//
//	conversations/<id>.json
//	messages/<id>.json
//	notes/<id>.json
//	branches/<id>.json
//	snapshots/<id>.json
//	index.json
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/pders01/notes-seed/internal/models"
)

const (
	// DirName is the store directory inside a workspace
	DirName = ".codex-notes"
	// IndexFile is the summary record at the store root
	IndexFile = "index.json"
)

// ErrFilesystem marks failures creating, writing or removing store files
var ErrFilesystem = errors.New("filesystem error")

// ErrNotFound is returned when the store directory does not exist
var ErrNotFound = errors.New("store not found")

// Store reads and writes the per-record file layout
type Store struct {
	fs   afero.Fs
	root string
}

// New returns a store rooted at <workspace>/.codex-notes on fs
func New(fs afero.Fs, workspace string) *Store {
	return &Store{
		fs:   fs,
		root: filepath.Join(workspace, DirName),
	}
}

// Root returns the store directory
func (s *Store) Root() string {
	return s.root
}

// RecordPath returns <root>/<collection>/<id>.json
func (s *Store) RecordPath(c models.Collection, id string) string {
	return filepath.Join(s.root, string(c), id+".json")
}

// IndexPath returns <root>/index.json
func (s *Store) IndexPath() string {
	return filepath.Join(s.root, IndexFile)
}

// Exists reports whether the store directory is present
func (s *Store) Exists() (bool, error) {
	ok, err := afero.DirExists(s.fs, s.root)
	if err != nil {
		return false, fsError("stat", s.root, err)
	}
	return ok, nil
}

// Prepare removes the whole store when replace is set, so the next run
// starts from an empty tree. Without replace it does nothing.
func (s *Store) Prepare(replace bool) error {
	if !replace {
		return nil
	}
	if err := s.fs.RemoveAll(s.root); err != nil {
		return fsError("remove", s.root, err)
	}
	return nil
}

// WriteRecord writes r to <root>/<collection>/<id>.json, replacing any
// existing file with the same id
func (s *Store) WriteRecord(c models.Collection, r models.Record) error {
	if err := models.ValidateID(r.ID); err != nil {
		return err
	}

	data, err := formatRecord(r.Raw)
	if err != nil {
		return fmt.Errorf("failed to format %s record %s: %w", c, r.ID, err)
	}

	return s.writeFile(s.RecordPath(c, r.ID), data)
}

// formatRecord re-emits raw with 2-space indentation. Key order and number
// text are kept; strings are rewritten with non-ASCII and <>& left
// unescaped, so "Caf\u00e9" lands on disk as "Café".
func formatRecord(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	type frame struct {
		object bool
		n      int
	}
	var (
		compact bytes.Buffer
		stack   []frame
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
			stack = stack[:len(stack)-1]
			compact.WriteByte(byte(d))
			continue
		}

		if len(stack) > 0 {
			top := &stack[len(stack)-1]
			switch {
			case top.object && top.n%2 == 1:
				compact.WriteByte(':')
			case top.n > 0:
				compact.WriteByte(',')
			}
			top.n++
		}

		switch v := tok.(type) {
		case json.Delim:
			compact.WriteByte(byte(v))
			stack = append(stack, frame{object: v == '{'})
		case string:
			if err := writeString(&compact, v); err != nil {
				return nil, err
			}
		case json.Number:
			compact.WriteString(v.String())
		case bool:
			compact.WriteString(strconv.FormatBool(v))
		case nil:
			compact.WriteString("null")
		}
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

// WriteIndex replaces index.json with idx
func (s *Store) WriteIndex(idx models.Index) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx); err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	return s.writeFile(s.IndexPath(), buf.Bytes())
}

// ReadIndex loads index.json
func (s *Store) ReadIndex() (*models.Index, error) {
	data, err := afero.ReadFile(s.fs, s.IndexPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s has no %s", ErrNotFound, s.root, IndexFile)
		}
		return nil, fsError("read", s.IndexPath(), err)
	}

	var idx models.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.IndexPath(), err)
	}
	return &idx, nil
}

// ReadRecord loads one record file as a field map
func (s *Store) ReadRecord(c models.Collection, id string) (map[string]any, error) {
	if err := models.ValidateID(id); err != nil {
		return nil, err
	}

	path := s.RecordPath(c, id)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fsError("read", path, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return fields, nil
}

// ListIDs returns the ids of every record file in a collection, sorted.
// A missing collection directory yields an empty list.
func (s *Store) ListIDs(c models.Collection) ([]string, error) {
	dir := filepath.Join(s.root, string(c))
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fsError("read", dir, err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// CountRecords counts record files in a collection
func (s *Store) CountRecords(c models.Collection) (int, error) {
	ids, err := s.ListIDs(c)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// RebuildIndex recounts the record files on disk and rewrites index.json.
// Seed runs do not use this: their index counts what they wrote.
func (s *Store) RebuildIndex(generatedAt int64) (*models.Index, error) {
	ok, err := s.Exists()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.root)
	}

	idx := models.Index{Version: models.IndexVersion, GeneratedAt: generatedAt}
	for _, c := range models.Collections {
		n, err := s.CountRecords(c)
		if err != nil {
			return nil, err
		}
		idx.SetCount(c, n)
	}

	if err := s.WriteIndex(idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// writeFile writes data next to path and renames it into place so
// readers never see a partial file
func (s *Store) writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fsError("create directory", dir, err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0644); err != nil {
		return fsError("write", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fsError("replace", path, err)
	}
	return nil
}

func fsError(op, path string, err error) error {
	return fmt.Errorf("%w: failed to %s %s: %w", ErrFilesystem, op, path, err)
}
