package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRecordUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		wantErr string
	}{
		{
			name:   "simple record",
			input:  `{"id":"c1","title":"main"}`,
			wantID: "c1",
		},
		{
			name:   "unknown fields pass through",
			input:  `{"extra":{"deep":[1,2,3]},"id":"n_1"}`,
			wantID: "n_1",
		},
		{
			name:   "non-ascii id",
			input:  `{"id":"заметка"}`,
			wantID: "заметка",
		},
		{
			name:    "array instead of object",
			input:   `["c1"]`,
			wantErr: "not a JSON object",
		},
		{
			name:    "null record",
			input:   `null`,
			wantErr: "not a JSON object",
		},
		{
			name:    "missing id",
			input:   `{"title":"no id"}`,
			wantErr: "no id field",
		},
		{
			name:    "numeric id",
			input:   `{"id":42}`,
			wantErr: "must be a string",
		},
		{
			name:    "null id",
			input:   `{"id":null}`,
			wantErr: "must be a string",
		},
		{
			name:    "empty id",
			input:   `{"id":""}`,
			wantErr: "empty",
		},
		{
			name:    "path traversal",
			input:   `{"id":"../escape"}`,
			wantErr: "path separator",
		},
		{
			name:    "dot-dot id",
			input:   `{"id":".."}`,
			wantErr: "not a valid file name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Record
			err := json.Unmarshal([]byte(tt.input), &r)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got none", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.ID != tt.wantID {
				t.Errorf("expected id %q, got %q", tt.wantID, r.ID)
			}
			if string(r.Raw) != tt.input {
				t.Errorf("raw bytes changed: %s", r.Raw)
			}
		})
	}
}

func TestRecordMarshalKeepsFieldOrder(t *testing.T) {
	input := `{"id":"m1","parent_id":null,"role":"user","content":"héllo"}`

	var r Record
	if err := json.Unmarshal([]byte(input), &r); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(out) != input {
		t.Errorf("expected %s, got %s", input, out)
	}

	fields, err := r.Fields()
	if err != nil {
		t.Fatalf("failed to decode fields: %v", err)
	}
	if fields["parent_id"] != nil {
		t.Errorf("expected nil parent_id, got %v", fields["parent_id"])
	}
}

func TestDecodePayload(t *testing.T) {
	t.Run("all collections", func(t *testing.T) {
		p, err := DecodePayload([]byte(`{
			"conversations": [{"id": "c1"}],
			"messages": [{"id": "m1"}, {"id": "m2"}],
			"notes": [],
			"branches": [{"id": "b1"}],
			"snapshots": [{"id": "s1"}],
			"ignored": true
		}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := map[Collection]int{
			Conversations: 1,
			Messages:      2,
			Notes:         0,
			Branches:      1,
			Snapshots:     1,
		}
		for c, n := range want {
			if got := len(p.Records(c)); got != n {
				t.Errorf("%s: expected %d records, got %d", c, n, got)
			}
		}

		if p.Messages[0].ID != "m1" || p.Messages[1].ID != "m2" {
			t.Errorf("source order not preserved: %s, %s", p.Messages[0].ID, p.Messages[1].ID)
		}
	})

	t.Run("missing and null collections are empty", func(t *testing.T) {
		p, err := DecodePayload([]byte(`{"conversations": null}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, c := range Collections {
			if len(p.Records(c)) != 0 {
				t.Errorf("%s: expected no records", c)
			}
		}
	})

	invalid := []struct {
		name  string
		input string
	}{
		{"top-level array", `[]`},
		{"top-level scalar", `"seed"`},
		{"top-level null", `null`},
		{"not json", `{`},
		{"collection is object", `{"notes": {"id": "n1"}}`},
		{"record without id", `{"branches": [{"id": "b1"}, {"source": "c1"}]}`},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePayload([]byte(tt.input)); err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}

func TestParseCollection(t *testing.T) {
	for _, c := range Collections {
		got, err := ParseCollection(string(c))
		if err != nil {
			t.Errorf("unexpected error for %s: %v", c, err)
		}
		if got != c {
			t.Errorf("expected %s, got %s", c, got)
		}
	}

	if _, err := ParseCollection("exports"); err == nil {
		t.Error("expected error for unknown collection")
	}
}

func TestIndexCounts(t *testing.T) {
	var idx Index
	for i, c := range Collections {
		idx.SetCount(c, i+1)
	}
	for i, c := range Collections {
		if got := idx.Count(c); got != i+1 {
			t.Errorf("%s: expected %d, got %d", c, i+1, got)
		}
	}

	out, err := json.Marshal(Index{Version: IndexVersion, GeneratedAt: 10, Notes: 2})
	if err != nil {
		t.Fatalf("failed to marshal index: %v", err)
	}
	want := `{"version":1,"generated_at":10,"conversations":0,"messages":0,"notes":2,"branches":0,"snapshots":0}`
	if string(out) != want {
		t.Errorf("expected %s, got %s", want, out)
	}
}
