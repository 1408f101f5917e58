package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHistory_Persist(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)

	adds := []HistoryEntry{
		{"Color(1, 2, 3);", modeEval},
		{"kind path", modeCtrl},
		{"Color(1, 2, 3);", modeEval},
		{"  ", modeEval},
		{"Range(8);", modeEval},
		{"kind path", modeCtrl},
	}

	for _, e := range adds {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"Color(1, 2, 3);", modeEval},
		{"Range(8);", modeEval},
		{"kind path", modeCtrl},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "E:Color(1, 2, 3);\nE:Range(8);\nC:kind path\n" {
		t.Errorf("file = %q", got)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	if loaded.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", loaded.Len(), len(want))
	}

	for i, w := range want {
		if got, err := loaded.Entry(i); err != nil || got != w {
			t.Errorf("Entry(%d) = %+v, %v; want %+v", i, got, err, w)
		}
	}

	if _, err := loaded.Entry(len(want)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry(out of range) error = %v", err)
	}
}

func TestHistory_LoadUnprefixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	if err := os.WriteFile(path, []byte("Sky(1);\n\nC:quit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if e, _ := h.Entry(0); e != (HistoryEntry{"Sky(1);", modeEval}) {
		t.Errorf("Entry(0) = %+v", e)
	}

	if e, _ := h.Entry(1); e != (HistoryEntry{"quit", modeCtrl}) {
		t.Errorf("Entry(1) = %+v", e)
	}
}

func TestHistory_Missing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "none", baseHistory))

	if err := h.Load(); err != nil {
		t.Errorf("Load() = %v", err)
	}

	mem := NewHistory("")
	if err := mem.Add("Sky(1);", modeEval); err != nil || mem.Len() != 1 {
		t.Errorf("in-memory Add: len=%d err=%v", mem.Len(), err)
	}
}
