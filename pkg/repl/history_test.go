package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistoryBound(t *testing.T) {
	h := NewHistory(3, "")
	for _, in := range []string{"a = 1", "b = 2", "c = 3", "d = 4"} {
		h.Add(in)
	}
	want := []string{"b = 2", "c = 3", "d = 4"}
	if got := h.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries = %q, want %q", got, want)
	}
}

func TestHistorySkipsBlankAndRepeats(t *testing.T) {
	h := NewHistory(0, "")
	h.Add("x = 1")
	h.Add("x = 1")
	h.Add("   ")
	h.Add("print(x)")
	h.Add("x = 1")
	want := []string{"x = 1", "print(x)", "x = 1"}
	if got := h.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries = %q, want %q", got, want)
	}
	if h.Len() != 3 {
		t.Errorf("Len = %d", h.Len())
	}
}

func TestHistorySkipsRepeatAtBound(t *testing.T) {
	h := NewHistory(2, "")
	h.Add("a = 1")
	h.Add("b = 2")
	h.Add("b = 2")
	h.Add("a = 1")
	want := []string{"b = 2", "a = 1"}
	if got := h.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries = %q, want %q", got, want)
	}
}

func TestHistoryEntriesDoesNotConsume(t *testing.T) {
	h := NewHistory(10, "")
	h.Add("a")
	h.Add("b")
	first := h.Entries()
	second := h.Entries()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("%q != %q", first, second)
	}
}

func TestHistorySaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")
	h := NewHistory(10, path)
	h.Add("x = 1")
	h.Add("while (x < 3) {\n  x = x + 1\n}")
	h.Add(`print(x) // a \ slash`)
	if err := h.Save(); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v", info.Mode().Perm())
	}

	loaded := NewHistory(10, path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}
	if got, want := loaded.Entries(), h.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("loaded %q, want %q", got, want)
	}
}

func TestHistoryLoadMissingFile(t *testing.T) {
	h := NewHistory(10, filepath.Join(t.TempDir(), "none"))
	if err := h.Load(); err != nil {
		t.Errorf("Load on missing file: %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len = %d", h.Len())
	}
}

func TestHistoryInMemoryIgnoresPersistence(t *testing.T) {
	h := NewHistory(10, "")
	h.Add("x")
	if err := h.Save(); err != nil {
		t.Error(err)
	}
	if err := h.Load(); err != nil {
		t.Error(err)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", "a\nb", `back\slash`, "\\n literal", "trailing\\"} {
		if got := unescape(escape(s)); got != s {
			t.Errorf("unescape(escape(%q)) = %q", s, got)
		}
	}
}
