package repl

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/edwingeng/deque"
	"github.com/gofrs/flock"
)

// DefaultHistorySize bounds History when no size is given.
const DefaultHistorySize = 500

// History is a bounded list of previous inputs, oldest first, optionally
// persisted to a file. The file is guarded by a sibling .lock file so
// concurrent shells do not interleave writes.
type History struct {
	entries deque.Deque
	max     int
	path    string
	lock    *flock.Flock
}

// NewHistory creates a history holding at most max entries. An empty path
// keeps it in memory only.
func NewHistory(max int, path string) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	h := &History{
		entries: deque.NewDeque(),
		max:     max,
		path:    path,
	}
	if path != "" {
		h.lock = flock.New(path + ".lock")
	}
	return h
}

// Add records an input. Blank inputs and repeats of the newest entry are
// skipped; the oldest entry is dropped once the bound is reached.
func (h *History) Add(input string) {
	input = strings.TrimRight(input, "\n")
	if strings.TrimSpace(input) == "" {
		return
	}
	if !h.entries.Empty() && h.entries.Back().(string) == input {
		return
	}
	h.entries.PushBack(input)
	for h.entries.Len() > h.max {
		h.entries.PopFront()
	}
}

// Len returns the number of entries.
func (h *History) Len() int {
	return h.entries.Len()
}

// Entries returns the entries oldest first.
func (h *History) Entries() []string {
	n := h.entries.Len()
	out := make([]string, 0, n)
	// rotate once through the deque to read it in order
	for i := 0; i < n; i++ {
		v := h.entries.PopFront()
		out = append(out, v.(string))
		h.entries.PushBack(v)
	}
	return out
}

// Load reads the history file, if any. Multi-line entries are stored with
// their newlines escaped.
func (h *History) Load() error {
	if h.path == "" {
		return nil
	}
	if err := h.lock.Lock(); err != nil {
		return err
	}
	defer func() {
		_ = h.lock.Unlock()
	}()

	f, err := os.Open(h.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		h.Add(unescape(scanner.Text()))
	}
	return scanner.Err()
}

// Save writes every entry to the history file, replacing its contents.
func (h *History) Save() error {
	if h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	if err := h.lock.Lock(); err != nil {
		return err
	}
	defer func() {
		_ = h.lock.Unlock()
	}()

	var b strings.Builder
	for _, e := range h.Entries() {
		b.WriteString(escape(e))
		b.WriteByte('\n')
	}
	return os.WriteFile(h.path, []byte(b.String()), 0o600)
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "\n", `\n`).Replace(s)
}

func unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			if s[i] == 'n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(s[i])
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
