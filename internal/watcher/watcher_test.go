package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, p := range r.paths {
		out = append(out, filepath.Base(p))
	}
	sort.Strings(out)
	return out
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestInbox_DebounceAndExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := NewInbox([]string{dir}, []string{".txt"}, true, rec.add, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "soup.txt")
	for i := 0; i < 3; i++ {
		if err := writeFile(path, strings.Repeat("Tomato Soup\n", i+1)); err != nil {
			t.Fatal(err)
		}
	}
	if err := writeFile(filepath.Join(dir, "photo.jpg"), "x"); err != nil {
		t.Fatal(err)
	}
	if err := writeFile(filepath.Join(dir, ".~lock.soup.txt#"), "x"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return len(rec.names()) >= 1 })
	time.Sleep(150 * time.Millisecond)
	if got := rec.names(); len(got) != 1 || got[0] != "soup.txt" {
		t.Errorf("reported = %v, want one soup.txt", got)
	}
}

func TestInbox_NewDirectory(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := NewInbox([]string{dir}, []string{".txt", ".md"}, true, rec.add, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	nested := filepath.Join(dir, "box", "desserts")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"tart.txt", "flan.md", "ignore.xyz"} {
		if err := writeFile(filepath.Join(nested, name), "recipe"); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return len(rec.names()) >= 2 })
	got := rec.names()
	if len(got) != 2 || got[0] != "flan.md" || got[1] != "tart.txt" {
		t.Errorf("reported = %v", got)
	}
}

func TestInbox_SyncExistingFiles(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"a.txt", "ignore.xyz", "~$draft.txt", filepath.Join("sub", "b.txt")} {
		if err := os.MkdirAll(filepath.Dir(filepath.Join(dir, p)), 0755); err != nil {
			t.Fatal(err)
		}
		if err := writeFile(filepath.Join(dir, p), "x"); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		recursive bool
		want      []string
	}{
		{true, []string{"a.txt", "b.txt"}},
		{false, []string{"a.txt"}},
	}
	for _, tt := range tests {
		rec := &recorder{}
		w := NewInbox([]string{dir}, []string{".txt"}, tt.recursive, rec.add)
		w.SyncExistingFiles()
		if got := rec.names(); strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("recursive=%v: reported = %v, want %v", tt.recursive, got, tt.want)
		}
	}
}

func TestInbox_Start_createsMissingRootDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "inbox", "new")
	w := NewInbox([]string{root}, nil, true, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root directory should exist after Start: %v", err)
	}
	if dirs := w.Directories(); len(dirs) != 1 || dirs[0] != root {
		t.Errorf("Directories() = %v", dirs)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/b.txt", []string{".txt"}, true},
		{"/a/b.PDF", []string{"pdf"}, true},
		{"/a/b.md", []string{".txt"}, false},
		{"/a/b", nil, true},
		{"/a/b", []string{}, true},
	}
	for _, tt := range tests {
		if got := matchExtension(tt.path, tt.extensions); got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
