package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"grepowski/internal/config"
	"grepowski/internal/query"
	"grepowski/internal/source"
)

func writeLines(t *testing.T, path string, n int) {
	t.Helper()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "row %d\n", i)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(endpoint string) config.Config {
	cfg := config.Default()
	cfg.Model = "test-model"
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	return cfg
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig("")
	cfg.BlocksPerFragment = 0
	_, err := New(cfg, nil)
	var cerr *config.Error
	if !errors.As(err, &cerr) || cerr.Field != "blocks_per_fragment" {
		t.Fatalf("New = %v, want blocks_per_fragment config error", err)
	}
}

func TestFragments_FileOrderAndIndex(t *testing.T) {
	dir := t.TempDir()
	b := filepath.Join(dir, "b.txt")
	a := filepath.Join(dir, "a.txt")
	writeLines(t, b, 12)
	writeLines(t, a, 3)

	cfg := testConfig("")
	cfg.LinesPerBlock = 5
	cfg.BlocksPerFragment = 1
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Argument order wins over name order.
	frags, stats, err := s.Fragments([]string{b, a})
	if err != nil {
		t.Fatalf("Fragments: %v", err)
	}
	want := []string{b + ":1-5", b + ":6-10", b + ":11-12", a + ":1-3"}
	if len(frags) != len(want) {
		t.Fatalf("got %d fragments, want %d", len(frags), len(want))
	}
	for i, f := range frags {
		if f.Location() != want[i] {
			t.Errorf("fragment %d = %s, want %s", i, f.Location(), want[i])
		}
		if f.Index != i {
			t.Errorf("fragment %d Index = %d", i, f.Index)
		}
	}
	if stats.FilesTotal != 2 || stats.LinesTotal != 15 || stats.Fragments != 4 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestFragments_Directory(t *testing.T) {
	dir := t.TempDir()
	writeLines(t, filepath.Join(dir, "src", "z.go"), 2)
	writeLines(t, filepath.Join(dir, "src", "a.go"), 2)
	if err := os.WriteFile(filepath.Join(dir, "src", "empty.go"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	s, _ := New(testConfig(""), nil)
	frags, _, err := s.Fragments([]string{filepath.Join(dir, "src")})
	if err != nil {
		t.Fatalf("Fragments: %v", err)
	}
	if len(frags) != 2 {
		t.Fatalf("got %d fragments, want 2", len(frags))
	}
	if filepath.Base(frags[0].File) != "a.go" || filepath.Base(frags[1].File) != "z.go" {
		t.Errorf("order = %s, %s", frags[0].File, frags[1].File)
	}
}

func TestFragments_ReadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(bad, []byte("ok\n\xff\xfe\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	good := filepath.Join(dir, "good.txt")
	writeLines(t, good, 3)

	s, _ := New(testConfig(""), nil)

	_, _, err := s.Fragments([]string{good, filepath.Join(dir, "missing.txt")})
	var rerr *source.ReadError
	if !errors.As(err, &rerr) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file: got %v, want ReadError wrapping ErrNotExist", err)
	}

	_, _, err = s.Fragments([]string{good, bad})
	if !errors.As(err, &rerr) || rerr.Line != 2 {
		t.Errorf("bad encoding: got %v, want ReadError on line 2", err)
	}
}

func TestFragments_NoInput(t *testing.T) {
	s, _ := New(testConfig(""), nil)
	if _, _, err := s.Fragments([]string{t.TempDir()}); !errors.Is(err, ErrNoInput) {
		t.Errorf("empty directory: got %v, want ErrNoInput", err)
	}
}

func TestAsk_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"0.250"}}]}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	writeLines(t, path, 40)

	cfg := testConfig(server.URL)
	cfg.Score = true
	s, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	var events atomic.Int32
	items, err := s.Ask(context.Background(), "Is there a data race?", []string{path}, func(ev query.Event) {
		if ev.Kind == query.EventFinished {
			events.Add(1)
		}
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	// 40 lines, 10 per block, 3 blocks per fragment.
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	for _, it := range items {
		if !it.Outcome.HasScore || it.Outcome.Score != 0.25 {
			t.Errorf("%s: outcome = %+v", it.Fragment.Location(), it.Outcome)
		}
	}
	if events.Load() != 2 {
		t.Errorf("finished events = %d, want 2", events.Load())
	}
}

func TestDispatch_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeLines(t, path, 5)

	s, _ := New(testConfig("http://127.0.0.1:1/v1/chat/completions"), nil)
	frags, _, err := s.Fragments([]string{path})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Dispatch(ctx, "q", frags, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Dispatch = %v, want context.Canceled", err)
	}
}
