//go:build cucumber

package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"grepowski/internal/config"
	"grepowski/internal/fragment"
	"grepowski/internal/llm"
	"grepowski/internal/results"
)

// TestPipelineScenarios runs the end-to-end pipeline feature scenarios.
func TestPipelineScenarios(t *testing.T) {
	featurePath := filepath.Join("..", "..", "features", "pipeline.feature")
	suite := godog.TestSuite{
		Name:                "pipeline",
		ScenarioInitializer: InitializePipelineScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{featurePath},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializePipelineScenario wires steps for pipeline scenarios.
func InitializePipelineScenario(ctx *godog.ScenarioContext) {
	state := &pipelineState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, state.reset()
	})
	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		state.close()
		return ctx, nil
	})

	ctx.Step(`^a chat endpoint that echoes the fragment location$`, state.givenEndpoint)
	ctx.Step(`^a file "([^"]+)" with (\d+) lines$`, state.givenFile)
	ctx.Step(`^the endpoint delays answers about "([^"]+)" by (\d+) milliseconds$`, state.givenDelay)
	ctx.Step(`^lines_per_block is (-?\d+) and blocks_per_fragment is (-?\d+)$`, state.givenSizes)
	ctx.Step(`^I ask "([^"]+)" about "([^"]+)"$`, state.whenIAsk)
	ctx.Step(`^there (?:is|are) (\d+) fragments?$`, state.thenFragmentCount)
	ctx.Step(`^fragment (\d+) has block sizes "([^"]+)"$`, state.thenBlockSizes)
	ctx.Step(`^fragment (\d+) covers "([^"]+)"$`, state.thenCovers)
	ctx.Step(`^the review list has (\d+) items?$`, state.thenItemCount)
	ctx.Step(`^every review item is answered$`, state.thenAllAnswered)
	ctx.Step(`^the endpoint answered "([^"]+)" before "([^"]+)"$`, state.thenAnsweredBefore)
	ctx.Step(`^review item (\d+) is from "([^"]+)"$`, state.thenItemFrom)
	ctx.Step(`^the run is rejected with a configuration error for "([^"]+)"$`, state.thenConfigError)
	ctx.Step(`^no request reached the endpoint$`, state.thenNoRequests)
}

type pipelineState struct {
	dir    string
	server *httptest.Server
	cfg    config.Config

	mu       sync.Mutex
	delays   map[string]time.Duration
	answered []string

	frags []fragment.Fragment
	items []results.ReviewItem
	err   error
}

// reset clears scenario state and creates a scratch directory.
func (s *pipelineState) reset() error {
	dir, err := os.MkdirTemp("", "grepowski-feature-")
	if err != nil {
		return err
	}
	*s = pipelineState{
		dir:    dir,
		cfg:    config.Default(),
		delays: map[string]time.Duration{},
	}
	s.cfg.Model = "test-model"
	s.cfg.Timeout = 5 * time.Second
	return nil
}

// close stops the endpoint and removes scratch files.
func (s *pipelineState) close() {
	if s.server != nil {
		s.server.Close()
	}
	os.RemoveAll(s.dir)
}

// givenEndpoint starts a fake chat endpoint that answers with the File header.
func (s *pipelineState) givenEndpoint() error {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []llm.Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		user := req.Messages[len(req.Messages)-1].Content
		header, _, _ := strings.Cut(user[strings.Index(user, "File: "):], "\n")
		name := filepath.Base(strings.Fields(strings.TrimPrefix(header, "File: "))[0])

		s.mu.Lock()
		delay := s.delays[name]
		s.mu.Unlock()
		time.Sleep(delay)

		s.mu.Lock()
		s.answered = append(s.answered, name)
		s.mu.Unlock()

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": header}}},
		})
	}))
	s.cfg.Endpoint = s.server.URL + "/v1/chat/completions"
	return nil
}

// givenFile writes a file with n numbered lines.
func (s *pipelineState) givenFile(name string, n int) error {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return os.WriteFile(filepath.Join(s.dir, name), []byte(b.String()), 0o644)
}

// givenDelay slows the endpoint down for one file.
func (s *pipelineState) givenDelay(name string, ms int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[name] = time.Duration(ms) * time.Millisecond
	return nil
}

// givenSizes sets the block and fragment sizes.
func (s *pipelineState) givenSizes(lines, blocks int) error {
	s.cfg.LinesPerBlock = lines
	s.cfg.BlocksPerFragment = blocks
	return nil
}

// whenIAsk runs the whole pipeline for comma-separated file names.
func (s *pipelineState) whenIAsk(question, names string) error {
	var paths []string
	for _, name := range strings.Split(names, ",") {
		paths = append(paths, filepath.Join(s.dir, strings.TrimSpace(name)))
	}

	scanner, err := New(s.cfg, nil)
	if err != nil {
		s.err = err
		return nil
	}
	s.frags, _, s.err = scanner.Fragments(paths)
	if s.err != nil {
		return nil
	}
	s.items, s.err = scanner.Dispatch(context.Background(), question, s.frags, nil)
	return nil
}

// thenFragmentCount asserts the number of fragments produced.
func (s *pipelineState) thenFragmentCount(n int) error {
	if s.err != nil {
		return fmt.Errorf("unexpected error: %w", s.err)
	}
	if len(s.frags) != n {
		return fmt.Errorf("expected %d fragments, got %d", n, len(s.frags))
	}
	return nil
}

// thenBlockSizes asserts the sizes of the blocks in a fragment.
func (s *pipelineState) thenBlockSizes(pos int, sizes string) error {
	f, err := s.fragment(pos)
	if err != nil {
		return err
	}
	var got []string
	for _, b := range f.Blocks {
		got = append(got, strconv.Itoa(b.Len()))
	}
	if strings.Join(got, ",") != sizes {
		return fmt.Errorf("expected block sizes %s, got %s", sizes, strings.Join(got, ","))
	}
	return nil
}

// thenCovers asserts a fragment's file and line range.
func (s *pipelineState) thenCovers(pos int, want string) error {
	f, err := s.fragment(pos)
	if err != nil {
		return err
	}
	got := fmt.Sprintf("%s:%d-%d", filepath.Base(f.File), f.StartLine, f.EndLine)
	if got != want {
		return fmt.Errorf("expected fragment %d to cover %s, got %s", pos, want, got)
	}
	return nil
}

// thenItemCount asserts the review list length.
func (s *pipelineState) thenItemCount(n int) error {
	if s.err != nil {
		return fmt.Errorf("unexpected error: %w", s.err)
	}
	if len(s.items) != n {
		return fmt.Errorf("expected %d review items, got %d", n, len(s.items))
	}
	return nil
}

// thenAllAnswered asserts no fragment failed.
func (s *pipelineState) thenAllAnswered() error {
	for _, it := range s.items {
		if !it.Outcome.OK() {
			return fmt.Errorf("%s failed: %s", it.Fragment.Location(), it.Outcome.Error)
		}
	}
	return nil
}

// thenAnsweredBefore asserts the endpoint finished one file before another.
func (s *pipelineState) thenAnsweredBefore(first, second string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, j := indexOf(s.answered, first), indexOf(s.answered, second)
	if i < 0 || j < 0 || i > j {
		return fmt.Errorf("expected %s answered before %s, got %v", first, second, s.answered)
	}
	return nil
}

// thenItemFrom asserts which file a review item belongs to.
func (s *pipelineState) thenItemFrom(pos int, name string) error {
	if pos < 1 || pos > len(s.items) {
		return fmt.Errorf("no review item %d (have %d)", pos, len(s.items))
	}
	it := s.items[pos-1]
	if filepath.Base(it.Fragment.File) != name {
		return fmt.Errorf("expected item %d from %s, got %s", pos, name, it.Fragment.File)
	}
	if !strings.Contains(it.Outcome.Text, name) {
		return fmt.Errorf("item %d carries the answer %q", pos, it.Outcome.Text)
	}
	return nil
}

// thenConfigError asserts the run stopped on the named setting.
func (s *pipelineState) thenConfigError(field string) error {
	var cerr *config.Error
	if !errors.As(s.err, &cerr) {
		return fmt.Errorf("expected configuration error, got %v", s.err)
	}
	if cerr.Field != field {
		return fmt.Errorf("expected error for %s, got %s", field, cerr.Field)
	}
	if s.frags != nil {
		return fmt.Errorf("fragments were produced")
	}
	return nil
}

// thenNoRequests asserts the endpoint was never called.
func (s *pipelineState) thenNoRequests() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.answered) > 0 {
		return fmt.Errorf("endpoint received %d requests", len(s.answered))
	}
	return nil
}

func (s *pipelineState) fragment(pos int) (fragment.Fragment, error) {
	if s.err != nil {
		return fragment.Fragment{}, fmt.Errorf("unexpected error: %w", s.err)
	}
	if pos < 1 || pos > len(s.frags) {
		return fragment.Fragment{}, fmt.Errorf("no fragment %d (have %d)", pos, len(s.frags))
	}
	return s.frags[pos-1], nil
}

func indexOf(list []string, v string) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}
