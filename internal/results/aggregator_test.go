package results

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"grepowski/internal/fragment"
)

func testFragments(t *testing.T, files ...string) []fragment.Fragment {
	t.Helper()
	var frags []fragment.Fragment
	for _, file := range files {
		lines := make([]fragment.Line, 12)
		for i := range lines {
			lines[i] = fragment.Line{File: file, Number: i + 1, Text: fmt.Sprintf("%s %d", file, i+1)}
		}
		frags = append(frags, fragment.FromLines(lines, fragment.Options{LinesPerBlock: 2, BlocksPerFragment: 2})...)
	}
	fragment.Renumber(frags)
	return frags
}

func TestAggregator_OrderIndependentOfArrival(t *testing.T) {
	frags := testFragments(t, "a.go", "b.go", "c.go")
	agg := New(frags)

	order := rand.Perm(len(frags))
	var wg sync.WaitGroup
	for _, idx := range order {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)
			if err := agg.Put(idx, Answered(frags[idx].Location())); err != nil {
				t.Errorf("Put(%d): %v", idx, err)
			}
		}(idx)
	}
	wg.Wait()

	items, ok := agg.Items()
	if !ok {
		t.Fatal("Items not complete after every fragment reported")
	}
	if len(items) != len(frags) {
		t.Fatalf("got %d items, want %d", len(items), len(frags))
	}
	for i, it := range items {
		if it.Fragment.Index != i {
			t.Errorf("item %d holds fragment %d", i, it.Fragment.Index)
		}
		if it.Outcome.Text != frags[i].Location() {
			t.Errorf("item %d outcome = %q, want %q", i, it.Outcome.Text, frags[i].Location())
		}
	}
}

func TestAggregator_NothingBeforeComplete(t *testing.T) {
	frags := testFragments(t, "a.go")
	agg := New(frags)

	for i := 0; i < len(frags)-1; i++ {
		if err := agg.Put(i, Failed("boom")); err != nil {
			t.Fatal(err)
		}
		if items, ok := agg.Items(); ok || items != nil {
			t.Fatalf("Items exposed with %d outcomes missing", agg.Remaining())
		}
	}
	if agg.Remaining() != 1 {
		t.Fatalf("Remaining = %d, want 1", agg.Remaining())
	}

	if err := agg.Put(len(frags)-1, Answered("ok")); err != nil {
		t.Fatal(err)
	}
	if _, ok := agg.Items(); !ok {
		t.Fatal("Items not exposed after completion")
	}
}

func TestAggregator_RejectsDuplicateAndUnknown(t *testing.T) {
	agg := New(testFragments(t, "a.go"))

	if err := agg.Put(0, Answered("first")); err != nil {
		t.Fatal(err)
	}
	if err := agg.Put(0, Answered("second")); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second Put = %v, want ErrDuplicate", err)
	}
	if err := agg.Put(-1, Answered("x")); !errors.Is(err, ErrUnknownFragment) {
		t.Errorf("Put(-1) = %v, want ErrUnknownFragment", err)
	}
	if err := agg.Put(agg.Len(), Answered("x")); !errors.Is(err, ErrUnknownFragment) {
		t.Errorf("Put(len) = %v, want ErrUnknownFragment", err)
	}
}

func TestAggregator_Empty(t *testing.T) {
	agg := New(nil)
	items, ok := agg.Items()
	if !ok || len(items) != 0 {
		t.Errorf("Items() = %v, %v; want empty, true", items, ok)
	}
	if agg.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", agg.Remaining())
	}
}

func TestSummarize(t *testing.T) {
	items := []ReviewItem{
		{Outcome: Answered("a")},
		{Outcome: Failed("b")},
		{Outcome: Answered("c").WithScore(0.5)},
	}
	got := Summarize(items)
	want := Summary{Total: 3, Answered: 2, Failed: 1}
	if got != want {
		t.Errorf("Summarize = %+v, want %+v", got, want)
	}
}
