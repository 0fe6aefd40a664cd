package results

import (
	"errors"
	"fmt"
	"sync"

	"grepowski/internal/fragment"
)

var (
	// ErrDuplicate is returned when a fragment's slot is written twice.
	ErrDuplicate = errors.New("outcome already recorded")
	// ErrUnknownFragment is returned for an index outside the run.
	ErrUnknownFragment = errors.New("unknown fragment index")
)

// Aggregator collects one Outcome per fragment in any order and exposes the
// canonical, fragment-ordered list once every slot is filled. It is safe for
// concurrent use.
type Aggregator struct {
	mu        sync.Mutex
	frags     []fragment.Fragment
	outcomes  []Outcome
	filled    []bool
	remaining int
}

// New allocates one slot per fragment. Slot i belongs to frags[i].
func New(frags []fragment.Fragment) *Aggregator {
	return &Aggregator{
		frags:     frags,
		outcomes:  make([]Outcome, len(frags)),
		filled:    make([]bool, len(frags)),
		remaining: len(frags),
	}
}

// Put records the outcome for the fragment at index. Each slot accepts
// exactly one write.
func (a *Aggregator) Put(index int, o Outcome) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if index < 0 || index >= len(a.outcomes) {
		return fmt.Errorf("put %d of %d: %w", index, len(a.outcomes), ErrUnknownFragment)
	}
	if a.filled[index] {
		return fmt.Errorf("put %s: %w", a.frags[index].Location(), ErrDuplicate)
	}
	a.outcomes[index] = o
	a.filled[index] = true
	a.remaining--
	return nil
}

// Len returns the number of fragments in the run.
func (a *Aggregator) Len() int { return len(a.frags) }

// Remaining returns how many fragments still lack an outcome.
func (a *Aggregator) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.remaining
}

// Items returns the ordered review list and true once complete. Before that
// it returns nil and false.
func (a *Aggregator) Items() ([]ReviewItem, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.remaining > 0 {
		return nil, false
	}
	items := make([]ReviewItem, len(a.frags))
	for i, f := range a.frags {
		items[i] = ReviewItem{Fragment: f, Outcome: a.outcomes[i]}
	}
	return items, true
}
