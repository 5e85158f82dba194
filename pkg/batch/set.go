// Package batch collects files for multi-input triggers and releases them
// once the whole batch has gone quiet.
package batch

import (
	"sort"
	"sync"
)

// Verdict is the result of judging one pending path during a drain attempt.
type Verdict int

const (
	// Waiting means the path has changed too recently; hold the batch.
	Waiting Verdict = iota
	// Stable means the path has been quiescent for long enough.
	Stable
	// Gone means the path no longer exists and should be forgotten.
	Gone
)

// 🗃️ Set is a mutex-guarded set of file paths awaiting batched processing.
// Re-adding a pending path collapses into a no-op, and draining removes and
// returns every member in one atomic step. Each multi-file environment owns
// exactly one Set, shared only between its event handler (producer) and its
// debounce loop (consumer).
type Set struct {
	mu      sync.Mutex
	members map[string]struct{}
}

// 🏭 NewSet creates an empty pending set
func NewSet() *Set {
	return &Set{members: make(map[string]struct{})}
}

// ➕ Put inserts a path into the set. It reports whether the path was newly
// added; inserting an already-pending path is a no-op.
func (s *Set) Put(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[path]; ok {
		return false
	}
	s.members[path] = struct{}{}
	return true
}

// 🔢 Len returns the number of pending paths
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members)
}

// 📤 DrainAll removes and returns all members, sorted. Draining an empty set
// returns nil.
func (s *Set) DrainAll() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drainLocked()
}

// 📤 DrainAllIf evaluates check for every member while holding the set's
// lock, so no insert can interleave with the check-then-drain sequence.
// Members judged Gone are removed on the spot. If every remaining member is
// Stable the whole set is drained and returned sorted; any Waiting member
// holds the entire batch (all-or-nothing, no partial release).
func (s *Set) DrainAllIf(check func(path string) Verdict) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.members) == 0 {
		return nil
	}

	allStable := true
	for path := range s.members {
		switch check(path) {
		case Gone:
			delete(s.members, path)
		case Waiting:
			allStable = false
		}
	}

	if !allStable || len(s.members) == 0 {
		return nil
	}
	return s.drainLocked()
}

func (s *Set) drainLocked() []string {
	if len(s.members) == 0 {
		return nil
	}

	drained := make([]string, 0, len(s.members))
	for path := range s.members {
		drained = append(drained, path)
	}
	s.members = make(map[string]struct{})

	// Set order is arbitrary; sort so the batch output name derived from the
	// first member is deterministic.
	sort.Strings(drained)
	return drained
}
