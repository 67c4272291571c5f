package realtime

import (
	"fmt"
	"time"

	"github.com/JaimeStill/corretora/pkg/decode"
	"github.com/google/uuid"
)

// State is a reducer over an ordered list of records keyed by id.
// Creates of unknown ids are prepended, creates and updates of known ids
// replace in place, deletes remove. An event whose record is older than the
// held version is ignored, so redelivered or reordered events are harmless.
// State is not safe for concurrent use; feed it from a single goroutine.
type State[T any] struct {
	items   []T
	id      func(T) uuid.UUID
	version func(T) time.Time
}

// NewState seeds a State with initial (typically the first fetched page).
func NewState[T any](initial []T, id func(T) uuid.UUID, version func(T) time.Time) *State[T] {
	items := make([]T, len(initial))
	copy(items, initial)
	return &State[T]{
		items:   items,
		id:      id,
		version: version,
	}
}

// Apply reduces e into the state and reports whether the list changed.
func (s *State[T]) Apply(e Event) (bool, error) {
	switch e.Action {
	case ActionDelete:
		return s.remove(e.RecordID), nil
	case ActionCreate, ActionUpdate:
		record, err := decode.FromRaw[T](e.Record)
		if err != nil {
			return false, fmt.Errorf("decode %s record: %w", e.Collection, err)
		}
		if s.id(record) == uuid.Nil {
			return false, fmt.Errorf("%s event without record", e.Action)
		}
		return s.upsert(record), nil
	default:
		return false, fmt.Errorf("unknown action %q", e.Action)
	}
}

// Items returns a copy of the current list.
func (s *State[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of held records.
func (s *State[T]) Len() int {
	return len(s.items)
}

func (s *State[T]) upsert(record T) bool {
	id := s.id(record)
	if i := s.indexOf(id); i >= 0 {
		if s.version(record).Before(s.version(s.items[i])) {
			return false
		}
		s.items[i] = record
		return true
	}
	s.items = append([]T{record}, s.items...)
	return true
}

func (s *State[T]) remove(id uuid.UUID) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

func (s *State[T]) indexOf(id uuid.UUID) int {
	for i, item := range s.items {
		if s.id(item) == id {
			return i
		}
	}
	return -1
}
