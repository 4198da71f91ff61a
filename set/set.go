package set

import (
	"errors"
	"strings"
	"sync"
)

// Returned when an added key already exists in the set.
var ErrCollision = errors.New("key already exists")

// Returned when a requested item does not exist in the set.
var ErrMissing = errors.New("item does not exist")

type IterFunc func(key string, item Item) error

// Set is a string-keyed collection of items. Keys are matched exactly:
// they are endpoint addresses and room names, not display names.
type Set struct {
	sync.RWMutex
	lookup map[string]Item
}

// New creates a new set.
func New() *Set {
	return &Set{
		lookup: map[string]Item{},
	}
}

// Clear removes all items and returns the number removed.
func (s *Set) Clear() int {
	s.Lock()
	n := len(s.lookup)
	s.lookup = map[string]Item{}
	s.Unlock()
	return n
}

// Len returns the size of the set right now.
func (s *Set) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.lookup)
}

// In checks if an item exists in this set.
func (s *Set) In(key string) bool {
	s.RLock()
	_, ok := s.lookup[key]
	s.RUnlock()
	return ok
}

// Get returns an item with the given key.
func (s *Set) Get(key string) (Item, error) {
	s.RLock()
	item, ok := s.lookup[key]
	s.RUnlock()

	if !ok {
		return nil, ErrMissing
	}

	return item, nil
}

// AddNew adds an item to this set if it does not exist already.
func (s *Set) AddNew(item Item) error {
	s.Lock()
	defer s.Unlock()

	if _, found := s.lookup[item.Key()]; found {
		return ErrCollision
	}

	s.lookup[item.Key()] = item
	return nil
}

// Add to set, replacing if item already exists.
func (s *Set) Add(item Item) {
	s.Lock()
	defer s.Unlock()

	s.lookup[item.Key()] = item
}

// Remove item from this set.
func (s *Set) Remove(key string) error {
	s.Lock()
	defer s.Unlock()

	_, found := s.lookup[key]
	if !found {
		return ErrMissing
	}
	delete(s.lookup, key)
	return nil
}

// Each loops over every item while holding a read lock and applies fn to
// each element. The iteration aborts on the first error returned by fn.
// Do not mutate the set from inside fn, use List for that.
func (s *Set) Each(fn IterFunc) error {
	s.RLock()
	defer s.RUnlock()
	for key, item := range s.lookup {
		if err := fn(key, item); err != nil {
			// Abort early
			return err
		}
	}
	return nil
}

// List returns a snapshot of all items. The snapshot is safe to iterate
// while the set is being mutated.
func (s *Set) List() []Item {
	s.RLock()
	defer s.RUnlock()
	r := make([]Item, 0, len(s.lookup))
	for _, item := range s.lookup {
		r = append(r, item)
	}
	return r
}

// Keys returns a snapshot of all keys.
func (s *Set) Keys() []string {
	s.RLock()
	defer s.RUnlock()
	r := make([]string, 0, len(s.lookup))
	for key := range s.lookup {
		r = append(r, key)
	}
	return r
}

// ListPrefix returns a list of items whose key starts with prefix, used to
// query for autocompletion purposes.
func (s *Set) ListPrefix(prefix string) []Item {
	r := []Item{}

	s.Each(func(key string, item Item) error {
		if strings.HasPrefix(key, prefix) {
			r = append(r, item)
		}
		return nil
	})

	return r
}
