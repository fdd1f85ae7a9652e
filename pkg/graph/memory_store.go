package graph

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory triple store. Triples are kept in insertion
// order and duplicates are ignored.
type MemoryStore struct {
	mu      sync.RWMutex
	triples []Triple
	index   map[Triple]struct{}
}

// NewMemoryStore creates an empty in-memory store seeded with triples.
func NewMemoryStore(triples ...Triple) *MemoryStore {
	s := &MemoryStore{index: make(map[Triple]struct{})}
	s.add(triples)
	return s
}

// EnterReadSection acquires a shared read lock.
func (s *MemoryStore) EnterReadSection(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var once sync.Once
	return func() { once.Do(s.mu.RUnlock) }, nil
}

// Select evaluates q against the current triples. Callers are expected to
// hold a read section; Select itself does not lock.
func (s *MemoryStore) Select(ctx context.Context, q Query, initial Bindings) (ResultSet, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := make(Solution, len(initial))
	for k, v := range initial {
		start[k] = v
	}
	partial := []Solution{start}

	for _, p := range q.Where {
		var next []Solution
		for _, sol := range partial {
			for _, t := range s.triples {
				if ext, ok := match(p, t, sol); ok {
					next = append(next, ext)
				}
			}
		}
		partial = next
		if len(partial) == 0 {
			break
		}
	}

	vars := q.Vars()
	rows := make([]Solution, 0, len(partial))
	for _, sol := range partial {
		row := make(Solution, len(vars))
		for _, v := range vars {
			if t, ok := sol[v]; ok {
				row[v] = t
			}
		}
		rows = append(rows, row)
	}
	return newSliceResultSet(rows), nil
}

// Add appends triples under the write lock.
func (s *MemoryStore) Add(ctx context.Context, triples ...Triple) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(triples)
	return nil
}

// Replace swaps the full contents of the store.
func (s *MemoryStore) Replace(triples []Triple) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.triples = nil
	s.index = make(map[Triple]struct{}, len(triples))
	s.add(triples)
}

// Len returns the number of stored triples.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.triples)
}

func (s *MemoryStore) add(triples []Triple) {
	for _, t := range triples {
		if _, dup := s.index[t]; dup {
			continue
		}
		s.index[t] = struct{}{}
		s.triples = append(s.triples, t)
	}
}

// match unifies a pattern with a triple under sol, returning the extended
// solution.
func match(p Pattern, t Triple, sol Solution) (Solution, bool) {
	var ext Solution
	bind := func(n Node, term Term) bool {
		if !n.IsVar() {
			return n.Term == term
		}
		if cur, ok := sol[n.Var]; ok {
			return cur == term
		}
		if ext != nil {
			if cur, ok := ext[n.Var]; ok {
				return cur == term
			}
		} else {
			ext = make(Solution, len(sol)+3)
		}
		ext[n.Var] = term
		return true
	}

	if !bind(p.Subject, t.Subject) || !bind(p.Predicate, t.Predicate) || !bind(p.Object, t.Object) {
		return nil, false
	}

	out := make(Solution, len(sol)+len(ext))
	for k, v := range sol {
		out[k] = v
	}
	for k, v := range ext {
		out[k] = v
	}
	return out, true
}
