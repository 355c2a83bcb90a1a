package challenge

import (
	"sort"
	"sync"
)

// Memory is an in-process Registry.
type Memory struct {
	mu     sync.RWMutex
	solved map[Key]bool

	// OnSolved, when set, is called once for every challenge the first time it
	// becomes solved.
	OnSolved func(Key)
}

// NewMemory returns a registry with every known challenge unsolved.
func NewMemory() *Memory {
	m := &Memory{solved: map[Key]bool{}}
	for _, key := range All() {
		m.solved[key] = false
	}
	return m
}

func (m *Memory) SolveIf(key Key, predicate func() bool) {
	if m.IsSolved(key) || !predicate() {
		return
	}

	m.mu.Lock()
	already := m.solved[key]
	m.solved[key] = true
	m.mu.Unlock()

	if !already && m.OnSolved != nil {
		m.OnSolved(key)
	}
}

func (m *Memory) IsSolved(key Key) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.solved[key]
}

// Snapshot lists every tracked challenge, known ones first in All order and
// any others sorted by key.
func (m *Memory) Snapshot() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	order := map[Key]int{}
	for idx, key := range All() {
		order[key] = idx
	}

	result := make([]Status, 0, len(m.solved))
	for key, solved := range m.solved {
		result = append(result, Status{Key: key, Name: key.Name(), Solved: solved})
	}

	sort.Slice(result, func(i, j int) bool {
		oi, iKnown := order[result[i].Key]
		oj, jKnown := order[result[j].Key]
		switch {
		case iKnown && jKnown:
			return oi < oj
		case iKnown != jKnown:
			return iKnown
		}
		return result[i].Key < result[j].Key
	})

	return result
}
