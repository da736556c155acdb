package alarm

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps alarms in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	events map[int]Event
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[int]Event)}
}

func (m *MemoryStore) Register(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[ev.ID] = ev
	return nil
}

func (m *MemoryStore) Cancel(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
	return nil
}

func (m *MemoryStore) Due(_ context.Context, now time.Time) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []Event
	for id, ev := range m.events {
		if !ev.FireAt.After(now) {
			due = append(due, ev)
			delete(m.events, id)
		}
	}
	sortEvents(due)
	return due, nil
}

func (m *MemoryStore) Pending(_ context.Context) ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Event, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev)
	}
	sortEvents(out)
	return out, nil
}

func sortEvents(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		if events[i].FireAt.Equal(events[j].FireAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].FireAt.Before(events[j].FireAt)
	})
}
