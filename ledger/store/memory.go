// Package store provides an in-memory ledger.Store for tests and dev.
package store

import (
	"context"
	"sync"

	"github.com/clubaereo/bitacora/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	entries []ledger.Entry
	ids     map[string]bool
}

func NewMemory() *Memory {
	return &Memory{ids: make(map[string]bool)}
}

func (m *Memory) AppendEntry(_ context.Context, e ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ids[e.ID] {
		return ledger.ErrDuplicateEntry
	}
	m.ids[e.ID] = true
	m.entries = append(m.entries, e)
	return nil
}

func (m *Memory) EntriesByPilot(_ context.Context, pilotID string) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ledger.Entry
	for _, e := range m.entries {
		if e.PilotID == pilotID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) EntryByFlight(_ context.Context, flightID int64) (*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.entries {
		if m.entries[i].FlightID != nil && *m.entries[i].FlightID == flightID {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, ledger.ErrEntryNotFound
}

func (m *Memory) RemoveByFlight(_ context.Context, flightID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.FlightID != nil && *e.FlightID == flightID {
			delete(m.ids, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return nil
}
