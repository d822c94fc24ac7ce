package session

import (
	"context"
	"sync"
	"time"
)

// maxSweepInterval caps how long an expired record can sit in memory.
const maxSweepInterval = 5 * time.Minute

// MemoryStore is a process-local Store. Expired records are dropped on access
// and by a background sweeper that runs until Close.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]*Record
	now     func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewMemoryStore creates an empty in-memory store. With a positive ttl it
// sweeps expired records every ttl, capped at five minutes.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	interval := ttl
	if interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	return newMemoryStore(ttl, interval)
}

func newMemoryStore(ttl, interval time.Duration) *MemoryStore {
	m := &MemoryStore{
		ttl:     ttl,
		records: make(map[string]*Record),
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	if ttl > 0 && interval > 0 {
		go m.sweepLoop(interval)
	} else {
		close(m.done)
	}
	return m
}

func (m *MemoryStore) sweepLoop(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stop:
			return
		}
	}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.live(id)
	if !ok {
		return nil, ErrNotFound
	}
	return clone(rec), nil
}

// Update implements Store.
func (m *MemoryStore) Update(_ context.Context, id string, fn func(*Record) error) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.live(id)
	if ok {
		rec = clone(rec)
	} else {
		rec = &Record{ID: id}
	}

	if err := fn(rec); err != nil {
		return nil, err
	}
	rec.ID = id
	rec.UpdatedAt = m.now()
	m.records[id] = rec
	return clone(rec), nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

// Sweep removes every expired record and reports how many were dropped.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for id := range m.records {
		if _, ok := m.live(id); !ok {
			dropped++
		}
	}
	return dropped
}

// Close stops the sweeper and waits for it. It is safe to call more than once.
func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	<-m.done
	return nil
}

// live returns the record if present and unexpired. Callers hold m.mu.
func (m *MemoryStore) live(id string) (*Record, bool) {
	rec, ok := m.records[id]
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && m.now().Sub(rec.UpdatedAt) > m.ttl {
		delete(m.records, id)
		return nil, false
	}
	return rec, true
}

func clone(r *Record) *Record {
	out := *r
	if r.Messages != nil {
		out.Messages = append(out.Messages[:0:0], r.Messages...)
	}
	return &out
}
