package store

import (
	"sync"
)

const subscriberBuffer = 16

// MemoryStore is an in-memory implementation of [Store].
//
// Subscribers receive updates via buffered channels. Updates are sent
// non-blocking; if a subscriber's buffer is full, the update is dropped for
// that subscriber.
type MemoryStore struct {
	mu     sync.RWMutex
	record StatusRecord

	subMu       sync.RWMutex
	subscribers map[chan StatusRecord]struct{}
}

// NewMemoryStore creates a new in-memory [Store] implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		subscribers: make(map[chan StatusRecord]struct{}),
	}
}

// Update merges rec into the stored record if rec.Seq is newer.
//
// A record carrying an Error keeps the previously stored Status and
// UpdatedAt; only the poll metadata and the error are replaced.
func (m *MemoryStore) Update(rec StatusRecord) bool {
	m.mu.Lock()
	if rec.Seq <= m.record.Seq {
		m.mu.Unlock()
		return false
	}
	if rec.Error != nil || rec.Status == nil {
		rec.Status = m.record.Status
		rec.UpdatedAt = m.record.UpdatedAt
	}
	m.record = rec
	m.mu.Unlock()

	m.notifySubscribers(rec)
	return true
}

// Get returns a copy of the current record.
func (m *MemoryStore) Get() StatusRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.record
}

// Subscribe creates a new subscription and returns a channel for updates.
//
// Caller must call [MemoryStore.Unsubscribe] when done to prevent leaks.
func (m *MemoryStore) Subscribe() <-chan StatusRecord {
	ch := make(chan StatusRecord, subscriberBuffer)

	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (m *MemoryStore) Unsubscribe(ch <-chan StatusRecord) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for subCh := range m.subscribers {
		if subCh == ch {
			delete(m.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// notifySubscribers sends rec to every subscriber without blocking.
func (m *MemoryStore) notifySubscribers(rec StatusRecord) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()

	for ch := range m.subscribers {
		select {
		case ch <- rec:
		default:
			// subscriber is slow, drop the message
		}
	}
}
