package server

import (
	"sync"

	"github.com/SaweraJamal/PowerScan/internal/report"
)

// LastReportID addresses the most recently stored report
const LastReportID = "last"

// DefaultHistory is the number of reports a MemoryStore keeps
const DefaultHistory = 20

// Store keeps scan documents produced by the API
type Store interface {
	Save(doc *report.Document)
	Get(id string) (*report.Document, bool)
	List() []report.Meta
}

// MemoryStore implements Store with a bounded in-memory history.
// Documents are evicted oldest first once the history is full.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     []*report.Document
	capacity int
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultHistory
	}
	return &MemoryStore{
		docs:     make([]*report.Document, 0, capacity),
		capacity: capacity,
	}
}

// Save stores a document as the latest report
func (s *MemoryStore) Save(doc *report.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.docs) == s.capacity {
		copy(s.docs, s.docs[1:])
		s.docs = s.docs[:len(s.docs)-1]
	}
	s.docs = append(s.docs, doc)
}

// Get returns a document by scan id, or the latest one for LastReportID
func (s *MemoryStore) Get(id string) (*report.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.docs) == 0 {
		return nil, false
	}
	if id == LastReportID {
		return s.docs[len(s.docs)-1], true
	}
	for i := len(s.docs) - 1; i >= 0; i-- {
		if s.docs[i].Meta.ScanID == id {
			return s.docs[i], true
		}
	}
	return nil, false
}

// List returns the metadata of stored documents, newest first
func (s *MemoryStore) List() []report.Meta {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metas := make([]report.Meta, 0, len(s.docs))
	for i := len(s.docs) - 1; i >= 0; i-- {
		metas = append(metas, s.docs[i].Meta)
	}
	return metas
}
