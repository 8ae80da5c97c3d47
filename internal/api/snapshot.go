package api

import (
	"sync"
	"time"

	"github.com/starford/gigs/internal/apperr"
	"github.com/starford/gigs/internal/gigs"
)

// Snapshot holds the most recently exported document.
type Snapshot struct {
	mu        sync.RWMutex
	document  []byte
	count     int
	checksum  string
	updatedAt time.Time
}

// SnapshotView is a read-only copy of a Snapshot.
type SnapshotView struct {
	Document  []byte
	Count     int
	Checksum  string
	UpdatedAt time.Time
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Update stores res and reports whether its checksum differs from the
// previous one.
func (s *Snapshot) Update(res *gigs.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.checksum != res.Checksum
	s.document = res.Document
	s.count = res.Count
	s.checksum = res.Checksum
	s.updatedAt = time.Now().UTC()
	return changed
}

// Get returns the current snapshot, or apperr.ErrNoSnapshot before the first update.
func (s *Snapshot) Get() (SnapshotView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.document == nil {
		return SnapshotView{}, apperr.ErrNoSnapshot
	}
	return SnapshotView{
		Document:  s.document,
		Count:     s.count,
		Checksum:  s.checksum,
		UpdatedAt: s.updatedAt,
	}, nil
}
