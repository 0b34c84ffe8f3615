package dupes

import (
	"time"

	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/google/uuid"
)

// Session is one duplicate review: the latest scan result of a folder plus
// the operator's not-duplicate decisions. Overrides outlive rescans of the
// same session and are never persisted.
type Session struct {
	ID        string
	Folder    string
	Pairs     []types.DuplicatePair
	ScannedAt time.Time
	Overrides *OverrideSet
}

func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		Overrides: NewOverrideSet(),
	}
}

// Load replaces the session's scan result.
func (s *Session) Load(folder string, pairs []types.DuplicatePair) {
	s.Folder = folder
	s.Pairs = pairs
	s.ScannedAt = time.Now()
}

// MarkNotDuplicate records pair as confirmed distinct. Idempotent.
func (s *Session) MarkNotDuplicate(pair types.DuplicatePair) bool {
	return s.Overrides.Mark(pair)
}

func (s *Session) IsNotDuplicate(pair types.DuplicatePair) bool {
	return s.Overrides.Contains(pair)
}

// Pending returns the scanned pairs that are not marked not-duplicate.
func (s *Session) Pending() []types.DuplicatePair {
	var out []types.DuplicatePair
	for _, p := range s.Pairs {
		if !s.IsNotDuplicate(p) {
			out = append(out, p)
		}
	}
	return out
}
