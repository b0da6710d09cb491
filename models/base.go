package models

import "time"

// Base carries the fields every persisted record shares.
type Base struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Touch stamps UpdatedAt, and CreatedAt on first save. Stored times are
// truncated to milliseconds so they survive a round trip through any backend.
func (b *Base) Touch(now time.Time) {
	now = now.UTC().Truncate(time.Millisecond)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func (b *Base) Deleted() bool {
	return b.DeletedAt != nil
}
