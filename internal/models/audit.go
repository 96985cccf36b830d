package models

import "time"

// AuditLogEntry is the persisted form of one administrative action record.
// Details is stored as a JSONB column.
type AuditLogEntry struct {
	EntryID    string            `db:"entry_id"`
	ActorID    string            `db:"actor_id"`
	Action     string            `db:"action"`
	TargetType string            `db:"target_type"`
	TargetID   string            `db:"target_id"`
	Details    map[string]string `db:"details"`
	CreatedAt  time.Time         `db:"created_at"`
}
