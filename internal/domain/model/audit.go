package model

import "time"

// AuditEntry is one append-only compliance record. Entries are never updated
// or deleted; failures to write them are swallowed upstream so audit logging
// can never abort a user-facing operation.
type AuditEntry struct {
	ID        int64     `json:"id"                  db:"id"`
	UserName  string    `json:"user_name"           db:"user_name"`
	Action    string    `json:"action"              db:"action"`
	TableName *string   `json:"table_name,omitempty" db:"table_name"`
	RecordID  *string   `json:"record_id,omitempty"  db:"record_id"`
	Timestamp time.Time `json:"timestamp"           db:"timestamp"`
}
