package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/k2kurs/kursadmin/internal/data/pgxutil"
	"github.com/k2kurs/kursadmin/internal/domain/model"
	apperrors "github.com/k2kurs/kursadmin/internal/errors"
)

// AuditRepo provides database operations for the audit log.
type AuditRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAuditRepo creates a new AuditRepo with real time provider.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewAuditRepoWithTimeProvider creates a new AuditRepo with a custom time provider (useful for tests).
func NewAuditRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *AuditRepo {
	return &AuditRepo{DB: db, timeProvider: tp}
}

const auditSchemaDDL = `
	CREATE TABLE IF NOT EXISTS audit_log (
		id         BIGSERIAL PRIMARY KEY,
		user_name  TEXT NOT NULL,
		action     TEXT NOT NULL,
		table_name TEXT,
		record_id  TEXT,
		timestamp  TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log (timestamp DESC);
`

// EnsureSchema provisions the audit_log table if it does not exist.
func (r *AuditRepo) EnsureSchema(ctx context.Context) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, auditSchemaDDL)
		return execErr
	})
	if err != nil && !apperrors.IsDuplicateObject(err) {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Insert appends one audit entry. A zero Timestamp is filled from the
// repo's clock.
func (r *AuditRepo) Insert(ctx context.Context, entry model.AuditEntry) error {
	if entry.UserName == "" || entry.Action == "" {
		return errors.New("audit entry requires user_name and action")
	}
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = r.timeProvider.Now()
	}
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			INSERT INTO audit_log (user_name, action, table_name, record_id, timestamp)
			VALUES ($1, $2, $3, $4, $5)
		`, entry.UserName, entry.Action, entry.TableName, entry.RecordID, ts.UTC())
		return execErr
	}); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// ListRecent returns the newest entries, most recent first.
func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []model.AuditEntry
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, user_name, action, table_name, record_id, timestamp
			FROM audit_log
			ORDER BY timestamp DESC, id DESC
			LIMIT $1
		`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.AuditEntry])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}
