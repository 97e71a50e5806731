package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/k2kurs/kursadmin/internal/data/pgxutil"
	domainauth "github.com/k2kurs/kursadmin/internal/domain/auth"
	apperrors "github.com/k2kurs/kursadmin/internal/errors"
)

// ErrSessionNotFound is returned when no live session exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepo provides database operations for user sessions.
type SessionRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSessionRepo creates a new SessionRepo with real time provider.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewSessionRepoWithTimeProvider creates a new SessionRepo with a custom time provider (useful for tests).
func NewSessionRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *SessionRepo {
	return &SessionRepo{DB: db, timeProvider: tp}
}

const sessionSchemaDDL = `
	CREATE TABLE IF NOT EXISTS user_sessions (
		session_id TEXT PRIMARY KEY,
		user_id    TEXT,
		user_info  JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		expires_at TIMESTAMPTZ NOT NULL,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE
	);
	CREATE INDEX IF NOT EXISTS idx_user_sessions_expires_at ON user_sessions (expires_at);
`

// EnsureSchema provisions the user_sessions table if it does not exist.
// Concurrent instances racing on the same DDL are tolerated.
func (r *SessionRepo) EnsureSchema(ctx context.Context) error {
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, sessionSchemaDDL)
		return execErr
	})
	if err != nil && !apperrors.IsDuplicateObject(err) {
		return fmt.Errorf("ensure session schema: %w", err)
	}
	return nil
}

// Create inserts a new session row.
func (r *SessionRepo) Create(ctx context.Context, session domainauth.Session) error {
	if session.ID == "" {
		return errors.New("session id is required")
	}
	info, err := json.Marshal(session.Profile)
	if err != nil {
		return fmt.Errorf("marshal session profile: %w", err)
	}
	// Some identity providers omit a stable user id; the column is nullable.
	var userID *string
	if session.UserID != "" {
		userID = &session.UserID
	}
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			INSERT INTO user_sessions (session_id, user_id, user_info, created_at, expires_at, is_active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
		`, session.ID, userID, info, r.timeProvider.Now().UTC(), session.ExpiresAt.UTC())
		return execErr
	}); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// Validate returns the stored profile for a session that is active and not
// yet expired. Expiry is evaluated by the database clock so every instance
// agrees on it.
func (r *SessionRepo) Validate(ctx context.Context, sessionID string) (domainauth.UserProfile, error) {
	var raw []byte
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT user_info
			FROM user_sessions
			WHERE session_id = $1 AND is_active AND expires_at > now()
		`, sessionID).Scan(&raw)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainauth.UserProfile{}, ErrSessionNotFound
		}
		return domainauth.UserProfile{}, apperrors.MapDBError(err)
	}

	var profile domainauth.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		// Unreadable profile data means the session cannot be trusted.
		return domainauth.UserProfile{}, fmt.Errorf("decode session profile: %w", err)
	}
	return profile, nil
}

// Invalidate marks a session inactive. Unknown ids are a no-op.
func (r *SessionRepo) Invalidate(ctx context.Context, sessionID string) error {
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, execErr := conn.Exec(ctx, `
			UPDATE user_sessions SET is_active = FALSE WHERE session_id = $1
		`, sessionID)
		return execErr
	}); err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// PurgeExpired deletes sessions whose expiry has passed. Returns the number
// of rows removed.
func (r *SessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	var removed int64
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		ct, execErr := conn.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at <= now()`)
		if execErr != nil {
			return execErr
		}
		removed = ct.RowsAffected()
		return nil
	}); err != nil {
		return 0, apperrors.MapDBError(err)
	}
	return removed, nil
}
