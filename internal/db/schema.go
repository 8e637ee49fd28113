package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'student' CHECK (role IN ('admin', 'security', 'student')),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS lost_reports (
    id          INTEGER PRIMARY KEY,
    student_id  INTEGER NOT NULL REFERENCES users(id),
    item_name   TEXT NOT NULL,
    description TEXT,
    category    TEXT NOT NULL,
    location    TEXT,
    status      TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'closed', 'cancelled')),
    reported_at DATETIME NOT NULL,
    image       BLOB,
    image_mime  TEXT,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_lost_reports_student ON lost_reports(student_id);

CREATE TABLE IF NOT EXISTS found_items (
    id          INTEGER PRIMARY KEY,
    logged_by   INTEGER NOT NULL REFERENCES users(id),
    item_name   TEXT NOT NULL,
    description TEXT,
    category    TEXT NOT NULL,
    location    TEXT,
    status      TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'claimed', 'returned')),
    found_at    DATETIME NOT NULL,
    image       BLOB,
    image_mime  TEXT,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_found_items_status ON found_items(status);

CREATE TABLE IF NOT EXISTS matches (
    id         INTEGER PRIMARY KEY,
    report_id  INTEGER NOT NULL REFERENCES lost_reports(id),
    found_id   INTEGER NOT NULL REFERENCES found_items(id),
    score      INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
    notified   INTEGER NOT NULL DEFAULT 0,
    matched_at DATETIME NOT NULL,
    UNIQUE (report_id, found_id)
);

CREATE TABLE IF NOT EXISTS notifications (
    id           INTEGER PRIMARY KEY,
    recipient_id INTEGER NOT NULL REFERENCES users(id),
    match_id     INTEGER REFERENCES matches(id),
    message      TEXT NOT NULL,
    is_read      INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
