package database

import "strings"

// Column types differ between the backends; everything else is shared.
var schemaTemplate = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id {{pk}},
		discord_user_id TEXT NOT NULL UNIQUE,
		discord_guild_id TEXT NOT NULL DEFAULT '',
		user_role INTEGER NOT NULL DEFAULT 1,
		temporary_points INTEGER NOT NULL DEFAULT 0 CHECK (temporary_points >= 0),
		permanent_points INTEGER NOT NULL DEFAULT 0 CHECK (permanent_points >= 0),
		last_infraction_at {{ts}},
		is_banned BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS strikes (
		strike_id {{pk}},
		user_id BIGINT NOT NULL REFERENCES users (user_id),
		severity INTEGER NOT NULL,
		reason TEXT NOT NULL,
		created_at {{ts}} NOT NULL,
		created_by TEXT NOT NULL,
		last_edited_at {{ts}} NOT NULL,
		last_edited_by TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_strikes_user ON strikes (user_id)`,
	`CREATE TABLE IF NOT EXISTS exiles (
		exile_id {{pk}},
		user_id BIGINT NOT NULL REFERENCES users (user_id),
		reason TEXT NOT NULL,
		exile_status INTEGER NOT NULL,
		start_at {{ts}} NOT NULL,
		end_at {{ts}}
	)`,
	`CREATE INDEX IF NOT EXISTS idx_exiles_status_end ON exiles (exile_status, end_at)`,
	`CREATE INDEX IF NOT EXISTS idx_exiles_user ON exiles (user_id)`,
	`CREATE TABLE IF NOT EXISTS sticky_roles (
		sticky_role_id {{pk}},
		user_id BIGINT NOT NULL REFERENCES users (user_id),
		role_id TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sticky_roles_user ON sticky_roles (user_id)`,
	`CREATE TABLE IF NOT EXISTS notes (
		note_id {{pk}},
		user_id BIGINT NOT NULL REFERENCES users (user_id),
		content TEXT NOT NULL,
		is_warning BOOLEAN NOT NULL DEFAULT FALSE,
		created_at {{ts}} NOT NULL,
		created_by TEXT NOT NULL,
		last_edited_at {{ts}} NOT NULL,
		last_edited_by TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notes_user ON notes (user_id)`,
	`CREATE TABLE IF NOT EXISTS forms (
		form_id {{pk}},
		user_id BIGINT NOT NULL REFERENCES users (user_id),
		reason TEXT NOT NULL,
		approval BOOLEAN,
		approved_by TEXT,
		submitted_at {{ts}} NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_forms_user ON forms (user_id)`,
	`CREATE TABLE IF NOT EXISTS announcements (
		announcement_id {{pk}},
		content TEXT NOT NULL,
		created_at {{ts}} NOT NULL,
		created_by TEXT NOT NULL,
		last_edited_at {{ts}} NOT NULL,
		last_edited_by TEXT NOT NULL,
		is_sent BOOLEAN NOT NULL DEFAULT FALSE,
		channel_id TEXT NOT NULL DEFAULT '',
		message_id TEXT NOT NULL DEFAULT ''
	)`,
}

func schemaFor(driver string) []string {
	pk, ts := "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	if driver == DriverSQLite {
		pk, ts = "INTEGER PRIMARY KEY AUTOINCREMENT", "TIMESTAMP"
	}
	r := strings.NewReplacer("{{pk}}", pk, "{{ts}}", ts)

	stmts := make([]string, len(schemaTemplate))
	for i, stmt := range schemaTemplate {
		stmts[i] = r.Replace(stmt)
	}
	return stmts
}
