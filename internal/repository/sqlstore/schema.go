package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

// column types that differ between dialects
type columnTypes struct {
	timestamp string
	float     string
}

var dialectTypes = map[string]columnTypes{
	DriverSQLite:   {timestamp: "DATETIME", float: "REAL"},
	DriverPostgres: {timestamp: "TIMESTAMPTZ", float: "DOUBLE PRECISION"},
}

// schema is applied in order. Every statement is idempotent.
var schema = []string{`
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	email_key TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	is_admin BOOLEAN NOT NULL DEFAULT FALSE,
	created_at {{timestamp}} NOT NULL,
	updated_at {{timestamp}} NOT NULL
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key_idx ON users (email_key)`,
	`
CREATE TABLE IF NOT EXISTS amenities (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	name_key TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at {{timestamp}} NOT NULL,
	updated_at {{timestamp}} NOT NULL
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS amenities_name_key_idx ON amenities (name_key)`,
	`
CREATE TABLE IF NOT EXISTS places (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price {{float}} NOT NULL CHECK (price > 0),
	latitude {{float}} NULL,
	longitude {{float}} NULL,
	owner_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	created_at {{timestamp}} NOT NULL,
	updated_at {{timestamp}} NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS places_owner_idx ON places (owner_id)`,
	`
CREATE TABLE IF NOT EXISTS place_amenities (
	place_id TEXT NOT NULL REFERENCES places (id) ON DELETE CASCADE,
	amenity_id TEXT NOT NULL REFERENCES amenities (id) ON DELETE RESTRICT,
	position INTEGER NOT NULL,
	PRIMARY KEY (place_id, amenity_id)
)`,
	`CREATE INDEX IF NOT EXISTS place_amenities_amenity_idx ON place_amenities (amenity_id)`,
	`
CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	place_id TEXT NOT NULL REFERENCES places (id) ON DELETE CASCADE,
	created_at {{timestamp}} NOT NULL,
	updated_at {{timestamp}} NOT NULL,
	UNIQUE (user_id, place_id)
)`,
	`CREATE INDEX IF NOT EXISTS reviews_place_idx ON reviews (place_id)`,
}

// Init creates the tables and indexes when they do not exist yet.
func (d *DB) Init(ctx context.Context) error {
	types, ok := dialectTypes[d.driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", d.driver)
	}
	r := strings.NewReplacer("{{timestamp}}", types.timestamp, "{{float}}", types.float)
	for _, stmt := range schema {
		if _, err := d.sql.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
