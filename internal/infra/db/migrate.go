package db

import "database/sql"

// MigrateUp creates the cache schema. The statements are idempotent so both
// binaries can run them at startup without coordination.
//
// GPS pairs are stored as a single "<lon>,<lat>" text field; timestamps are
// stored in UTC so lexical ordering matches chronological ordering.
func MigrateUp(database *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS articles (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    title         TEXT NOT NULL,
    date          TIMESTAMP NOT NULL,
    read_more_url TEXT NOT NULL,
    content       TEXT,
    image_url     TEXT,
    UNIQUE (title, date)
)`,
		`
CREATE TABLE IF NOT EXISTS carparks (
    id                  INTEGER PRIMARY KEY AUTOINCREMENT,
    name                TEXT NOT NULL UNIQUE,
    last_update         TIMESTAMP NOT NULL,
    total_capacity      INTEGER NOT NULL,
    available_capacity  INTEGER NOT NULL,
    description         TEXT NOT NULL,
    extra_info          TEXT,
    is_open_now         INTEGER NOT NULL,
    is_temporary_closed INTEGER NOT NULL,
    is_free             INTEGER NOT NULL,
    is_in_lez           INTEGER NOT NULL,
    operator            TEXT NOT NULL,
    location            TEXT NOT NULL
)`,
		`
CREATE TABLE IF NOT EXISTS studylocations (
    id              INTEGER PRIMARY KEY,
    title           TEXT NOT NULL,
    label           TEXT NOT NULL,
    address         TEXT NOT NULL,
    total_capacity  INTEGER NOT NULL,
    reserved_amount INTEGER NOT NULL,
    read_more_url   TEXT NOT NULL,
    image_url       TEXT,
    location        TEXT NOT NULL,
    reservation_tag TEXT,
    available_tag   TEXT
)`,
		// List orderings used by every read path.
		`CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date DESC, title ASC)`,
		`CREATE INDEX IF NOT EXISTS idx_studylocations_title ON studylocations(title ASC)`,
	}

	for _, stmt := range statements {
		if _, err := database.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
