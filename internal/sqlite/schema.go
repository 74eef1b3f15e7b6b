package sqlite

// dbFileName is the database file created inside DataDir.
const dbFileName = "mapctl.db"

// Schema DDL. Statements are idempotent so Attach can run them against an
// existing database.
const (
	createEntries = `CREATE TABLE IF NOT EXISTS entries (
    entry_id TEXT PRIMARY KEY,
    namespace TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	idxEntriesKey       = `CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_key ON entries(namespace, key);`
	idxEntriesNamespace = `CREATE INDEX IF NOT EXISTS idx_entries_namespace ON entries(namespace);`
)

// schemaDDL runs in order on Attach.
var schemaDDL = []string{
	createEntries,
	idxEntriesKey,
	idxEntriesNamespace,
}
