package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Times and durations are stored as integer nanoseconds so both drivers
// read back exactly what was written.
const schema = `
CREATE TABLE IF NOT EXISTS fetches (
    id          TEXT PRIMARY KEY,
    time_ns     INTEGER NOT NULL,
    method      TEXT NOT NULL,
    target      TEXT NOT NULL,
    host        TEXT NOT NULL,
    status      INTEGER NOT NULL,
    outcome     TEXT NOT NULL,
    error       TEXT,
    bytes       INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fetches_time ON fetches(time_ns);
CREATE INDEX IF NOT EXISTS idx_fetches_host ON fetches(host);
CREATE INDEX IF NOT EXISTS idx_fetches_outcome ON fetches(outcome);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const insertEntry = `
INSERT INTO fetches (id, time_ns, method, target, host, status, outcome, error, bytes, duration_ns)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING;
`

const selectColumns = `id, time_ns, method, target, host, status, outcome, error, bytes, duration_ns`
