package history

const schemaV1 = `
CREATE TABLE IF NOT EXISTS events (
    event_id      INTEGER PRIMARY KEY AUTOINCREMENT,
    app           TEXT NOT NULL,
    operation     TEXT NOT NULL,
    channel       TEXT,
    from_version  TEXT,
    to_version    TEXT,
    strategy      TEXT,
    status        TEXT NOT NULL,
    message       TEXT,
    created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_app_created
    ON events(app, created_at DESC);
`
