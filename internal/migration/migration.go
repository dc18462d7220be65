// Package migration holds the SQLite schema.
package migration

// Create builds every table. It is safe to run against an existing database.
const Create = `
CREATE TABLE IF NOT EXISTS ChartEntry (
  date TEXT NOT NULL,
  position INTEGER NOT NULL,
  title TEXT NOT NULL,
  artist TEXT NOT NULL,
  track_id TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  resolved_at DATETIME,
  PRIMARY KEY (date, position)
);

CREATE INDEX IF NOT EXISTS ChartEntryStatus ON ChartEntry (status);

CREATE TABLE IF NOT EXISTS AudioFeature (
  track_id TEXT PRIMARY KEY,
  key INTEGER NOT NULL,
  fetched_at DATETIME
);

CREATE TABLE IF NOT EXISTS FeatureValue (
  track_id TEXT NOT NULL,
  name TEXT NOT NULL,
  value REAL NOT NULL,
  FOREIGN KEY (track_id) REFERENCES AudioFeature(track_id),
  PRIMARY KEY (track_id, name)
);

CREATE TABLE IF NOT EXISTS MissingFeature (
  track_id TEXT PRIMARY KEY,
  checked_at DATETIME
);
`
