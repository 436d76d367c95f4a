package config

// DefaultDatabasePath is where the SQLite file lands when DATABASE_PATH is
// unset.
const DefaultDatabasePath = "./library.db"
