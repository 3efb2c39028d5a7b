package store

// knownGestures seeds the gestures table with the labels the stabilizer can
// emit. Actions reference these rows.
var knownGestures = []struct {
	label       string
	description string
}{
	{"Thumb_Up", "Click and double-click"},
	{"Victory", "Vertical scroll"},
	{"OK", "Context menu"},
}

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Gestures table - labels that bindings may target
		`CREATE TABLE IF NOT EXISTS gestures (
			label TEXT PRIMARY KEY,
			description TEXT NOT NULL DEFAULT ''
		)`,

		// Actions table - external plugin actions run on gesture start
		`CREATE TABLE IF NOT EXISTS actions (
			id TEXT PRIMARY KEY,
			gesture TEXT NOT NULL REFERENCES gestures(label) ON DELETE CASCADE,
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_actions_gesture ON actions(gesture)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	for _, g := range knownGestures {
		if _, err := s.db.Exec(
			`INSERT OR IGNORE INTO gestures (label, description) VALUES (?, ?)`,
			g.label, g.description,
		); err != nil {
			return err
		}
	}

	return nil
}
