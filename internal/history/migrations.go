package history

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Runs table - one row per feature execution
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			feature TEXT NOT NULL,
			success INTEGER NOT NULL CHECK(success IN (0, 1)),
			message TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			data TEXT NOT NULL DEFAULT 'null',
			started_at INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_feature_started ON runs(feature, started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
