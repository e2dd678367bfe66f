package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_products",
		SQL: `CREATE TABLE IF NOT EXISTS products (
  id       TEXT          PRIMARY KEY,
  name     TEXT          NOT NULL,
  price    NUMERIC(12,2) NOT NULL CHECK (price >= 0),
  position INTEGER       NOT NULL
);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id         TEXT          PRIMARY KEY,
  username   TEXT          NOT NULL UNIQUE,
  balance    NUMERIC(14,2) NOT NULL,
  created_at TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_cart_items",
		SQL: `CREATE TABLE IF NOT EXISTS cart_items (
  user_id    TEXT    NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  product_id TEXT    NOT NULL,
  quantity   INTEGER NOT NULL CHECK (quantity >= 1),
  position   INTEGER NOT NULL,
  PRIMARY KEY (user_id, product_id)
);`,
	},
	{
		Name: "create_index_cart_items_user_position",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_cart_items_user_position ON cart_items (user_id, position);`,
	},
}

// EnsureMigrated creates the shop schema unless the users table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With().Str("component", "database").Str("db_host", dbHost).Logger()

	log.Info().Str("event", "db_migration_check").Msg("checking schema")

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass('public.users') IS NOT NULL").Scan(&exists)
	if err != nil {
		log.Error().Err(err).
			Str("event", "db_migration_failed").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("failed to check sentinel table")
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().Err(err).
				Str("event", "db_migration_failed").
				Str("migration_step", step.Name).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info().
			Str("event", "db_migration_step").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("migration step applied")
	}

	log.Info().
		Str("event", "db_migration_success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("schema migrated")
	return nil
}
