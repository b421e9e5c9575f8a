package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lycan-99/devcord/internal/models"
)

// schema is applied at startup. The tables are deliberately free of
// foreign keys: a message references its (project_id, channel_id) pair by
// value, and consistency is maintained by cascade transactions rather
// than constraints, so deleting a project never trips FK ordering.
const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         text PRIMARY KEY,
	name       text NOT NULL,
	icon       text NOT NULL,
	channels   text[] NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS messages (
	id           bigserial PRIMARY KEY,
	username     text NOT NULL,
	avatar       text NOT NULL,
	body         text NOT NULL,
	display_time text NOT NULL,
	project_id   text NOT NULL,
	channel_id   text NOT NULL,
	created_at   timestamptz NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_messages_channel
	ON messages (project_id, channel_id, id);
`

// EnsureSchema creates the tables and seeds the permanent "main" project.
// Seeding is idempotent: ON CONFLICT DO NOTHING keeps an existing main
// project (and whatever channels it has accumulated) untouched.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	seed := `
		INSERT INTO projects (id, name, icon, channels)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING`
	_, err := pool.Exec(ctx, seed,
		models.MainProject,
		"Main Project",
		"📊",
		[]string{"general", "announcements", "resources"},
	)
	if err != nil {
		return fmt.Errorf("seed main project: %w", err)
	}
	return nil
}
