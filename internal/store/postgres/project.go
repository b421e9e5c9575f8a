package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lycan-99/devcord/internal/models"
	"github.com/lycan-99/devcord/internal/store"
)

type ProjectStore struct {
	pool *pgxpool.Pool
}

func NewProjectStore(pool *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{pool: pool}
}

func (s *ProjectStore) Create(ctx context.Context, p models.Project) (*models.Project, error) {
	query := `
		INSERT INTO projects (id, name, icon, channels, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id, name, icon, channels, created_at`

	var created models.Project
	err := s.pool.QueryRow(ctx, query, p.ID, p.Name, p.Icon, p.Channels).Scan(
		&created.ID,
		&created.Name,
		&created.Icon,
		&created.Channels,
		&created.CreatedAt,
	)
	if err != nil {
		// 23505 = unique_violation on the primary key.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("project %q: %w", p.ID, store.ErrDuplicate)
		}
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return &created, nil
}

func (s *ProjectStore) Get(ctx context.Context, id string) (*models.Project, error) {
	query := `
		SELECT id, name, icon, channels, created_at
		FROM projects
		WHERE id = $1`

	var p models.Project
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Icon,
		&p.Channels,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	query := `
		SELECT id, name, icon, channels, created_at
		FROM projects
		ORDER BY created_at ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Icon,
			&p.Channels,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

// Delete removes the project row and every message referencing it inside
// one transaction: either both land or neither does, so a failed message
// purge can never strand orphans behind a vanished project.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete project: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %q: %w", id, store.ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE project_id = $1`, id); err != nil {
		return fmt.Errorf("delete project messages: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete project: %w", err)
	}
	return nil
}

func (s *ProjectStore) AddChannel(ctx context.Context, projectID, channelID string) error {
	// array_append under a NOT array-contains guard keeps the check and
	// the update in one statement, so two concurrent adds of the same
	// channel can't both succeed.
	query := `
		UPDATE projects
		SET channels = array_append(channels, $2)
		WHERE id = $1 AND NOT channels @> ARRAY[$2]`

	tag, err := s.pool.Exec(ctx, query, projectID, channelID)
	if err != nil {
		return fmt.Errorf("add channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish "no such project" from "channel already there".
		p, err := s.Get(ctx, projectID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("project %q: %w", projectID, store.ErrNotFound)
		}
		return fmt.Errorf("channel %q: %w", channelID, store.ErrDuplicate)
	}
	return nil
}

// RemoveChannel drops the channel from the project's list and deletes the
// channel's messages in the same transaction.
func (s *ProjectStore) RemoveChannel(ctx context.Context, projectID, channelID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin remove channel: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE projects
		SET channels = array_remove(channels, $2)
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, projectID, channelID)
	if err != nil {
		return fmt.Errorf("remove channel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %q: %w", projectID, store.ErrNotFound)
	}

	del := `DELETE FROM messages WHERE project_id = $1 AND channel_id = $2`
	if _, err := tx.Exec(ctx, del, projectID, channelID); err != nil {
		return fmt.Errorf("delete channel messages: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit remove channel: %w", err)
	}
	return nil
}
