package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lycan-99/devcord/internal/models"
	"github.com/lycan-99/devcord/internal/store"
)

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

func (s *MessageStore) Create(ctx context.Context, m models.Message) (*models.Message, error) {
	// The id is bigserial, so the insert doesn't pass one; RETURNING
	// hands back the assigned id and commit timestamp.
	query := `
		INSERT INTO messages (username, avatar, body, display_time, project_id, channel_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING id, username, avatar, body, display_time, project_id, channel_id, created_at`

	var msg models.Message
	err := s.pool.QueryRow(ctx, query,
		m.User.Username, m.User.Avatar, m.Text, m.Time, m.ProjectID, m.ChannelID,
	).Scan(
		&msg.ID,
		&msg.User.Username,
		&msg.User.Avatar,
		&msg.Text,
		&msg.Time,
		&msg.ProjectID,
		&msg.ChannelID,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &msg, nil
}

func (s *MessageStore) ListByChannel(ctx context.Context, projectID, channelID string) ([]models.Message, error) {
	// Ascending id, not created_at: the id is assigned in commit order,
	// and integer comparison is cheaper than timestamp comparison on the
	// (project_id, channel_id, id) index.
	query := `
		SELECT id, username, avatar, body, display_time, project_id, channel_id, created_at
		FROM messages
		WHERE project_id = $1 AND channel_id = $2
		ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, query, projectID, channelID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.User.Username,
			&msg.User.Avatar,
			&msg.Text,
			&msg.Time,
			&msg.ProjectID,
			&msg.ChannelID,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

func (s *MessageStore) Delete(ctx context.Context, id int64) (*models.Message, error) {
	// RETURNING the deleted row lets the caller broadcast which channel
	// lost the message without a preceding read.
	query := `
		DELETE FROM messages
		WHERE id = $1
		RETURNING id, username, avatar, body, display_time, project_id, channel_id, created_at`

	var msg models.Message
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID,
		&msg.User.Username,
		&msg.User.Avatar,
		&msg.Text,
		&msg.Time,
		&msg.ProjectID,
		&msg.ChannelID,
		&msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("message %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("delete message: %w", err)
	}
	return &msg, nil
}
