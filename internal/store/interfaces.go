package store

import (
	"context"

	"github.com/lycan-99/devcord/internal/models"
)

// Every method takes ctx first: these all touch the network, and a
// cancelled HTTP request should cancel its query. Not-found reads return
// (nil, nil); not-found mutations return ErrNotFound because their callers
// need the distinction for a 404.
//
// Neither store enforces the permanence of the "main" project or "general"
// channels — that is a ValidationError rejected at the API/hub boundary
// before any write is attempted.

// ProjectStore persists projects and their embedded channel lists.
type ProjectStore interface {
	// Create inserts a project. Returns ErrDuplicate if the id is taken.
	Create(ctx context.Context, p models.Project) (*models.Project, error)

	// Get returns a project by id, or nil, nil when absent.
	Get(ctx context.Context, id string) (*models.Project, error)

	// List returns all projects in creation order. Empty slice, never nil.
	List(ctx context.Context) ([]models.Project, error)

	// Delete removes the project and every message scoped to it in one
	// atomic operation — no window where the project is gone but its
	// messages linger. Returns ErrNotFound if the project is absent.
	Delete(ctx context.Context, id string) error

	// AddChannel appends a channel id to the project's list. Returns
	// ErrNotFound for a missing project, ErrDuplicate if already listed.
	AddChannel(ctx context.Context, projectID, channelID string) error

	// RemoveChannel drops the channel from the list and deletes its
	// messages atomically. Returns ErrNotFound for a missing project.
	RemoveChannel(ctx context.Context, projectID, channelID string) error
}

// MessageStore persists chat messages.
type MessageStore interface {
	// Create persists a message and returns it with the store-assigned
	// ID and CreatedAt populated.
	Create(ctx context.Context, m models.Message) (*models.Message, error)

	// ListByChannel returns the channel's messages in commit order
	// (ascending id). Empty slice, never nil.
	ListByChannel(ctx context.Context, projectID, channelID string) ([]models.Message, error)

	// Delete removes a message by id and returns the deleted row, so the
	// caller can name the affected channel in its broadcast. Returns
	// ErrNotFound when absent.
	Delete(ctx context.Context, id int64) (*models.Message, error)
}
