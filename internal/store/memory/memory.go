// Package memory holds mutex-guarded in-memory implementations of the
// store interfaces. Handler and hub tests run against these instead of a
// live Postgres; the semantics (sentinel errors, commit-order ids, atomic
// cascades) match the postgres package.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lycan-99/devcord/internal/models"
	"github.com/lycan-99/devcord/internal/store"
)

// state is the shared backing data. ProjectStore and MessageStore are
// views over the same state so that cascades (project delete wiping
// messages) happen under one lock, like the Postgres transactions.
type state struct {
	mu       sync.Mutex
	projects []models.Project
	messages []models.Message
	nextID   int64
}

type ProjectStore struct{ s *state }
type MessageStore struct{ s *state }

// New returns a linked project/message store pair over fresh state.
func New() (*ProjectStore, *MessageStore) {
	s := &state{nextID: 1}
	return &ProjectStore{s: s}, &MessageStore{s: s}
}

// Seed installs the permanent main project, mirroring what EnsureSchema
// does against Postgres.
func (ps *ProjectStore) Seed() {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()
	for _, p := range ps.s.projects {
		if p.ID == models.MainProject {
			return
		}
	}
	ps.s.projects = append(ps.s.projects, models.Project{
		ID:        models.MainProject,
		Name:      "Main Project",
		Icon:      "📊",
		Channels:  []string{"general", "announcements", "resources"},
		CreatedAt: time.Now(),
	})
}

func (ps *ProjectStore) Create(ctx context.Context, p models.Project) (*models.Project, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	for _, existing := range ps.s.projects {
		if existing.ID == p.ID {
			return nil, fmt.Errorf("project %q: %w", p.ID, store.ErrDuplicate)
		}
	}

	p.CreatedAt = time.Now()
	p.Channels = append([]string(nil), p.Channels...)
	ps.s.projects = append(ps.s.projects, p)

	created := p
	return &created, nil
}

func (ps *ProjectStore) Get(ctx context.Context, id string) (*models.Project, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	for _, p := range ps.s.projects {
		if p.ID == id {
			out := p
			out.Channels = append([]string(nil), p.Channels...)
			return &out, nil
		}
	}
	return nil, nil
}

func (ps *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	out := make([]models.Project, 0, len(ps.s.projects))
	for _, p := range ps.s.projects {
		cp := p
		cp.Channels = append([]string(nil), p.Channels...)
		out = append(out, cp)
	}
	return out, nil
}

func (ps *ProjectStore) Delete(ctx context.Context, id string) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	idx := -1
	for i, p := range ps.s.projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("project %q: %w", id, store.ErrNotFound)
	}

	ps.s.projects = append(ps.s.projects[:idx], ps.s.projects[idx+1:]...)

	// Cascade under the same lock — atomic, like the Postgres tx.
	kept := ps.s.messages[:0]
	for _, m := range ps.s.messages {
		if m.ProjectID != id {
			kept = append(kept, m)
		}
	}
	ps.s.messages = kept
	return nil
}

func (ps *ProjectStore) AddChannel(ctx context.Context, projectID, channelID string) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	for i, p := range ps.s.projects {
		if p.ID != projectID {
			continue
		}
		if p.HasChannel(channelID) {
			return fmt.Errorf("channel %q: %w", channelID, store.ErrDuplicate)
		}
		ps.s.projects[i].Channels = append(ps.s.projects[i].Channels, channelID)
		return nil
	}
	return fmt.Errorf("project %q: %w", projectID, store.ErrNotFound)
}

func (ps *ProjectStore) RemoveChannel(ctx context.Context, projectID, channelID string) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	for i, p := range ps.s.projects {
		if p.ID != projectID {
			continue
		}
		channels := make([]string, 0, len(p.Channels))
		for _, ch := range p.Channels {
			if ch != channelID {
				channels = append(channels, ch)
			}
		}
		ps.s.projects[i].Channels = channels

		kept := ps.s.messages[:0]
		for _, m := range ps.s.messages {
			if m.ProjectID != projectID || m.ChannelID != channelID {
				kept = append(kept, m)
			}
		}
		ps.s.messages = kept
		return nil
	}
	return fmt.Errorf("project %q: %w", projectID, store.ErrNotFound)
}

func (ms *MessageStore) Create(ctx context.Context, m models.Message) (*models.Message, error) {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()

	m.ID = ms.s.nextID
	ms.s.nextID++
	m.CreatedAt = time.Now()
	ms.s.messages = append(ms.s.messages, m)

	created := m
	return &created, nil
}

func (ms *MessageStore) ListByChannel(ctx context.Context, projectID, channelID string) ([]models.Message, error) {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()

	out := make([]models.Message, 0)
	for _, m := range ms.s.messages {
		if m.ProjectID == projectID && m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (ms *MessageStore) Delete(ctx context.Context, id int64) (*models.Message, error) {
	ms.s.mu.Lock()
	defer ms.s.mu.Unlock()

	for i, m := range ms.s.messages {
		if m.ID == id {
			deleted := m
			ms.s.messages = append(ms.s.messages[:i], ms.s.messages[i+1:]...)
			return &deleted, nil
		}
	}
	return nil, fmt.Errorf("message %d: %w", id, store.ErrNotFound)
}
