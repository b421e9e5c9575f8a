// Package reconciler maintains a client's in-memory projection of
// projects, channels, and per-channel message lists, kept consistent with
// the server by applying realtime hub events and by replacing whole lists
// from REST reads on load and channel switch.
//
// It is transport-free: callers feed it decoded hub events and fetched
// lists. That keeps it testable without a live connection.
package reconciler

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/lycan-99/devcord/internal/hub"
	"github.com/lycan-99/devcord/internal/models"
)

// State is one client's view. The mutex covers concurrent access from a
// websocket read goroutine and whatever drives the UI.
type State struct {
	mu sync.Mutex

	projects []models.Project
	messages map[string][]models.Message // compound channel key → ordered list

	activeProject string
	activeChannel string
}

func New() *State {
	return &State{
		messages:      make(map[string][]models.Message),
		activeProject: models.MainProject,
		activeChannel: models.GeneralChannel,
	}
}

// ResyncProjects replaces the project list from a GET /api/projects read.
func (s *State) ResyncProjects(projects []models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append([]models.Project(nil), projects...)
}

// ResyncChannel replaces the message list for a channel key from a REST
// read. This is the healing point: any broadcast missed while
// disconnected (or before subscribing) is recovered here.
func (s *State) ResyncChannel(key string, messages []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[key] = append([]models.Message(nil), messages...)
}

// SetActive records the viewed (project, channel) pair. The caller is
// expected to follow with a ResyncChannel from a fresh fetch.
func (s *State) SetActive(projectID, channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeProject = projectID
	s.activeChannel = channelID
}

// Active returns the currently viewed (project, channel) pair.
func (s *State) Active() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeProject, s.activeChannel
}

// Messages returns a copy of the list for a channel key.
func (s *State) Messages(key string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages[key]...)
}

// Projects returns a copy of the project list.
func (s *State) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Project(nil), s.projects...)
}

// Channels returns the channel list for a project, or nil if unknown.
func (s *State) Channels(projectID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == projectID {
			return append([]string(nil), p.Channels...)
		}
	}
	return nil
}

// Apply patches the state with one hub event. Unknown event types are
// ignored; malformed payloads are reported.
func (s *State) Apply(ev hub.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case hub.EventReceiveMessage, hub.EventMessageAck:
		var p hub.MessagePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		s.upsertMessage(p)

	case hub.EventMessageDeleted:
		var p hub.MessageDeletedPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		s.removeMessage(p.ChannelKey, p.MessageID)

	case hub.EventProjectCreated:
		var p models.Project
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		s.addProject(p)

	case hub.EventProjectDeleted:
		var projectID string
		if err := json.Unmarshal(ev.Payload, &projectID); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		s.removeProject(projectID)

	case hub.EventChannelCreated:
		var p hub.ChannelChangedPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		s.addChannel(p.ProjectID, p.ChannelID)

	case hub.EventChannelDeleted:
		var p hub.ChannelChangedPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", ev.Type, err)
		}
		s.removeChannel(p.ProjectID, p.ChannelID)
	}
	return nil
}

// upsertMessage inserts by id: a duplicate delivery (ack plus broadcast,
// or a replayed event) replaces the entry in place instead of appending a
// second copy.
func (s *State) upsertMessage(p hub.MessagePayload) {
	key := p.ChannelKey
	if key == "" {
		key = p.Message.ChannelKey()
	}
	list := s.messages[key]
	for i, m := range list {
		if m.ID == p.Message.ID {
			list[i] = p.Message
			return
		}
	}
	s.messages[key] = append(list, p.Message)
}

// removeMessage drops the id from the key's list; absent id is a no-op
// (the delete may race a resync that already removed it).
func (s *State) removeMessage(key string, id int64) {
	list := s.messages[key]
	for i, m := range list {
		if m.ID == id {
			s.messages[key] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

func (s *State) addProject(p models.Project) {
	for i, existing := range s.projects {
		if existing.ID == p.ID {
			s.projects[i] = p
			return
		}
	}
	s.projects = append(s.projects, p)
}

// removeProject drops the project, its channel registrations, and its
// message lists. If the client was viewing it, the selection falls back
// to the permanent main/general pair.
func (s *State) removeProject(projectID string) {
	for i, p := range s.projects {
		if p.ID == projectID {
			for _, ch := range p.Channels {
				delete(s.messages, models.ChannelKey(projectID, ch))
			}
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			break
		}
	}
	if s.activeProject == projectID {
		s.activeProject = models.MainProject
		s.activeChannel = models.GeneralChannel
	}
}

func (s *State) addChannel(projectID, channelID string) {
	for i, p := range s.projects {
		if p.ID == projectID {
			if !p.HasChannel(channelID) {
				s.projects[i].Channels = append(s.projects[i].Channels, channelID)
			}
			return
		}
	}
}

func (s *State) removeChannel(projectID, channelID string) {
	for i, p := range s.projects {
		if p.ID != projectID {
			continue
		}
		channels := make([]string, 0, len(p.Channels))
		for _, ch := range p.Channels {
			if ch != channelID {
				channels = append(channels, ch)
			}
		}
		s.projects[i].Channels = channels
		break
	}
	delete(s.messages, models.ChannelKey(projectID, channelID))

	if s.activeProject == projectID && s.activeChannel == channelID {
		s.activeChannel = models.GeneralChannel
	}
}
