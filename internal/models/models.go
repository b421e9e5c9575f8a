package models

import (
	"strings"
	"time"
)

// The permanent workspace every installation ships with. It is seeded at
// startup and can never be deleted; clients fall back to it whenever the
// project they were viewing disappears underneath them.
const (
	MainProject    = "main"
	GeneralChannel = "general"
)

// DefaultChannels is the channel list every newly created project starts
// with. "general" is mandatory (and permanent); "resources" is convention.
var DefaultChannels = []string{"general", "resources"}

// Project is a workspace grouping named channels.
//
// Why is ID a slug and not a UUID?
//   - The ID doubles as the URL segment clients navigate with
//     (/api/messages/qa-test/general). A readable slug keeps links
//     shareable and debugging sane.
//   - It is derived from the display name once, at creation, and never
//     changes afterwards — renames are out of scope.
//
// Channels is an ordered list of channel identifiers, not a separate table:
// a channel has no attributes of its own beyond its name, so it lives as a
// string array on its project, exactly as it is stored.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Channels  []string  `json:"channels"`
	CreatedAt time.Time `json:"createdAt"`
}

// HasChannel reports whether the project currently lists the channel.
func (p *Project) HasChannel(channelID string) bool {
	for _, ch := range p.Channels {
		if ch == channelID {
			return true
		}
	}
	return false
}

// UserRef is the send-time snapshot of the sending user embedded in every
// message. It is a copy, not a reference: later profile changes never
// rewrite history.
type UserRef struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Message is a single chat message scoped to a (project, channel) pair.
//
// Why int64 for ID?
//   - Messages are the highest-volume table; bigserial is small,
//     index-friendly, and monotonically increasing, so ordering by id is
//     ordering by commit time.
//   - The store assigns it; clients never invent message ids.
//
// Time is the display-formatted timestamp the client rendered at send time
// ("3:04 PM"); CreatedAt is the store-assigned instant used for ordering.
// They are deliberately separate fields.
type Message struct {
	ID        int64     `json:"id"`
	User      UserRef   `json:"user"`
	Text      string    `json:"text"`
	Time      string    `json:"time"`
	ProjectID string    `json:"projectId"`
	ChannelID string    `json:"channelId"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChannelKey returns the compound key identifying this message's history
// list ("projectId-channelId").
func (m *Message) ChannelKey() string {
	return ChannelKey(m.ProjectID, m.ChannelID)
}

// ChannelKey builds the compound channel key for a (project, channel) pair.
//
// The key is only ever built, never split: project and channel slugs may
// themselves contain hyphens ("qa-test-general" is ambiguous), so anything
// that needs the parts carries them as separate fields and uses the key
// purely as a map address.
func ChannelKey(projectID, channelID string) string {
	return projectID + "-" + channelID
}

// Slugify derives a URL-safe identifier from a display name: lowercased,
// with whitespace runs collapsed to single hyphens. "QA Test" → "qa-test".
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), "-")
}
