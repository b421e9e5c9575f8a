package models

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"QA Test", "qa-test"},
		{"general", "general"},
		{"  Design   System  ", "design-system"},
		{"Mobile App", "mobile-app"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.name); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestChannelKey(t *testing.T) {
	if got := ChannelKey("qa-test", "general"); got != "qa-test-general" {
		t.Errorf("ChannelKey = %q, want %q", got, "qa-test-general")
	}

	msg := Message{ProjectID: "main", ChannelID: "resources"}
	if got := msg.ChannelKey(); got != "main-resources" {
		t.Errorf("Message.ChannelKey = %q, want %q", got, "main-resources")
	}
}

func TestHasChannel(t *testing.T) {
	p := Project{ID: "main", Channels: []string{"general", "announcements", "resources"}}
	if !p.HasChannel("general") {
		t.Error("expected general to be present")
	}
	if p.HasChannel("random") {
		t.Error("did not expect random to be present")
	}
}
