package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/lycan-99/devcord/internal/models"
	"github.com/lycan-99/devcord/internal/store"
)

// Compile-time proof the views satisfy the store contracts.
var (
	_ store.ProjectStore = (*ProjectStore)(nil)
	_ store.MessageStore = (*MessageStore)(nil)
)

func TestProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	projects, _ := New()
	projects.Seed()

	created, err := projects.Create(ctx, models.Project{
		ID:       "qa-test",
		Name:     "QA Test",
		Icon:     "🚀",
		Channels: models.DefaultChannels,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be assigned")
	}

	if _, err := projects.Create(ctx, models.Project{ID: "qa-test"}); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate create: got %v, want ErrDuplicate", err)
	}

	list, err := projects.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != models.MainProject || list[1].ID != "qa-test" {
		t.Errorf("unexpected project list: %+v", list)
	}

	if err := projects.Delete(ctx, "qa-test"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := projects.Delete(ctx, "qa-test"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestProjectDeleteCascadesMessages(t *testing.T) {
	ctx := context.Background()
	projects, messages := New()

	if _, err := projects.Create(ctx, models.Project{ID: "qa-test", Channels: models.DefaultChannels}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	for _, ch := range []string{"general", "resources"} {
		if _, err := messages.Create(ctx, models.Message{ProjectID: "qa-test", ChannelID: ch, Text: "hi"}); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}
	if _, err := messages.Create(ctx, models.Message{ProjectID: "other", ChannelID: "general", Text: "keep"}); err != nil {
		t.Fatalf("create message: %v", err)
	}

	if err := projects.Delete(ctx, "qa-test"); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	for _, ch := range []string{"general", "resources"} {
		got, err := messages.ListByChannel(ctx, "qa-test", ch)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("channel %s: %d messages survived cascade", ch, len(got))
		}
	}

	kept, err := messages.ListByChannel(ctx, "other", "general")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(kept) != 1 {
		t.Errorf("unrelated message was deleted by cascade")
	}
}

func TestChannelAddRemove(t *testing.T) {
	ctx := context.Background()
	projects, messages := New()

	if _, err := projects.Create(ctx, models.Project{ID: "qa-test", Channels: models.DefaultChannels}); err != nil {
		t.Fatalf("create project: %v", err)
	}

	if err := projects.AddChannel(ctx, "qa-test", "random"); err != nil {
		t.Fatalf("add channel: %v", err)
	}
	if err := projects.AddChannel(ctx, "qa-test", "random"); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("duplicate channel: got %v, want ErrDuplicate", err)
	}
	if err := projects.AddChannel(ctx, "nope", "random"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing project: got %v, want ErrNotFound", err)
	}

	if _, err := messages.Create(ctx, models.Message{ProjectID: "qa-test", ChannelID: "random", Text: "bye"}); err != nil {
		t.Fatalf("create message: %v", err)
	}
	if err := projects.RemoveChannel(ctx, "qa-test", "random"); err != nil {
		t.Fatalf("remove channel: %v", err)
	}

	p, err := projects.Get(ctx, "qa-test")
	if err != nil || p == nil {
		t.Fatalf("get: %v %v", p, err)
	}
	if p.HasChannel("random") {
		t.Error("channel still listed after removal")
	}
	left, _ := messages.ListByChannel(ctx, "qa-test", "random")
	if len(left) != 0 {
		t.Error("channel messages survived removal")
	}
}

func TestMessageIDsFollowCommitOrder(t *testing.T) {
	ctx := context.Background()
	_, messages := New()

	var last int64
	for i := 0; i < 5; i++ {
		m, err := messages.Create(ctx, models.Message{ProjectID: "main", ChannelID: "general", Text: "x"})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if m.ID <= last {
			t.Fatalf("ids not monotonic: %d after %d", m.ID, last)
		}
		last = m.ID
	}

	list, err := messages.ListByChannel(ctx, "main", "general")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i := 1; i < len(list); i++ {
		if list[i].ID < list[i-1].ID {
			t.Fatalf("list out of order at %d", i)
		}
	}
}

func TestDeleteMessage(t *testing.T) {
	ctx := context.Background()
	_, messages := New()

	m, err := messages.Create(ctx, models.Message{ProjectID: "main", ChannelID: "general", Text: "gone"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	deleted, err := messages.Delete(ctx, m.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ChannelKey() != "main-general" {
		t.Errorf("deleted row channel key = %q", deleted.ChannelKey())
	}

	if _, err := messages.Delete(ctx, m.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}
