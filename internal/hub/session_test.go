package hub

import (
	"errors"
	"testing"
	"time"
)

func TestSessionJoinAndPrune(t *testing.T) {
	table := NewSessionTable()

	id := table.Create()
	if err := table.Join(id, "conn-1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := table.Join(id, "conn-2"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := table.Members(id); len(got) != 2 {
		t.Errorf("members = %v", got)
	}

	table.Prune("conn-1")
	if got := table.Members(id); len(got) != 1 || got[0] != "conn-2" {
		t.Errorf("members after prune = %v", got)
	}
}

func TestJoinUnknownSessionIsHardError(t *testing.T) {
	table := NewSessionTable()
	if err := table.Join("ghost", "conn-1"); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("got %v, want ErrUnknownSession", err)
	}
}

func TestSweepDiscardsOnlyIdleEmptySessions(t *testing.T) {
	table := NewSessionTable()
	now := time.Now()
	table.now = func() time.Time { return now }

	empty := table.Create()
	occupied := table.Create()
	if err := table.Join(occupied, "conn-1"); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Not idle long enough yet: nothing goes.
	if n := table.Sweep(time.Hour); n != 0 {
		t.Errorf("premature sweep removed %d", n)
	}

	now = now.Add(2 * time.Hour)
	if n := table.Sweep(time.Hour); n != 1 {
		t.Errorf("sweep removed %d, want 1", n)
	}
	if err := table.Join(empty, "conn-2"); !errors.Is(err, ErrUnknownSession) {
		t.Error("swept session still joinable")
	}
	if got := table.Members(occupied); len(got) != 1 {
		t.Error("occupied session was swept")
	}
}

func TestSweptAfterLastMemberLeaves(t *testing.T) {
	table := NewSessionTable()
	now := time.Now()
	table.now = func() time.Time { return now }

	id := table.Create()
	table.Join(id, "conn-1")

	now = now.Add(2 * time.Hour)
	table.Prune("conn-1") // refreshes lastActive

	// Freshly emptied: survives one sweep, goes after the TTL.
	if n := table.Sweep(time.Hour); n != 0 {
		t.Errorf("sweep removed freshly emptied session")
	}
	now = now.Add(2 * time.Hour)
	if n := table.Sweep(time.Hour); n != 1 {
		t.Errorf("sweep removed %d, want 1", n)
	}
}
