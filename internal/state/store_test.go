package state

import (
	"errors"
	"testing"
	"time"

	"github.com/five82/onair/internal/nhk"
)

func TestStore_UpdateAndGuideClone(t *testing.T) {
	var s Store

	ch := &nhk.Channel{Present: &nhk.Program{Title: "News7", Genres: []string{"0000"}}}

	before := time.Now()
	s.Update(nhk.ServiceG1, 1, ch, nil)

	g := s.Guide(nhk.ServiceG1)
	if !g.HasChannel || g.Channel.Present == nil || g.Channel.Present.Title != "News7" {
		t.Fatalf("guide = %#v, want present News7", g.Channel)
	}
	if g.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", g.LastUpdated, before)
	}
	if g.LastError != nil || g.Generation != 1 {
		t.Fatalf("LastError = %v Generation = %d", g.LastError, g.Generation)
	}

	// Returned guide should be independent of the stored one.
	g.Channel.Present.Title = "changed"
	g.Channel.Present.Genres[0] = "9999"
	ch.Present.Title = "caller changed"
	g2 := s.Guide(nhk.ServiceG1)
	if g2.Channel.Present.Title != "News7" || g2.Channel.Present.Genres[0] != "0000" {
		t.Fatalf("Guide should clone programs; got %#v", g2.Channel.Present)
	}

	if other := s.Guide(nhk.ServiceE1); other.HasChannel {
		t.Fatalf("unrelated service has data: %#v", other)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(nhk.ServiceR3, 1, &nhk.Channel{Present: &nhk.Program{Title: "Jazz"}}, nil)
	prev := s.Guide(nhk.ServiceR3)

	origErr := errors.New("boom")
	s.Update(nhk.ServiceR3, 2, nil, origErr)

	g := s.Guide(nhk.ServiceR3)
	if !g.HasChannel || g.Channel.Present.Title != "Jazz" {
		t.Fatalf("channel changed on error: got %#v", g.Channel.Present)
	}
	if !g.LastUpdated.Equal(prev.LastUpdated) {
		t.Fatalf("LastUpdated moved on error: %v -> %v", prev.LastUpdated, g.LastUpdated)
	}
	if g.LastAttempt.Before(prev.LastAttempt) {
		t.Fatalf("LastAttempt = %v, want >= %v", g.LastAttempt, prev.LastAttempt)
	}
	if g.LastError == nil || g.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", g.LastError)
	}
	if g.LastError != origErr {
		t.Fatalf("LastError = %#v, want the recorded error unchanged", g.LastError)
	}
	if got := s.Failing(); len(got) != 1 || got[0] != nhk.ServiceR3 {
		t.Fatalf("Failing = %v, want [r3]", got)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	g := s.Guide(nhk.ServiceE1)
	if g.ConsecutiveFailures != 0 || g.IsOffline() {
		t.Fatalf("fresh guide = %#v", g)
	}

	s.Update(nhk.ServiceE1, 1, nil, errors.New("fail 1"))
	if g = s.Guide(nhk.ServiceE1); g.ConsecutiveFailures != 1 || g.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", g.ConsecutiveFailures, g.IsOffline())
	}

	s.Update(nhk.ServiceE1, 2, nil, errors.New("fail 2"))
	if g = s.Guide(nhk.ServiceE1); g.ConsecutiveFailures != 2 || !g.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", g.ConsecutiveFailures, g.IsOffline())
	}

	s.Update(nhk.ServiceE1, 3, &nhk.Channel{}, nil)
	if g = s.Guide(nhk.ServiceE1); g.ConsecutiveFailures != 0 || g.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v", g.ConsecutiveFailures, g.IsOffline())
	}
	if len(s.Failing()) != 0 {
		t.Fatalf("Failing = %v, want none", s.Failing())
	}
}

func TestGuide_Stale(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	if !(Guide{}).Stale(now, time.Minute) {
		t.Fatalf("empty guide should be stale")
	}

	g := Guide{HasChannel: true, LastUpdated: now.Add(-30 * time.Second)}
	if g.Stale(now, time.Minute) {
		t.Fatalf("fresh guide reported stale")
	}
	if !g.Stale(now.Add(time.Minute), time.Minute) {
		t.Fatalf("guide past refresh interval not stale")
	}

	g.Channel.Present = &nhk.Program{EndTime: "2024-01-01T11:59:00Z"}
	if !g.Stale(now, time.Hour) {
		t.Fatalf("guide whose present program ended should be stale")
	}
}
