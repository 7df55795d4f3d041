package quiz

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSweepExpiresIdleSessions(t *testing.T) {
	e, store, archive := newTestEngine(t, nil, 10)
	ctx := context.Background()

	start, err := e.Start(ctx, "ada", "Algebra")
	if err != nil {
		t.Fatal(err)
	}

	// Rewind the activity clock past the timeout.
	err = store.Update(start.SessionID, func(s *Session) error {
		s.LastActivity = time.Now().Add(-time.Hour)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	r := NewReaper(store, archive, 30*time.Minute, time.Minute)
	r.Sweep(ctx, time.Now())

	// The session is gone from memory but preserved in the archive.
	if _, err := store.Snapshot(start.SessionID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired session still in memory: err=%v", err)
	}
	saved, ok := archive.saved[start.SessionID]
	if !ok {
		t.Fatal("expired session not archived")
	}
	if saved.Status != StatusExpired {
		t.Fatalf("archived status = %s, want expired", saved.Status)
	}

	var sawExpired bool
	for _, ev := range archive.eventTypes() {
		if ev == "SessionExpired:"+start.SessionID {
			sawExpired = true
		}
	}
	if !sawExpired {
		t.Fatalf("no SessionExpired event, events=%v", archive.eventTypes())
	}

	// Answers against the reaped session fail; the archive still serves it.
	_, err = e.SubmitAnswer(ctx, SubmitRequest{
		SessionID:     start.SessionID,
		Question:      start.Question.Text,
		CorrectAnswer: start.Question.Answer,
		UserAnswer:    "1",
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("answer after reaping err = %v, want ErrSessionNotFound", err)
	}
	if _, err := e.Session(ctx, start.SessionID); err != nil {
		t.Fatalf("archived session unreadable: %v", err)
	}
}

func TestSweepLeavesActiveSessionsAlone(t *testing.T) {
	e, store, archive := newTestEngine(t, nil, 10)
	ctx := context.Background()

	start, err := e.Start(ctx, "ada", "Geometry")
	if err != nil {
		t.Fatal(err)
	}

	r := NewReaper(store, archive, 30*time.Minute, time.Minute)
	r.Sweep(ctx, time.Now())

	snap, err := store.Snapshot(start.SessionID)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Status != StatusActive {
		t.Fatalf("status = %s, want active", snap.Status)
	}
}

func TestHeartbeatDefersExpiry(t *testing.T) {
	e, store, archive := newTestEngine(t, nil, 10)
	ctx := context.Background()

	start, err := e.Start(ctx, "ada", "Statistics")
	if err != nil {
		t.Fatal(err)
	}

	err = store.Update(start.SessionID, func(s *Session) error {
		s.LastActivity = time.Now().Add(-29 * time.Minute)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Heartbeat(start.SessionID); err != nil {
		t.Fatal(err)
	}

	r := NewReaper(store, archive, 30*time.Minute, time.Minute)
	r.Sweep(ctx, time.Now())

	snap, err := store.Snapshot(start.SessionID)
	if err != nil || snap.Status != StatusActive {
		t.Fatalf("heartbeat did not keep the session alive: status=%s err=%v", snap.Status, err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := NewMemoryStore()
	r := NewReaper(store, nil, time.Minute, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
