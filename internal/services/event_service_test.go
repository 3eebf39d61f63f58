package services

import (
	"testing"
	"time"
)

func TestEventFeedIsOwnerScoped(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	events := NewEventService(db)

	alice, err := users.Register("alice@example.com", "a strong password")
	if err != nil {
		t.Fatalf("register alice: %v", err)
	}
	bob, err := users.Register("bob@example.com", "a strong password")
	if err != nil {
		t.Fatalf("register bob: %v", err)
	}

	if err := events.CreateEvent(alice.ID, "task.create", "info", "Task 'X' created.", nil); err != nil {
		t.Fatalf("create event: %v", err)
	}
	if err := events.CreateEvent(bob.ID, "task.delete", "warn", "Task 'Y' was deleted.", nil); err != nil {
		t.Fatalf("create event: %v", err)
	}

	feed, err := events.GetRecentEventsForUser(alice.ID, 20)
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("got %d events, want 1", len(feed))
	}
	if feed[0].Type != "task.create" || feed[0].UserID != alice.ID {
		t.Fatalf("unexpected event %+v", feed[0])
	}
}

func TestEventFeedHonorsLimit(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	events := NewEventService(db)

	alice, err := users.Register("alice@example.com", "a strong password")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := events.CreateEvent(alice.ID, "task.update", "info", "update", nil); err != nil {
			t.Fatalf("create event %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	feed, err := events.GetRecentEventsForUser(alice.ID, 3)
	if err != nil {
		t.Fatalf("get feed: %v", err)
	}
	if len(feed) != 3 {
		t.Fatalf("got %d events, want 3", len(feed))
	}
}
