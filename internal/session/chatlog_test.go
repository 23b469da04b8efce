package session_test

import (
	"fmt"
	"testing"
	"time"

	"live-polling-service/internal/session"
)

func TestChatLogKeepsLastFifty(t *testing.T) {
	log := session.NewChatLog()

	for i := 0; i < 51; i++ {
		log.Append("Ann", fmt.Sprintf("message %d", i), false)
	}

	snapshot := log.Snapshot()
	if len(snapshot) != 50 {
		t.Fatalf("expected 50 messages, got %d", len(snapshot))
	}
	if snapshot[0].Text != "message 1" {
		t.Fatalf("expected oldest message evicted, first is %q", snapshot[0].Text)
	}
	if snapshot[49].Text != "message 50" {
		t.Fatalf("expected newest message last, got %q", snapshot[49].Text)
	}
}

func TestChatLogAssignsIDAndTimestamp(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	log := session.NewChatLogWithClock(func() time.Time { return fixed })

	msg := log.Append("Teacher", "welcome", true)
	if msg.ID == "" {
		t.Fatalf("expected message ID assigned")
	}
	if !msg.Timestamp.Equal(fixed) {
		t.Fatalf("expected clock timestamp, got %v", msg.Timestamp)
	}
	if !msg.IsTeacher {
		t.Fatalf("expected teacher flag preserved")
	}

	other := log.Append("Ann", "hi", false)
	if other.ID == msg.ID {
		t.Fatalf("expected distinct message IDs")
	}
}
