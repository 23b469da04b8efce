package session

import (
	"time"

	"github.com/google/uuid"

	"live-polling-service/internal/domain"
)

// chatLogCapacity bounds the shared chat buffer; the oldest entry is
// evicted once the cap is exceeded.
const chatLogCapacity = 50

// ChatLog is the append-only bounded message buffer shared by the
// session. Message size is accepted as-is; validation lives upstream.
type ChatLog struct {
	messages []domain.ChatMessage
	now      func() time.Time
}

func NewChatLog() *ChatLog {
	return &ChatLog{now: time.Now}
}

// NewChatLogWithClock allows deterministic timestamps in tests.
func NewChatLogWithClock(now func() time.Time) *ChatLog {
	return &ChatLog{now: now}
}

// Append stores a message, assigning its ID and timestamp, and returns
// the stored form for broadcast.
func (l *ChatLog) Append(sender, text string, isTeacher bool) domain.ChatMessage {
	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: l.now(),
		IsTeacher: isTeacher,
	}
	l.messages = append(l.messages, msg)
	if len(l.messages) > chatLogCapacity {
		l.messages = l.messages[len(l.messages)-chatLogCapacity:]
	}
	return msg
}

// Snapshot returns the current buffer, oldest first.
func (l *ChatLog) Snapshot() []domain.ChatMessage {
	out := make([]domain.ChatMessage, len(l.messages))
	copy(out, l.messages)
	return out
}
