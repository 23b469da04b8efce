package session

import "live-polling-service/internal/domain"

// Event is the envelope for every message crossing a connection, in
// either direction.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Inbound event types (client -> coordinator).
const (
	EventJoinAsStudent   = "joinAsStudent"
	EventJoinAsTeacher   = "joinAsTeacher"
	EventSendChatMessage = "sendChatMessage"
	EventStartPoll       = "startPoll"
	EventSubmitAnswer    = "submitAnswer"
	EventEndPoll         = "endPoll"
	EventKickStudent     = "kickStudent"
)

// Outbound event types (coordinator -> clients).
const (
	EventParticipantsUpdate = "participantsUpdate"
	EventChatHistory        = "chatHistory"
	EventChatMessage        = "chatMessage"
	EventPollStarted        = "pollStarted"
	EventTimeUpdate         = "timeUpdate"
	EventPollResults        = "pollResults"
	EventPollEnded          = "pollEnded"
	EventStudentRankings    = "studentRankings"
	EventStudentKicked      = "studentKicked"
)

// Payload shapes for outbound events that carry more than a bare model.

type ParticipantsPayload struct {
	Students []domain.Student `json:"students"`
}

type ChatHistoryPayload struct {
	Messages []domain.ChatMessage `json:"messages"`
}

type ChatMessagePayload struct {
	Message domain.ChatMessage `json:"message"`
}

type PollStartedPayload struct {
	Poll domain.Poll `json:"poll"`
}

type TimeUpdatePayload struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

type PollResultsPayload struct {
	Tally []domain.TallyEntry `json:"tally"`
}

type PollEndedPayload struct {
	Poll       domain.Poll         `json:"poll"`
	FinalTally []domain.TallyEntry `json:"finalTally"`
}

type RankingsPayload struct {
	Rankings []domain.RankingEntry `json:"rankings"`
}
