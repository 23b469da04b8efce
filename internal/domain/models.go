package domain

import "time"

// PollStatus is the lifecycle state of a poll. A poll is never observed
// before it goes active, so there are only two externally visible states.
type PollStatus string

const (
	PollActive PollStatus = "active"
	PollClosed PollStatus = "closed"
)

// Student represents a connected responder. ConnID is the transport
// connection identifier; Name is the self-declared display name, unique
// per session (re-joining with the same name rebinds ConnID).
type Student struct {
	ConnID string `json:"id"`
	Name   string `json:"name"`
}

// Poll is one question with a fixed option set, a countdown and an
// optional graded answer.
type Poll struct {
	ID               string     `json:"id"`
	QuestionNumber   int        `json:"questionNumber"`
	Question         string     `json:"question"`
	Options          []string   `json:"options"`
	TimeLimitSeconds int        `json:"timeLimitSeconds"`
	CorrectAnswer    string     `json:"correctAnswer,omitempty"`
	Status           PollStatus `json:"status"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Graded reports whether answers to this poll affect scores.
func (p Poll) Graded() bool {
	return p.CorrectAnswer != ""
}

// Answer is one student's current choice for a poll. At most one per
// (poll, student name); resubmission replaces.
type Answer struct {
	PollID string `json:"pollId"`
	Name   string `json:"studentName"`
	Option string `json:"answer"`
}

// TallyEntry is the per-option vote count for the current poll.
// Percentages are rounded independently per option and may not sum to 100.
type TallyEntry struct {
	Option     string `json:"option"`
	Votes      int    `json:"votes"`
	Percentage int    `json:"percentage"`
}

// ScoreEntry is a student's cumulative standing across polls. Keyed by
// display name so it survives reconnects; deleted only on kick.
type ScoreEntry struct {
	Name           string `json:"name"`
	Score          int    `json:"score"`
	CorrectAnswers int    `json:"correctAnswers"`
	TotalAnswers   int    `json:"totalAnswers"`
	Accuracy       int    `json:"accuracy"`
}

// RankingEntry is a ScoreEntry with its leaderboard position assigned.
type RankingEntry struct {
	ScoreEntry
	Rank int `json:"rank"`
}

// ChatMessage is one entry in the bounded session chat log.
type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	IsTeacher bool      `json:"isTeacher"`
}

// PollSummary is the frozen record of a closed poll, handed to the
// history archiver and included in the pollEnded broadcast.
type PollSummary struct {
	Poll       Poll         `json:"poll"`
	FinalTally []TallyEntry `json:"finalTally"`
	Answers    int          `json:"answers"`
	ClosedAt   time.Time    `json:"closedAt"`
}
