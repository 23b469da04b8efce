package session

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"live-polling-service/internal/domain"
)

// pollSession is the state machine for one poll. It goes active the
// moment it is constructed (a pending poll is never observed) and ends
// closed, with answers frozen and the final tally cached.
type pollSession struct {
	poll    domain.Poll
	answers map[string]string // display name -> chosen option

	// cancelTimer stops the countdown goroutine; graceTimer is armed
	// once when every roster student has answered. Both are cancelled
	// exactly once, on whichever closure trigger fires first.
	cancelTimer context.CancelFunc
	graceTimer  *time.Timer

	summary *domain.PollSummary // set on close, frozen thereafter
}

func newPollSession(questionNumber int, question string, options []string, timeLimitSeconds int, correctAnswer string, now time.Time) *pollSession {
	return &pollSession{
		poll: domain.Poll{
			ID:               uuid.NewString(),
			QuestionNumber:   questionNumber,
			Question:         question,
			Options:          options,
			TimeLimitSeconds: timeLimitSeconds,
			CorrectAnswer:    correctAnswer,
			Status:           domain.PollActive,
			CreatedAt:        now,
		},
		answers: make(map[string]string),
	}
}

func (p *pollSession) active() bool {
	return p.poll.Status == domain.PollActive
}

// submit upserts the student's answer. A resubmission replaces the
// prior choice rather than adding a second vote.
func (p *pollSession) submit(name, option string) error {
	if !p.active() {
		return domain.ErrPollClosed
	}
	if !p.hasOption(option) {
		return domain.ErrUnknownOption
	}
	p.answers[name] = option
	return nil
}

func (p *pollSession) hasOption(option string) bool {
	for _, o := range p.poll.Options {
		if o == option {
			return true
		}
	}
	return false
}

// dropAnswer discards a student's in-flight answer (used on kick).
func (p *pollSession) dropAnswer(name string) {
	delete(p.answers, name)
}

func (p *pollSession) answerCount() int {
	return len(p.answers)
}

// tally counts votes per option in declared order. Each percentage is
// rounded independently, so the column may not sum to exactly 100; with
// zero answers every percentage is 0.
func (p *pollSession) tally() []domain.TallyEntry {
	entries := make([]domain.TallyEntry, len(p.poll.Options))
	total := len(p.answers)
	for i, option := range p.poll.Options {
		votes := 0
		for _, chosen := range p.answers {
			if chosen == option {
				votes++
			}
		}
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(votes) / float64(total) * 100))
		}
		entries[i] = domain.TallyEntry{Option: option, Votes: votes, Percentage: pct}
	}
	return entries
}

// close transitions active -> closed, cancels the timers and freezes
// the summary. Closing an already-closed session returns the same
// frozen result.
func (p *pollSession) close(now time.Time) domain.PollSummary {
	if p.summary != nil {
		return *p.summary
	}
	if p.cancelTimer != nil {
		p.cancelTimer()
		p.cancelTimer = nil
	}
	if p.graceTimer != nil {
		p.graceTimer.Stop()
		p.graceTimer = nil
	}
	p.poll.Status = domain.PollClosed
	p.summary = &domain.PollSummary{
		Poll:       p.poll,
		FinalTally: p.tally(),
		Answers:    len(p.answers),
		ClosedAt:   now,
	}
	return *p.summary
}
