package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"live-polling-service/internal/domain"
	"live-polling-service/internal/history"
)

// Conn is one connected party. Send must never block; transports back
// it with a buffered channel and drop stale events under pressure.
type Conn interface {
	ID() string
	Send(Event)
}

// Settings tune the coordinator's timing. Tests shrink them to keep
// timer-driven paths fast and deterministic.
type Settings struct {
	// TickInterval is the countdown resolution; one timeUpdate is
	// broadcast per tick. Defaults to one second.
	TickInterval time.Duration
	// GracePeriod is the delay between "every student answered" and
	// the automatic close, so the final tally can render first.
	GracePeriod time.Duration
	// Clock supplies timestamps. Defaults to time.Now.
	Clock func() time.Time
}

func (s *Settings) normalize() {
	if s.TickInterval <= 0 {
		s.TickInterval = time.Second
	}
	if s.GracePeriod <= 0 {
		s.GracePeriod = 2 * time.Second
	}
	if s.Clock == nil {
		s.Clock = time.Now
	}
}

// party is a registered connection plus the identity it declared on
// join. Connections that have not joined yet broadcast-receive but have
// no name.
type party struct {
	conn    Conn
	name    string
	teacher bool
	joined  bool
}

// Coordinator owns the whole session state: roster, chat log, score
// board, the at-most-one active poll and the connection registry. All
// mutations run under one mutex, so inbound events and timer ticks are
// totally ordered. It is the only component with broadcast authority.
type Coordinator struct {
	mu sync.Mutex

	settings Settings
	archiver history.Archiver

	roster *Roster
	chat   *ChatLog
	scores *ScoreBoard

	current       *pollSession
	questionCount int

	parties map[string]*party
}

// New builds a coordinator with production timing.
func New(archiver history.Archiver) *Coordinator {
	return NewWithSettings(archiver, Settings{})
}

// NewWithSettings builds a coordinator with explicit timing, for tests.
func NewWithSettings(archiver history.Archiver, settings Settings) *Coordinator {
	settings.normalize()
	return &Coordinator{
		settings: settings,
		archiver: archiver,
		roster:   NewRoster(),
		chat:     NewChatLogWithClock(settings.Clock),
		scores:   NewScoreBoard(),
		parties:  make(map[string]*party),
	}
}

// Attach registers a connection so it receives broadcasts. The party
// stays anonymous until a join event names it.
func (c *Coordinator) Attach(conn Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parties[conn.ID()] = &party{conn: conn}
}

// Detach handles a disconnect: the connection leaves the registry and
// the roster, but the student's score entry is kept — a disconnect is
// presumed temporary.
func (c *Coordinator) Detach(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.parties, connID)
	c.roster.Remove(connID)
	c.broadcastRosterLocked()
	c.broadcastRankingsLocked()
}

// JoinStudent admits (or re-admits) a student under a display name and
// pushes the session snapshot to the joiner.
func (c *Coordinator) JoinStudent(connID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrEmptyName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.parties[connID]
	if !ok {
		return domain.ErrUnknownStudent
	}
	p.name = name
	p.teacher = false
	p.joined = true

	c.roster.Admit(name, connID)
	c.scores.Ensure(name)

	c.broadcastRosterLocked()
	c.sendLocked(connID, Event{Type: EventChatHistory, Payload: ChatHistoryPayload{Messages: c.chat.Snapshot()}})
	c.broadcastRankingsLocked()

	if c.current != nil && c.current.active() {
		c.sendLocked(connID, Event{Type: EventPollStarted, Payload: PollStartedPayload{Poll: c.current.poll}})
	}
	return nil
}

// JoinTeacher registers the presenter. Teachers never enter the roster.
func (c *Coordinator) JoinTeacher(connID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.parties[connID]
	if !ok {
		return domain.ErrUnknownStudent
	}
	p.name = "Teacher"
	p.teacher = true
	p.joined = true

	c.sendLocked(connID, Event{Type: EventParticipantsUpdate, Payload: ParticipantsPayload{Students: c.roster.List()}})
	c.sendLocked(connID, Event{Type: EventChatHistory, Payload: ChatHistoryPayload{Messages: c.chat.Snapshot()}})
	c.broadcastRankingsLocked()

	if c.current != nil && c.current.active() {
		c.sendLocked(connID, Event{Type: EventPollResults, Payload: PollResultsPayload{Tally: c.current.tally()}})
	}
	return nil
}

// SendChat appends to the shared log and broadcasts the stored message.
func (c *Coordinator) SendChat(connID, text string, isTeacher bool) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sender := "Unknown"
	if p, ok := c.parties[connID]; ok && p.name != "" {
		sender = p.name
	}
	msg := c.chat.Append(sender, text, isTeacher)
	c.broadcastLocked(Event{Type: EventChatMessage, Payload: ChatMessagePayload{Message: msg}})
	return nil
}

// StartPollRequest carries a validated "start poll" command.
type StartPollRequest struct {
	Question         string   `json:"question"`
	Options          []string `json:"options"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
	CorrectAnswer    string   `json:"correctAnswer,omitempty"`
}

func (r StartPollRequest) validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return domain.ErrInvalidPoll
	}
	if len(r.Options) < 2 {
		return domain.ErrInvalidPoll
	}
	for _, opt := range r.Options {
		if strings.TrimSpace(opt) == "" {
			return domain.ErrInvalidPoll
		}
	}
	if r.TimeLimitSeconds <= 0 {
		return domain.ErrInvalidPoll
	}
	if r.CorrectAnswer != "" {
		found := false
		for _, opt := range r.Options {
			if opt == r.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return domain.ErrInvalidPoll
		}
	}
	return nil
}

// StartPoll force-closes any active poll, then creates the next one and
// starts its countdown. Question numbers increase strictly for the
// process lifetime and are never reused.
func (c *Coordinator) StartPoll(req StartPollRequest) (domain.Poll, error) {
	if err := req.validate(); err != nil {
		return domain.Poll{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.current.active() {
		c.closeCurrentLocked()
	}

	c.questionCount++
	p := newPollSession(c.questionCount, req.Question, req.Options, req.TimeLimitSeconds, req.CorrectAnswer, c.settings.Clock())
	c.current = p

	c.broadcastLocked(Event{Type: EventPollStarted, Payload: PollStartedPayload{Poll: p.poll}})

	ctx, cancel := context.WithCancel(context.Background())
	p.cancelTimer = cancel
	go c.runCountdown(ctx, p.poll.ID, p.poll.TimeLimitSeconds)

	return p.poll, nil
}

// SubmitAnswer upserts the student's answer for the active poll,
// updates the score (graded polls only) and rebroadcasts tally and
// rankings. Submissions against a closed or mismatched poll return a
// sentinel error that callers are expected to swallow: the session
// never surfaces them to the submitter.
func (c *Coordinator) SubmitAnswer(pollID, studentName, option string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return domain.ErrNoActivePoll
	}
	if c.current.poll.ID != pollID {
		return domain.ErrPollMismatch
	}
	if err := c.current.submit(studentName, option); err != nil {
		return err
	}

	if c.current.poll.Graded() {
		c.scores.Record(studentName, option == c.current.poll.CorrectAnswer)
	}

	c.broadcastLocked(Event{Type: EventPollResults, Payload: PollResultsPayload{Tally: c.current.tally()}})
	c.broadcastRankingsLocked()

	// Once every roster student has answered, close after a short
	// grace so the final tally renders before pollEnded lands.
	if c.roster.Len() > 0 && c.current.answerCount() >= c.roster.Len() && c.current.graceTimer == nil {
		id := c.current.poll.ID
		c.current.graceTimer = time.AfterFunc(c.settings.GracePeriod, func() {
			c.closePollIfActive(id)
		})
	}
	return nil
}

// EndPoll closes the active poll on the presenter's request.
func (c *Coordinator) EndPoll(pollID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return domain.ErrNoActivePoll
	}
	if c.current.poll.ID != pollID {
		return domain.ErrPollMismatch
	}
	if !c.current.active() {
		return domain.ErrPollClosed
	}
	c.closeCurrentLocked()
	return nil
}

// Kick force-removes a student: roster entry, score history and any
// in-flight answer all go; the removed connection gets a targeted
// studentKicked notice. Score purge is what separates kick from a
// plain disconnect.
func (c *Coordinator) Kick(connID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name, ok := c.roster.Kick(connID)
	if !ok {
		return domain.ErrUnknownStudent
	}
	c.scores.Purge(name)
	if c.current != nil {
		c.current.dropAnswer(name)
	}

	c.sendLocked(connID, Event{Type: EventStudentKicked})
	c.broadcastRosterLocked()
	c.broadcastRankingsLocked()
	if c.current != nil && c.current.active() {
		c.broadcastLocked(Event{Type: EventPollResults, Payload: PollResultsPayload{Tally: c.current.tally()}})
	}
	return nil
}

// CurrentPoll returns the active poll, if any.
func (c *Coordinator) CurrentPoll() (domain.Poll, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || !c.current.active() {
		return domain.Poll{}, false
	}
	return c.current.poll, true
}

// runCountdown ticks the active poll down to zero, broadcasting the
// remaining time each tick. It exits as soon as the poll it was started
// for is gone, closed or replaced.
func (c *Coordinator) runCountdown(ctx context.Context, pollID string, remaining int) {
	ticker := time.NewTicker(c.settings.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining--
			if c.tick(pollID, remaining) {
				return
			}
		}
	}
}

// tick applies one countdown step under the lock. Returns true when the
// countdown should stop.
func (c *Coordinator) tick(pollID string, remaining int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.poll.ID != pollID || !c.current.active() {
		return true
	}
	c.broadcastLocked(Event{Type: EventTimeUpdate, Payload: TimeUpdatePayload{SecondsRemaining: remaining}})
	if remaining <= 0 {
		c.closeCurrentLocked()
		return true
	}
	return false
}

// closePollIfActive is the grace-timer callback. The poll may have been
// closed or replaced since the timer was armed, in which case this is a
// no-op.
func (c *Coordinator) closePollIfActive(pollID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.poll.ID != pollID || !c.current.active() {
		return
	}
	c.closeCurrentLocked()
}

// closeCurrentLocked freezes the active poll, broadcasts pollEnded and
// refreshed rankings, and hands the summary to the archiver off the
// lock. Callers hold c.mu and have verified the poll is active.
func (c *Coordinator) closeCurrentLocked() {
	summary := c.current.close(c.settings.Clock())

	c.broadcastLocked(Event{Type: EventPollEnded, Payload: PollEndedPayload{Poll: summary.Poll, FinalTally: summary.FinalTally}})
	c.broadcastRankingsLocked()

	if c.archiver != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.archiver.ArchivePoll(ctx, summary); err != nil {
				log.Printf("archive poll %d: %v", summary.Poll.QuestionNumber, err)
			}
		}()
	}
}

func (c *Coordinator) broadcastRosterLocked() {
	c.broadcastLocked(Event{Type: EventParticipantsUpdate, Payload: ParticipantsPayload{Students: c.roster.List()}})
}

func (c *Coordinator) broadcastRankingsLocked() {
	c.broadcastLocked(Event{Type: EventStudentRankings, Payload: RankingsPayload{Rankings: c.scores.Rankings()}})
}

// broadcastLocked fans an event out to every registered connection.
// Sends are fire-and-forget; a slow party never blocks the session.
func (c *Coordinator) broadcastLocked(ev Event) {
	for _, p := range c.parties {
		p.conn.Send(ev)
	}
}

func (c *Coordinator) sendLocked(connID string, ev Event) {
	if p, ok := c.parties[connID]; ok {
		p.conn.Send(ev)
	}
}
