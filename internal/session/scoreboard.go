package session

import (
	"math"
	"sort"

	"live-polling-service/internal/domain"
)

// pointsPerCorrectAnswer is the fixed award for a correct graded answer.
const pointsPerCorrectAnswer = 10

// ScoreBoard keeps cumulative per-student scores keyed by display name,
// so a student's history survives reconnects. Entries are created on
// first admission and deleted only on kick.
type ScoreBoard struct {
	entries map[string]*domain.ScoreEntry
}

func NewScoreBoard() *ScoreBoard {
	return &ScoreBoard{entries: make(map[string]*domain.ScoreEntry)}
}

// Ensure creates a zeroed entry for name if none exists yet.
func (b *ScoreBoard) Ensure(name string) {
	if _, ok := b.entries[name]; !ok {
		b.entries[name] = &domain.ScoreEntry{Name: name}
	}
}

// Record folds one graded answer into the student's totals. Unknown
// names are ignored; ungraded polls never reach this method.
func (b *ScoreBoard) Record(name string, correct bool) {
	entry, ok := b.entries[name]
	if !ok {
		return
	}
	entry.TotalAnswers++
	if correct {
		entry.CorrectAnswers++
		entry.Score += pointsPerCorrectAnswer
	}
	entry.Accuracy = int(math.Round(float64(entry.CorrectAnswers) / float64(entry.TotalAnswers) * 100))
}

// Purge deletes the entry entirely. Used on kick only; disconnects keep
// the entry so a re-join resumes the same standing.
func (b *ScoreBoard) Purge(name string) {
	delete(b.entries, name)
}

// Lookup returns a copy of the entry for name, if present.
func (b *ScoreBoard) Lookup(name string) (domain.ScoreEntry, bool) {
	entry, ok := b.entries[name]
	if !ok {
		return domain.ScoreEntry{}, false
	}
	return *entry, true
}

// Rankings returns the leaderboard: students with at least one graded
// answer, sorted by score then accuracy, ranks assigned strictly by
// sorted position. Equal score/accuracy pairs are ordered by name to
// keep the output stable, but still receive distinct consecutive ranks.
func (b *ScoreBoard) Rankings() []domain.RankingEntry {
	filtered := make([]domain.ScoreEntry, 0, len(b.entries))
	for _, entry := range b.entries {
		if entry.TotalAnswers > 0 {
			filtered = append(filtered, *entry)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Score != filtered[j].Score {
			return filtered[i].Score > filtered[j].Score
		}
		if filtered[i].Accuracy != filtered[j].Accuracy {
			return filtered[i].Accuracy > filtered[j].Accuracy
		}
		return filtered[i].Name < filtered[j].Name
	})

	rankings := make([]domain.RankingEntry, len(filtered))
	for i, entry := range filtered {
		rankings[i] = domain.RankingEntry{ScoreEntry: entry, Rank: i + 1}
	}
	return rankings
}
