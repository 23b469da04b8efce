package memory

import (
	"context"
	"testing"
	"time"

	"live-polling-service/internal/domain"
)

func summaryFor(number int) domain.PollSummary {
	return domain.PollSummary{
		Poll: domain.Poll{
			ID:             "poll-" + string(rune('a'+number)),
			QuestionNumber: number,
			Question:       "Q",
			Options:        []string{"A", "B"},
			Status:         domain.PollClosed,
		},
		FinalTally: []domain.TallyEntry{{Option: "A", Votes: 1, Percentage: 100}, {Option: "B"}},
		Answers:    1,
		ClosedAt:   time.Now(),
	}
}

func TestHistoryStoreNewestFirst(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := store.ArchivePoll(ctx, summaryFor(i)); err != nil {
			t.Fatalf("archive: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(recent))
	}
	if recent[0].Poll.QuestionNumber != 3 || recent[1].Poll.QuestionNumber != 2 {
		t.Fatalf("expected newest first, got %d then %d", recent[0].Poll.QuestionNumber, recent[1].Poll.QuestionNumber)
	}

	all, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 summaries, got %d", len(all))
	}
}
