package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"live-polling-service/internal/domain"
)

func newTestStore(t *testing.T, capacity int) (*HistoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewHistoryStore(client, capacity, time.Minute), mr
}

func summaryFor(number int) domain.PollSummary {
	return domain.PollSummary{
		Poll: domain.Poll{
			ID:             "poll-" + string(rune('a'+number)),
			QuestionNumber: number,
			Question:       "Q",
			Options:        []string{"A", "B"},
			Status:         domain.PollClosed,
		},
		FinalTally: []domain.TallyEntry{{Option: "A", Votes: 2, Percentage: 100}, {Option: "B"}},
		Answers:    2,
		ClosedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestHistoryStoreRoundTrip(t *testing.T) {
	store, mr := newTestStore(t, 10)
	ctx := context.Background()

	if err := store.ArchivePoll(ctx, summaryFor(1)); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !mr.Exists(historyKey) {
		t.Fatalf("expected redis key to be set")
	}

	recent, err := store.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected one summary, got %d", len(recent))
	}
	got := recent[0]
	if got.Poll.QuestionNumber != 1 || got.Answers != 2 || got.FinalTally[0].Votes != 2 {
		t.Fatalf("summary did not survive the round trip: %+v", got)
	}
}

func TestHistoryStoreCapsLength(t *testing.T) {
	store, _ := newTestStore(t, 2)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		if err := store.ArchivePoll(ctx, summaryFor(i)); err != nil {
			t.Fatalf("archive %d: %v", i, err)
		}
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected list capped at 2, got %d", len(recent))
	}
	if recent[0].Poll.QuestionNumber != 4 || recent[1].Poll.QuestionNumber != 3 {
		t.Fatalf("expected newest two kept, got %d then %d", recent[0].Poll.QuestionNumber, recent[1].Poll.QuestionNumber)
	}
}

func TestHistoryStoreSetsTTL(t *testing.T) {
	store, mr := newTestStore(t, 10)

	if err := store.ArchivePoll(context.Background(), summaryFor(1)); err != nil {
		t.Fatalf("archive: %v", err)
	}
	if mr.TTL(historyKey) <= 0 {
		t.Fatalf("expected TTL on history key")
	}
}
