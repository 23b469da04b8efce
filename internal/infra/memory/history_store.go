package memory

import (
	"context"
	"sync"

	"live-polling-service/internal/domain"
)

// HistoryStore keeps closed-poll summaries in process memory, newest
// first. It is the default archiver when neither Redis nor Postgres is
// configured.
type HistoryStore struct {
	mu        sync.RWMutex
	summaries []domain.PollSummary
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

func (s *HistoryStore) ArchivePoll(_ context.Context, summary domain.PollSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append([]domain.PollSummary{summary}, s.summaries...)
	return nil
}

func (s *HistoryStore) Recent(_ context.Context, limit int) ([]domain.PollSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.summaries) {
		limit = len(s.summaries)
	}
	out := make([]domain.PollSummary, limit)
	copy(out, s.summaries[:limit])
	return out, nil
}
