package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"live-polling-service/internal/domain"
)

const historyKey = "poll:history"

// HistoryStore archives closed-poll summaries in a capped Redis list:
// LPUSH the JSON summary, LTRIM to capacity, refresh the TTL. The
// session never reads it back at startup; it is an outbound sink plus
// an inspection surface.
type HistoryStore struct {
	client   *redis.Client
	capacity int
	ttl      time.Duration
}

func NewHistoryStore(client *redis.Client, capacity int, ttl time.Duration) *HistoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &HistoryStore{client: client, capacity: capacity, ttl: ttl}
}

func (s *HistoryStore) ArchivePoll(ctx context.Context, summary domain.PollSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.LPush(ctx, historyKey, data)
	pipe.LTrim(ctx, historyKey, 0, int64(s.capacity-1))
	if s.ttl > 0 {
		pipe.Expire(ctx, historyKey, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("archive poll: %w", err)
	}
	return nil
}

func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]domain.PollSummary, error) {
	if limit <= 0 || limit > s.capacity {
		limit = s.capacity
	}
	raw, err := s.client.LRange(ctx, historyKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	out := make([]domain.PollSummary, 0, len(raw))
	for _, item := range raw {
		var summary domain.PollSummary
		if err := json.Unmarshal([]byte(item), &summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		out = append(out, summary)
	}
	return out, nil
}
