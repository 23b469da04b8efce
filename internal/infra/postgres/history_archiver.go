package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"live-polling-service/internal/domain"
)

// HistoryArchiver persists closed-poll summaries as JSONB rows.
type HistoryArchiver struct {
	pool *pgxpool.Pool
}

func NewHistoryArchiver(pool *pgxpool.Pool) *HistoryArchiver {
	return &HistoryArchiver{pool: pool}
}

func (a *HistoryArchiver) ArchivePoll(ctx context.Context, summary domain.PollSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO poll_history (id, question_number, data, closed_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, closed_at = EXCLUDED.closed_at`,
		summary.Poll.ID, summary.Poll.QuestionNumber, data, summary.ClosedAt)
	if err != nil {
		return fmt.Errorf("archive poll: %w", err)
	}
	return nil
}

func (a *HistoryArchiver) Recent(ctx context.Context, limit int) ([]domain.PollSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := a.pool.Query(ctx,
		`SELECT data FROM poll_history ORDER BY question_number DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	var out []domain.PollSummary
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		var summary domain.PollSummary
		if err := json.Unmarshal(raw, &summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}
