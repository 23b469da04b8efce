package history

import (
	"context"

	"live-polling-service/internal/domain"
)

// Archiver receives the frozen summary of every closed poll. Archival
// is best-effort from the coordinator's point of view: an error is
// logged, never propagated into the session.
type Archiver interface {
	ArchivePoll(ctx context.Context, summary domain.PollSummary) error
	// Recent returns up to limit summaries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.PollSummary, error)
}
