package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/jmoiron/sqlx"
	"pollbot/internal/domain/models"
	"time"
)

type SyncRepo struct {
	storage *sqlx.DB
}

func NewSyncRepo(storage *sqlx.DB) *SyncRepo {
	return &SyncRepo{storage: storage}
}

// MostRecentSync returns when the last successful scrape started. The
// second value is false when no scrape has succeeded yet.
func (r *SyncRepo) MostRecentSync(ctx context.Context) (time.Time, bool, error) {
	const op = "repo.sync.MostRecentSync"

	query := `SELECT ran_at FROM githubsync WHERE successful ORDER BY ran_at DESC LIMIT 1`

	var ranAt time.Time
	if err := r.storage.GetContext(ctx, &ranAt, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("%s: %w", op, err)
	}

	return ranAt.UTC(), true, nil
}

func (r *SyncRepo) RecordSync(ctx context.Context, run models.SyncRun) error {
	const op = "repo.sync.RecordSync"

	query := `
		INSERT INTO githubsync (successful, ran_at, message)
		VALUES (:successful, :ran_at, :message)
	`

	run.RanAt = run.RanAt.UTC()
	if _, err := r.storage.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
