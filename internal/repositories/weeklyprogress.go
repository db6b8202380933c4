package repositories

import (
	"context"
	"log/slog"

	"github.com/myrjola/casebook/internal/models"
	"github.com/myrjola/casebook/internal/sqlite"
)

// WeeklyProgressRepository stores the weekly case progress of each player.
type WeeklyProgressRepository struct {
	store *jsonStore[models.WeeklyProgress]
}

func NewWeeklyProgressRepository(db *sqlite.Database, logger *slog.Logger) *WeeklyProgressRepository {
	return &WeeklyProgressRepository{
		store: &jsonStore[models.WeeklyProgress]{
			db:      db,
			table:   "weekly_progress",
			logger:  logger.With("source", "WeeklyProgressRepository"),
			fresh:   models.NewWeeklyProgress,
			version: func(p *models.WeeklyProgress) *int64 { return &p.Version },
			clone:   models.WeeklyProgress.Clone,
		},
	}
}

func (r *WeeklyProgressRepository) Get(
	ctx context.Context,
	sessionID, playerID, caseID string,
) (models.WeeklyProgress, error) {
	return r.store.get(ctx, sessionID, playerID, caseID)
}

func (r *WeeklyProgressRepository) Save(
	ctx context.Context,
	sessionID, playerID string,
	progress models.WeeklyProgress,
) error {
	return r.store.save(ctx, sessionID, playerID, progress.CaseID, progress)
}

// Update atomically applies fn to the current weekly progress and stores the result.
func (r *WeeklyProgressRepository) Update(
	ctx context.Context,
	sessionID, playerID, caseID string,
	fn func(models.WeeklyProgress) (models.WeeklyProgress, error),
) (models.WeeklyProgress, error) {
	return r.store.update(ctx, sessionID, playerID, caseID, fn)
}

func (r *WeeklyProgressRepository) Reset(ctx context.Context, sessionID, playerID string) error {
	return r.store.reset(ctx, sessionID, playerID)
}
