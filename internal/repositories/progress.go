package repositories

import (
	"context"
	"log/slog"

	"github.com/myrjola/casebook/internal/models"
	"github.com/myrjola/casebook/internal/sqlite"
)

// ProgressRepository stores the daily case progress of each player.
type ProgressRepository struct {
	store *jsonStore[models.PlayerProgress]
}

func NewProgressRepository(db *sqlite.Database, logger *slog.Logger) *ProgressRepository {
	return &ProgressRepository{
		store: &jsonStore[models.PlayerProgress]{
			db:      db,
			table:   "progress",
			logger:  logger.With("source", "ProgressRepository"),
			fresh:   models.NewPlayerProgress,
			version: func(p *models.PlayerProgress) *int64 { return &p.Version },
			clone:   models.PlayerProgress.Clone,
		},
	}
}

// Get returns the stored progress for caseID or empty progress when the player has none.
func (r *ProgressRepository) Get(
	ctx context.Context,
	sessionID, playerID, caseID string,
) (models.PlayerProgress, error) {
	return r.store.get(ctx, sessionID, playerID, caseID)
}

// Save overwrites the stored progress. The last writer wins.
func (r *ProgressRepository) Save(ctx context.Context, sessionID, playerID string, progress models.PlayerProgress) error {
	return r.store.save(ctx, sessionID, playerID, progress.CaseID, progress)
}

// Update atomically applies fn to the current progress and stores the result.
//
// Concurrent updates for the same player are serialized so that no update is lost. An error returned from fn aborts
// the update and is returned unchanged.
func (r *ProgressRepository) Update(
	ctx context.Context,
	sessionID, playerID, caseID string,
	fn func(models.PlayerProgress) (models.PlayerProgress, error),
) (models.PlayerProgress, error) {
	return r.store.update(ctx, sessionID, playerID, caseID, fn)
}

// Reset deletes the progress of the player.
func (r *ProgressRepository) Reset(ctx context.Context, sessionID, playerID string) error {
	return r.store.reset(ctx, sessionID, playerID)
}
