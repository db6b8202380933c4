package repositories_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/models"
	"github.com/myrjola/casebook/internal/repositories"
	"github.com/myrjola/casebook/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgressRepository(t *testing.T) *repositories.ProgressRepository {
	t.Helper()
	return repositories.NewProgressRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))
}

func addClue(clueID string) func(models.PlayerProgress) (models.PlayerProgress, error) {
	return func(p models.PlayerProgress) (models.PlayerProgress, error) {
		if !p.HasClue(clueID) {
			p.CluesFound = append(p.CluesFound, clueID)
		}
		return p, nil
	}
}

func TestProgressRepository_Get(t *testing.T) {
	ctx := context.Background()
	repo := newProgressRepository(t)

	got, err := repo.Get(ctx, "s1", "p1", "rue-morgue")
	require.NoError(t, err)
	require.Equal(t, models.NewPlayerProgress("rue-morgue"), got)

	_, err = repo.Update(ctx, "s1", "p1", "rue-morgue", addClue("tuft-of-hair"))
	require.NoError(t, err)

	got, err = repo.Get(ctx, "s1", "p1", "rue-morgue")
	require.NoError(t, err)
	require.Equal(t, []string{"tuft-of-hair"}, got.CluesFound)
	require.Equal(t, int64(1), got.Version)

	// Sessions and players are isolated.
	got, err = repo.Get(ctx, "s2", "p1", "rue-morgue")
	require.NoError(t, err)
	require.Empty(t, got.CluesFound)
	got, err = repo.Get(ctx, "s1", "p2", "rue-morgue")
	require.NoError(t, err)
	require.Empty(t, got.CluesFound)

	// Progress of a previous case is not carried over.
	got, err = repo.Get(ctx, "s1", "p1", "purloined-letter")
	require.NoError(t, err)
	require.Equal(t, "purloined-letter", got.CaseID)
	require.Empty(t, got.CluesFound)
}

func TestProgressRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := newProgressRepository(t)

	t.Run("failed transform writes nothing", func(t *testing.T) {
		errTransform := errors.NewSentinel("transform failed")
		_, err := repo.Update(ctx, "s1", "p1", "rue-morgue", func(p models.PlayerProgress) (models.PlayerProgress, error) {
			p.CluesFound = append(p.CluesFound, "window-nail")
			return p, errTransform
		})
		require.ErrorIs(t, err, errTransform)
		require.NotErrorIs(t, err, models.ErrStorageUnavailable)

		got, err := repo.Get(ctx, "s1", "p1", "rue-morgue")
		require.NoError(t, err)
		require.Empty(t, got.CluesFound)
	})

	t.Run("unchanged progress keeps version", func(t *testing.T) {
		first, err := repo.Update(ctx, "s1", "p1", "rue-morgue", addClue("window-nail"))
		require.NoError(t, err)
		second, err := repo.Update(ctx, "s1", "p1", "rue-morgue", addClue("window-nail"))
		require.NoError(t, err)
		require.Equal(t, first, second)
	})

	t.Run("no-op on missing progress stores nothing", func(t *testing.T) {
		db := newTestDB(t)
		empty := repositories.NewProgressRepository(db, testhelpers.NewLogger(io.Discard))
		got, err := empty.Update(ctx, "s1", "p1", "rue-morgue", func(p models.PlayerProgress) (models.PlayerProgress, error) {
			return p, nil
		})
		require.NoError(t, err)
		require.Equal(t, int64(0), got.Version)

		var count int
		require.NoError(t, db.ReadOnly.GetContext(ctx, &count, `SELECT COUNT(*) FROM progress`))
		require.Zero(t, count)
	})

	t.Run("transform cannot alias stored slices", func(t *testing.T) {
		var seen models.PlayerProgress
		_, err := repo.Update(ctx, "s1", "p1", "rue-morgue", func(p models.PlayerProgress) (models.PlayerProgress, error) {
			seen = p
			p.CluesFound[0] = "mutated"
			return p, errors.NewSentinel("abort")
		})
		require.Error(t, err)
		require.Equal(t, "mutated", seen.CluesFound[0])

		got, err := repo.Get(ctx, "s1", "p1", "rue-morgue")
		require.NoError(t, err)
		require.Equal(t, []string{"window-nail"}, got.CluesFound)
	})
}

func TestProgressRepository_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	repo := newProgressRepository(t)

	const n = 20
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "s1", "p1", "rue-morgue", addClue(fmt.Sprintf("clue-%d", i)))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "s1", "p1", "rue-morgue")
	require.NoError(t, err)
	require.Len(t, got.CluesFound, n)
	require.Equal(t, int64(n), got.Version)
}

func TestProgressRepository_SaveAndReset(t *testing.T) {
	ctx := context.Background()
	repo := newProgressRepository(t)

	progress := models.NewPlayerProgress("rue-morgue")
	progress.CluesFound = []string{"gold-bags"}
	progress.AccusedSuspect = "sailor"
	progress.Solved = true
	progress.Correct = true
	require.NoError(t, repo.Save(ctx, "s1", "p1", progress))

	// Last writer wins.
	progress.CluesFound = []string{"gold-bags", "tuft-of-hair"}
	require.NoError(t, repo.Save(ctx, "s1", "p1", progress))

	got, err := repo.Get(ctx, "s1", "p1", "rue-morgue")
	require.NoError(t, err)
	require.Equal(t, []string{"gold-bags", "tuft-of-hair"}, got.CluesFound)
	require.True(t, got.Solved)
	require.Equal(t, int64(2), got.Version)

	require.NoError(t, repo.Reset(ctx, "s1", "p1"))
	got, err = repo.Get(ctx, "s1", "p1", "rue-morgue")
	require.NoError(t, err)
	require.Equal(t, models.NewPlayerProgress("rue-morgue"), got)
}

func TestProgressRepository_StorageUnavailable(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := repositories.NewProgressRepository(db, testhelpers.NewLogger(io.Discard))
	_, err := db.ReadWrite.ExecContext(ctx, "DROP TABLE progress")
	require.NoError(t, err)

	_, err = repo.Get(ctx, "s1", "p1", "rue-morgue")
	require.ErrorIs(t, err, models.ErrStorageUnavailable)
	_, err = repo.Update(ctx, "s1", "p1", "rue-morgue", addClue("gold-bags"))
	require.ErrorIs(t, err, models.ErrStorageUnavailable)
}

func TestWeeklyProgressRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewWeeklyProgressRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	got, err := repo.Get(ctx, "s1", "p1", "purloined-letter")
	require.NoError(t, err)
	require.Equal(t, models.NewWeeklyProgress("purloined-letter"), got)

	completedOn := models.Date{Year: 2026, Month: 1, Day: 27}
	got, err = repo.Update(ctx, "s1", "p1", "purloined-letter", func(p models.WeeklyProgress) (models.WeeklyProgress, error) {
		p.ChapterCompletions = append(p.ChapterCompletions, models.ChapterCompletion{DayNumber: 1, CompletedOn: completedOn})
		p.TotalPoints += 125
		return p, nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Version)

	got, err = repo.Get(ctx, "s1", "p1", "purloined-letter")
	require.NoError(t, err)
	require.Equal(t, []int{1}, got.ChaptersCompleted())
	require.Equal(t, 125, got.TotalPoints)
	completion, ok := got.Completion(1)
	require.True(t, ok)
	require.Equal(t, completedOn, completion.CompletedOn)

	require.NoError(t, repo.Reset(ctx, "s1", "p1"))
	got, err = repo.Get(ctx, "s1", "p1", "purloined-letter")
	require.NoError(t, err)
	require.Empty(t, got.ChapterCompletions)
}
