package repositories_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/myrjola/casebook/internal/models"
	"github.com/myrjola/casebook/internal/repositories"
	"github.com/myrjola/casebook/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewStatsRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	counters, err := repo.Counters(ctx, "s1", "rue-morgue")
	require.NoError(t, err)
	require.Equal(t, models.AccusationCounters{BySuspect: map[string]int{}}, counters)

	require.NoError(t, repo.RecordAccusation(ctx, "s1", "rue-morgue", "sailor", true))
	require.NoError(t, repo.RecordAccusation(ctx, "s1", "rue-morgue", "sailor", true))
	require.NoError(t, repo.RecordAccusation(ctx, "s1", "rue-morgue", "le-bon", false))
	require.NoError(t, repo.RecordAccusation(ctx, "s2", "rue-morgue", "dumas", false))

	counters, err = repo.Counters(ctx, "s1", "rue-morgue")
	require.NoError(t, err)
	require.Equal(t, models.AccusationCounters{
		TotalAccusations: 3,
		SolvedCount:      2,
		BySuspect:        map[string]int{"sailor": 2, "le-bon": 1},
	}, counters)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	filtered, err := repo.List(ctx, "s2")
	require.NoError(t, err)
	require.Equal(t, []repositories.CaseStats{
		{SessionID: "s2", CaseID: "rue-morgue", TotalAccusations: 1, SolvedCount: 0},
	}, filtered)

	require.NoError(t, repo.ResetSession(ctx, "s1"))
	counters, err = repo.Counters(ctx, "s1", "rue-morgue")
	require.NoError(t, err)
	require.Zero(t, counters.TotalAccusations)
	require.Empty(t, counters.BySuspect)
}

func TestStatsRepository_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewStatsRepository(newTestDB(t), testhelpers.NewLogger(io.Discard))

	const n = 25
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.RecordAccusation(ctx, "s1", "rue-morgue", "sailor", i%5 == 0))
		}()
	}
	wg.Wait()

	counters, err := repo.Counters(ctx, "s1", "rue-morgue")
	require.NoError(t, err)
	require.Equal(t, n, counters.TotalAccusations)
	require.Equal(t, 5, counters.SolvedCount)
	require.Equal(t, n, counters.BySuspect["sailor"])
}
