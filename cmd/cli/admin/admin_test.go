package admin

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/myrjola/casebook/internal/models"
	"github.com/myrjola/casebook/internal/repositories"
	"github.com/myrjola/casebook/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func Test_statsAndReset(t *testing.T) {
	ctx := context.Background()
	logger := newLogger(io.Discard)
	db, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	stats := repositories.NewStatsRepository(db, logger)
	require.NoError(t, stats.RecordAccusation(ctx, "s1", "rue-morgue", "sailor", true))
	require.NoError(t, stats.RecordAccusation(ctx, "s1", "rue-morgue", "dumas", false))
	require.NoError(t, stats.RecordAccusation(ctx, "s2", "rue-morgue", "dumas", false))

	progress := repositories.NewProgressRepository(db, logger)
	require.NoError(t, progress.Save(ctx, "s1", "p1", models.PlayerProgress{
		CaseID:     "rue-morgue",
		CluesFound: []string{"gold-bags"},
	}))

	var out bytes.Buffer
	require.NoError(t, listStats(ctx, &out, stats, ""))
	require.Contains(t, out.String(), "s1")
	require.Contains(t, out.String(), "s2")

	out.Reset()
	require.NoError(t, listStats(ctx, &out, stats, "s2"))
	require.NotContains(t, out.String(), "s1")

	out.Reset()
	require.NoError(t, reset(ctx, &out, db, logger, "s1", "p1"))
	require.Contains(t, out.String(), "p1")
	got, err := progress.Get(ctx, "s1", "p1", "rue-morgue")
	require.NoError(t, err)
	require.Empty(t, got.CluesFound)

	out.Reset()
	require.NoError(t, reset(ctx, &out, db, logger, "s1", ""))
	var rows []repositories.CaseStats
	rows, err = stats.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "s2", rows[0].SessionID)
}
