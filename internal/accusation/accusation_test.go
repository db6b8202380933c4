package accusation_test

import (
	"fmt"
	"testing"

	"github.com/myrjola/casebook/internal/accusation"
	"github.com/myrjola/casebook/internal/models"
	"github.com/stretchr/testify/require"
)

var suspects = []models.Suspect{
	{ID: "S1", Name: "Adolphe Le Bon"},
	{ID: "S2", Name: "The sailor", IsGuilty: true},
	{ID: "S3", Name: "The neighbour"},
}

func TestAccuse_scenario(t *testing.T) {
	progress := models.NewPlayerProgress("case")
	progress.CluesFound = []string{"A"}

	first, err := accusation.Accuse(progress, "S1", suspects)
	require.NoError(t, err)
	require.False(t, first.Correct)
	require.False(t, first.AlreadyAccused)
	require.True(t, first.Progress.Solved)
	require.Equal(t, "S1", first.Progress.AccusedSuspect)
	require.Equal(t, []string{"A"}, first.Progress.CluesFound)

	second, err := accusation.Accuse(first.Progress, "S2", suspects)
	require.NoError(t, err)
	require.True(t, second.AlreadyAccused)
	require.False(t, second.Correct)
	require.Equal(t, "S1", second.Suspect.ID)
	require.Equal(t, first.Progress, second.Progress)
}

func TestAccuse_correctnessLaw(t *testing.T) {
	for _, suspect := range suspects {
		t.Run(suspect.ID, func(t *testing.T) {
			verdict, err := accusation.Accuse(models.NewPlayerProgress("case"), suspect.ID, suspects)
			require.NoError(t, err)
			require.Equal(t, suspect.ID == "S2", verdict.Correct)
		})
	}
}

func TestAccuse_oneShot(t *testing.T) {
	sequences := [][]string{
		{"S2", "S1", "S3"},
		{"S3", "S2", "S2", "S1"},
		{"S1", "nonexistent", "S2"},
	}
	for i, sequence := range sequences {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			progress := models.NewPlayerProgress("case")
			first, err := accusation.Accuse(progress, sequence[0], suspects)
			require.NoError(t, err)
			progress = first.Progress
			for _, id := range sequence[1:] {
				verdict, err := accusation.Accuse(progress, id, suspects)
				require.NoError(t, err)
				require.True(t, verdict.AlreadyAccused)
				require.Equal(t, first.Correct, verdict.Correct)
				require.Equal(t, sequence[0], verdict.Progress.AccusedSuspect)
				progress = verdict.Progress
			}
		})
	}
}

func TestAccuse_unknownSuspect(t *testing.T) {
	progress := models.NewPlayerProgress("case")
	_, err := accusation.Accuse(progress, "nonexistent", suspects)
	require.ErrorIs(t, err, models.ErrSuspectNotFound)
	require.False(t, progress.Solved)
}

func TestAccuseWeekly(t *testing.T) {
	wc := &models.WeeklyCase{ID: "weekly", Suspects: suspects, GuiltySuspectID: "S3"}
	progress := models.NewWeeklyProgress("weekly")

	_, err := accusation.AccuseWeekly(progress, "S3", wc, false)
	require.ErrorIs(t, err, models.ErrAccusationLocked)

	verdict, err := accusation.AccuseWeekly(progress, "S3", wc, true)
	require.NoError(t, err)
	require.True(t, verdict.Correct)

	again, err := accusation.AccuseWeekly(verdict.Progress, "S1", wc, true)
	require.NoError(t, err)
	require.True(t, again.AlreadyAccused)
	require.True(t, again.Correct)
	require.Equal(t, "S3", again.Progress.AccusedSuspect)
}

func TestLeaderboard(t *testing.T) {
	counters := models.AccusationCounters{
		TotalAccusations: 3,
		SolvedCount:      1,
		BySuspect:        map[string]int{"S1": 2, "S2": 1},
	}
	stats := accusation.Leaderboard("case", counters, suspects)
	require.Equal(t, 3, stats.TotalPlayers)
	require.Equal(t, 1, stats.SolvedCount)
	require.InDelta(t, 33.3, stats.SolveRate, 0.001)
	require.Equal(t, []models.SuspectStat{
		{SuspectID: "S1", Count: 2, Percentage: 66.7},
		{SuspectID: "S2", Count: 1, Percentage: 33.3},
		{SuspectID: "S3", Count: 0, Percentage: 0},
	}, stats.SuspectStats)

	empty := accusation.Leaderboard("case", models.AccusationCounters{}, suspects)
	require.Zero(t, empty.SolveRate)
	require.Len(t, empty.SuspectStats, 3)
}
