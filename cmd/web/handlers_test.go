package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/myrjola/casebook/internal/e2etest"
	"github.com/myrjola/casebook/internal/game"
	"github.com/myrjola/casebook/internal/models"
	"github.com/stretchr/testify/require"
)

func Test_application_dailyCase(t *testing.T) {
	server := startTestServer(t)
	ctx := context.Background()
	client := newPlayer(t, server, "s1")

	var initResult game.InitResult
	status, err := client.DoJSON(ctx, http.MethodGet, "/api/sessions/s1/daily", nil, &initResult)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "rue-morgue", initResult.Case.ID)
	require.Empty(t, initResult.Progress.CluesFound)
	for _, suspect := range initResult.Case.Suspects {
		require.False(t, suspect.IsGuilty, "guilt must not leak to the client")
	}

	var clue game.ClueResult
	status, err = client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/daily/clues/window-nail", nil, &clue)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.True(t, clue.New)
	require.Equal(t, []string{"window-nail"}, clue.Progress.CluesFound)

	status, err = client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/daily/clues/smoking-gun", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)

	var examined game.ExamineResult
	status, err = client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/daily/objects/hearth/examine", nil, &examined)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "tuft-of-hair", examined.Clue.ID)

	var roots []models.DialogueOption
	status, err = client.DoJSON(ctx, http.MethodGet, "/api/sessions/s1/daily/suspects/dumas/dialogue", nil, &roots)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "dumas-bodies", roots[0].ID)

	var answer game.DialogueResult
	status, err = client.DoJSON(ctx, http.MethodPost,
		"/api/sessions/s1/daily/suspects/dumas/dialogue/dumas-bodies", nil, &answer)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "bruised-throat", answer.UnlockedClue.ID)
	require.Equal(t, []string{"dumas"}, answer.Progress.SuspectsInterrogated)

	var progress models.PlayerProgress
	status, err = client.DoJSON(ctx, http.MethodGet, "/api/sessions/s1/daily/progress", nil, &progress)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.ElementsMatch(t, []string{"window-nail", "tuft-of-hair", "bruised-throat"}, progress.CluesFound)

	var verdict game.AccuseResult
	status, err = client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/daily/accusation",
		map[string]string{"suspectId": "sailor"}, &verdict)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.True(t, verdict.Correct)
	require.False(t, verdict.AlreadyAccused)

	status, err = client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/daily/accusation",
		map[string]string{"suspectId": "dumas"}, &verdict)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.True(t, verdict.AlreadyAccused)
	require.Equal(t, "sailor", verdict.Suspect.ID)

	status, err = client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/daily/accusation",
		map[string]string{}, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, status)

	// A second player accuses through the landing page form.
	other := newPlayer(t, server, "s1")
	var formVerdict game.AccuseResult
	status, err = other.SubmitForm(ctx, "/?session=s1", e2etest.AccusationPath("s1"),
		url.Values{"suspectId": {"le-bon"}}, &formVerdict)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.False(t, formVerdict.Correct)

	var stats models.LeaderboardStats
	status, err = client.DoJSON(ctx, http.MethodGet, "/api/sessions/s1/daily/leaderboard", nil, &stats)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 2, stats.TotalPlayers)
	require.Equal(t, 1, stats.SolvedCount)
	require.InDelta(t, 50.0, stats.SolveRate, 0.01)

	status, err = client.DoJSON(ctx, http.MethodDelete, "/api/sessions/s1/progress", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, status)
	status, err = client.DoJSON(ctx, http.MethodGet, "/api/sessions/s1/daily/progress", nil, &progress)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, progress.CluesFound)
	require.False(t, progress.Solved)
}

func Test_application_csrf(t *testing.T) {
	server := startTestServer(t)
	ctx := context.Background()

	// Without loading the landing page the client has no CSRF token.
	client, err := e2etest.NewClient(server.URL())
	require.NoError(t, err)
	status, err := client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/daily/clues/window-nail", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, status)

	// Safe methods need no token.
	status, err = client.DoJSON(ctx, http.MethodGet, "/api/sessions/s1/daily/progress", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
}

func Test_application_platformPlayerID(t *testing.T) {
	server := startTestServer(t)
	ctx := context.Background()
	client := newPlayer(t, server, "s1")

	status, err := client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/daily/clues/gold-bags", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	// The same browser acting as a platform-identified player has separate progress.
	client.SetPlayerID("platform-player-1")
	var progress models.PlayerProgress
	status, err = client.DoJSON(ctx, http.MethodGet, "/api/sessions/s1/daily/progress", nil, &progress)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, progress.CluesFound)

	// Other sessions are isolated too.
	client.SetPlayerID("")
	status, err = client.DoJSON(ctx, http.MethodGet, "/api/sessions/s2/daily/progress", nil, &progress)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, progress.CluesFound)
}

func Test_application_weeklyCase(t *testing.T) {
	server := startTestServer(t)
	ctx := context.Background()
	client := newPlayer(t, server, "s1")

	var initResult game.WeeklyInitResult
	status, err := client.DoJSON(ctx, http.MethodGet, "/api/sessions/s1/weekly", nil, &initResult)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "purloined-letter", initResult.WeeklyCase.ID)
	require.Empty(t, initResult.WeeklyCase.GuiltySuspectID, "guilt must not leak to the client")
	require.Len(t, initResult.ChapterStatuses, models.WeeklyChapterCount)
	require.Equal(t, 1, initResult.CurrentDayNumber)

	accuse := func() int {
		t.Helper()
		code, accuseErr := client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/weekly/accusation",
			map[string]string{"suspectId": "minister-d"}, nil)
		require.NoError(t, accuseErr)
		return code
	}

	for day := 1; day <= 5; day++ {
		var chapter game.ChapterResult
		status, err = client.DoJSON(ctx, http.MethodPost,
			fmt.Sprintf("/api/sessions/s1/weekly/chapters/%d/complete", day), nil, &chapter)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, status)
		require.True(t, chapter.Completed)
	}
	require.Equal(t, http.StatusConflict, accuse())

	status, err = client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/weekly/chapters/6/complete", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	var clue game.WeeklyClueResult
	status, err = client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/weekly/clues/maid-testimony", nil, &clue)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.True(t, clue.New)

	require.Equal(t, http.StatusOK, accuse())

	var stats models.LeaderboardStats
	status, err = client.DoJSON(ctx, http.MethodGet, "/api/sessions/s1/weekly/leaderboard", nil, &stats)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, stats.SolvedCount)

	status, err = client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/weekly/chapters/seven/complete", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, status)
	status, err = client.DoJSON(ctx, http.MethodPost, "/api/sessions/s1/weekly/chapters/9/complete", nil, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)
}
