// Package accusation resolves the single, irreversible accusation of a case and derives leaderboard statistics from
// the shared accusation counters.
package accusation

import (
	"log/slog"
	"slices"

	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/models"
)

// Verdict is the outcome of an accusation.
type Verdict struct {
	Correct  bool
	Suspect  models.Suspect
	Progress models.PlayerProgress
	// AlreadyAccused is true when the player had accused before. Progress and Correct are then the original result.
	AlreadyAccused bool
}

// Accuse names suspectID as guilty. The first accusation is final: later calls return the original verdict with
// AlreadyAccused set and never re-evaluate correctness.
func Accuse(progress models.PlayerProgress, suspectID string, suspects []models.Suspect) (Verdict, error) {
	if progress.Solved {
		accused, _ := find(suspects, progress.AccusedSuspect)
		return Verdict{
			Correct:        progress.Correct,
			Suspect:        accused,
			Progress:       progress,
			AlreadyAccused: true,
		}, nil
	}
	suspect, ok := find(suspects, suspectID)
	if !ok {
		return Verdict{}, errors.Wrap(models.ErrSuspectNotFound, "accuse", slog.String("suspect_id", suspectID))
	}
	updated := progress.Clone()
	updated.AccusedSuspect = suspect.ID
	updated.Solved = true
	updated.Correct = suspect.IsGuilty
	return Verdict{Correct: updated.Correct, Suspect: suspect, Progress: updated}, nil
}

// WeeklyVerdict is the weekly counterpart of Verdict.
type WeeklyVerdict struct {
	Correct        bool
	Suspect        models.Suspect
	Progress       models.WeeklyProgress
	AlreadyAccused bool
}

// AccuseWeekly names suspectID as guilty in a weekly case. accusationUnlocked comes from the chapter schedule; a
// locked accusation fails with models.ErrAccusationLocked.
func AccuseWeekly(
	progress models.WeeklyProgress,
	suspectID string,
	weeklyCase *models.WeeklyCase,
	accusationUnlocked bool,
) (WeeklyVerdict, error) {
	if progress.Solved {
		accused, _ := weeklyCase.Suspect(progress.AccusedSuspect)
		return WeeklyVerdict{
			Correct:        progress.Correct,
			Suspect:        accused,
			Progress:       progress,
			AlreadyAccused: true,
		}, nil
	}
	if !accusationUnlocked {
		return WeeklyVerdict{}, errors.Wrap(models.ErrAccusationLocked, "accuse weekly",
			slog.String("case_id", weeklyCase.ID))
	}
	suspect, ok := weeklyCase.Suspect(suspectID)
	if !ok {
		return WeeklyVerdict{}, errors.Wrap(models.ErrSuspectNotFound, "accuse weekly",
			slog.String("suspect_id", suspectID))
	}
	updated := progress.Clone()
	updated.AccusedSuspect = suspect.ID
	updated.Solved = true
	updated.Correct = suspect.ID == weeklyCase.GuiltySuspectID
	return WeeklyVerdict{Correct: updated.Correct, Suspect: suspect, Progress: updated}, nil
}

// Leaderboard derives the statistics of caseID from counters. Every suspect is listed in authored order, including
// those nobody accused.
func Leaderboard(caseID string, counters models.AccusationCounters, suspects []models.Suspect) models.LeaderboardStats {
	stats := models.LeaderboardStats{
		CaseID:       caseID,
		TotalPlayers: counters.TotalAccusations,
		SolvedCount:  counters.SolvedCount,
		SuspectStats: make([]models.SuspectStat, 0, len(suspects)),
	}
	if stats.TotalPlayers > 0 {
		stats.SolveRate = percentage(stats.SolvedCount, stats.TotalPlayers)
	}
	for _, suspect := range suspects {
		count := counters.BySuspect[suspect.ID]
		stat := models.SuspectStat{SuspectID: suspect.ID, Count: count}
		if stats.TotalPlayers > 0 {
			stat.Percentage = percentage(count, stats.TotalPlayers)
		}
		stats.SuspectStats = append(stats.SuspectStats, stat)
	}
	return stats
}

// percentage rounds to one decimal.
func percentage(part, total int) float64 {
	const scale = 1000
	return float64((part*scale+total/2)/total) / 10 //nolint:mnd // one decimal
}

func find(suspects []models.Suspect, id string) (models.Suspect, bool) {
	i := slices.IndexFunc(suspects, func(s models.Suspect) bool { return s.ID == id })
	if i < 0 {
		return models.Suspect{}, false
	}
	return suspects[i], true
}
