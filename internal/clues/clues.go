// Package clues is the single path by which clues enter player progress. Examining crime scene objects and
// dialogue answers both route through Find so that discovery never diverges between the two.
package clues

import (
	"log/slog"

	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/models"
)

// Discovery is the outcome of finding a clue.
type Discovery struct {
	Clue     models.Clue
	Progress models.PlayerProgress
	// New is false when the clue had already been found and Progress is unchanged.
	New bool
}

// Find marks clueID as found in progress. It is idempotent.
func Find(progress models.PlayerProgress, clueID string, caseClues []models.Clue) (Discovery, error) {
	clue, ok := lookup(caseClues, clueID)
	if !ok {
		return Discovery{}, errors.Wrap(models.ErrClueNotFound, "find clue", slog.String("clue_id", clueID))
	}
	if progress.HasClue(clueID) {
		return Discovery{Clue: clue, Progress: progress, New: false}, nil
	}
	updated := progress.Clone()
	updated.CluesFound = append(updated.CluesFound, clueID)
	return Discovery{Clue: clue, Progress: updated, New: true}, nil
}

// WeeklyDiscovery is the weekly counterpart of Discovery.
type WeeklyDiscovery struct {
	Clue     models.Clue
	Progress models.WeeklyProgress
	New      bool
}

// FindWeekly marks clueID as found in weekly progress. unlockedClues are the clues of the chapters unlocked so far;
// clues of locked chapters are reported as not found.
func FindWeekly(progress models.WeeklyProgress, clueID string, unlockedClues []models.Clue) (WeeklyDiscovery, error) {
	clue, ok := lookup(unlockedClues, clueID)
	if !ok {
		return WeeklyDiscovery{}, errors.Wrap(models.ErrClueNotFound, "find weekly clue",
			slog.String("clue_id", clueID))
	}
	if progress.HasClue(clueID) {
		return WeeklyDiscovery{Clue: clue, Progress: progress, New: false}, nil
	}
	updated := progress.Clone()
	updated.CluesFound = append(updated.CluesFound, clueID)
	return WeeklyDiscovery{Clue: clue, Progress: updated, New: true}, nil
}

func lookup(caseClues []models.Clue, clueID string) (models.Clue, bool) {
	for _, clue := range caseClues {
		if clue.ID == clueID {
			return clue, true
		}
	}
	return models.Clue{}, false
}
