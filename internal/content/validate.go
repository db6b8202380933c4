package content

import (
	"fmt"

	"github.com/myrjola/casebook/internal/dialogue"
	"github.com/myrjola/casebook/internal/models"
)

// validate checks the invariants the engine relies on at runtime.
func (r *Repository) validate() []error {
	var errs []error
	for _, id := range r.caseIDs {
		errs = append(errs, validateCase(r.cases[id])...)
	}
	for _, id := range r.weeklyIDs {
		errs = append(errs, validateWeeklyCase(r.weekly[id])...)
	}
	return errs
}

func validateCase(c *models.Case) []error {
	var errs []error
	if c.ID == "" {
		return []error{fmt.Errorf("case without id")}
	}
	clueIDs, clueErrs := clueIndex(c.ID, c.Clues)
	errs = append(errs, clueErrs...)
	errs = append(errs, validateSuspects(c.ID, c.Suspects, clueIDs)...)
	errs = append(errs, validateObjects(c.ID, c.CrimeSceneObjects, clueIDs)...)
	return errs
}

func validateWeeklyCase(w *models.WeeklyCase) []error {
	var errs []error
	if w.ID == "" {
		return []error{fmt.Errorf("weekly case without id")}
	}
	if w.StartDate.IsZero() {
		errs = append(errs, fmt.Errorf("weekly case %s: missing startDate", w.ID))
	}
	clueIDs, clueErrs := clueIndex(w.ID, w.AllClues)
	errs = append(errs, clueErrs...)
	errs = append(errs, validateSuspects(w.ID, w.Suspects, clueIDs)...)

	if guilty, ok := w.Suspect(w.GuiltySuspectID); !ok || !guilty.IsGuilty {
		errs = append(errs, fmt.Errorf("weekly case %s: guiltySuspectId %q is not the guilty suspect",
			w.ID, w.GuiltySuspectID))
	}

	if len(w.Chapters) != models.WeeklyChapterCount {
		errs = append(errs, fmt.Errorf("weekly case %s: has %d chapters, want %d",
			w.ID, len(w.Chapters), models.WeeklyChapterCount))
	}
	revealed := map[string]int{}
	for i, chapter := range w.Chapters {
		if chapter.DayNumber != i+1 {
			errs = append(errs, fmt.Errorf("weekly case %s: chapter %d has dayNumber %d", w.ID, i+1, chapter.DayNumber))
		}
		if chapter.IsAccusationDay != (chapter.DayNumber == models.WeeklyChapterCount) {
			errs = append(errs, fmt.Errorf("weekly case %s: only chapter %d may be the accusation day",
				w.ID, models.WeeklyChapterCount))
		}
		for _, clueID := range chapter.NewClues {
			if _, ok := clueIDs[clueID]; !ok {
				errs = append(errs, fmt.Errorf("weekly case %s: chapter %d reveals unknown clue %s",
					w.ID, chapter.DayNumber, clueID))
			}
			if day, dup := revealed[clueID]; dup {
				errs = append(errs, fmt.Errorf("weekly case %s: clue %s revealed on days %d and %d",
					w.ID, clueID, day, chapter.DayNumber))
			}
			revealed[clueID] = chapter.DayNumber
		}
		errs = append(errs, validateObjects(w.ID, chapter.CrimeSceneObjects, clueIDs)...)
		for _, object := range chapter.CrimeSceneObjects {
			if object.ClueID == "" {
				continue
			}
			if _, known := clueIDs[object.ClueID]; !known {
				continue
			}
			if day, ok := revealed[object.ClueID]; !ok || day > chapter.DayNumber {
				errs = append(errs, fmt.Errorf("weekly case %s: chapter %d object %s reveals clue %s before its chapter",
					w.ID, chapter.DayNumber, object.ID, object.ClueID))
			}
		}
	}
	for _, clue := range w.AllClues {
		if _, ok := revealed[clue.ID]; !ok {
			errs = append(errs, fmt.Errorf("weekly case %s: clue %s is not revealed by any chapter", w.ID, clue.ID))
		}
	}
	return errs
}

func clueIndex(caseID string, clues []models.Clue) (map[string]struct{}, []error) {
	var (
		errs  []error
		index = make(map[string]struct{}, len(clues))
	)
	for _, clue := range clues {
		if _, dup := index[clue.ID]; dup || clue.ID == "" {
			errs = append(errs, fmt.Errorf("case %s: missing or duplicate clue id %q", caseID, clue.ID))
		}
		index[clue.ID] = struct{}{}
	}
	return index, errs
}

func validateSuspects(caseID string, suspects []models.Suspect, clueIDs map[string]struct{}) []error {
	var (
		errs   []error
		guilty int
		seen   = make(map[string]struct{}, len(suspects))
	)
	for _, suspect := range suspects {
		if _, dup := seen[suspect.ID]; dup || suspect.ID == "" {
			errs = append(errs, fmt.Errorf("case %s: missing or duplicate suspect id %q", caseID, suspect.ID))
		}
		seen[suspect.ID] = struct{}{}
		if suspect.IsGuilty {
			guilty++
		}
		for _, err := range dialogue.Validate(suspect, clueIDs) {
			errs = append(errs, fmt.Errorf("case %s: %w", caseID, err))
		}
	}
	if guilty != 1 {
		errs = append(errs, fmt.Errorf("case %s: has %d guilty suspects, want exactly 1", caseID, guilty))
	}
	return errs
}

func validateObjects(caseID string, objects []models.CrimeSceneObject, clueIDs map[string]struct{}) []error {
	var errs []error
	for _, object := range objects {
		if object.ClueID == "" {
			continue
		}
		if _, ok := clueIDs[object.ClueID]; !ok {
			errs = append(errs, fmt.Errorf("case %s: object %s reveals unknown clue %s", caseID, object.ID, object.ClueID))
		}
	}
	return errs
}
