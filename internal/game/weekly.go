package game

import (
	"context"
	"log/slog"
	"slices"

	"github.com/myrjola/casebook/internal/accusation"
	"github.com/myrjola/casebook/internal/chapters"
	"github.com/myrjola/casebook/internal/clues"
	"github.com/myrjola/casebook/internal/dialogue"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/models"
)

func (s *Service) activeWeeklyCase() (*models.WeeklyCase, error) {
	wc, err := s.content.SelectWeeklyCase(s.weeklySelector, s.now())
	if err != nil {
		return nil, errors.Wrap(err, "select weekly case")
	}
	return wc, nil
}

// WeeklyInitResult is the weekly case with the player's progress and the computed chapter schedule.
type WeeklyInitResult struct {
	WeeklyCase           *models.WeeklyCase     `json:"weeklyCase"`
	Progress             models.WeeklyProgress  `json:"progress"`
	ChapterStatuses      []models.ChapterStatus `json:"chapterStatuses"`
	CurrentDayNumber     int                    `json:"currentDayNumber"`
	IsAccusationUnlocked bool                   `json:"isAccusationUnlocked"`
}

// InitWeekly returns the active weekly case and where the player stands in it.
func (s *Service) InitWeekly(ctx context.Context, sessionID, playerID string) (WeeklyInitResult, error) {
	wc, err := s.activeWeeklyCase()
	if err != nil {
		return WeeklyInitResult{}, err
	}
	progress, err := s.weekly.Get(ctx, sessionID, playerID, wc.ID)
	if err != nil {
		return WeeklyInitResult{}, errors.Wrap(err, "get weekly progress")
	}
	schedule := chapters.ComputeStatuses(wc, progress, s.now(), s.loc)
	return WeeklyInitResult{
		WeeklyCase:           wc,
		Progress:             progress,
		ChapterStatuses:      schedule.Statuses,
		CurrentDayNumber:     schedule.CurrentDayNumber,
		IsAccusationUnlocked: schedule.IsAccusationUnlocked,
	}, nil
}

// ChapterResult is the outcome of completing a chapter.
type ChapterResult struct {
	Progress     models.WeeklyProgress `json:"progress"`
	Completed    bool                  `json:"completed"`
	PointsEarned int                   `json:"pointsEarned"`
	StreakBonus  int                   `json:"streakBonus"`
	OnTimeBonus  int                   `json:"onTimeBonus"`
}

// CompleteChapter completes chapter dayNumber of the active weekly case. Completing a locked or already completed
// chapter earns nothing and leaves the progress unchanged.
func (s *Service) CompleteChapter(ctx context.Context, sessionID, playerID string, dayNumber int) (ChapterResult, error) {
	wc, err := s.activeWeeklyCase()
	if err != nil {
		return ChapterResult{}, err
	}
	if _, ok := wc.Chapter(dayNumber); !ok {
		return ChapterResult{}, errors.Wrap(models.ErrChapterNotFound, "complete chapter",
			slog.Int("day_number", dayNumber))
	}
	now := s.now()
	var completion chapters.Completion
	progress, err := s.weekly.Update(ctx, sessionID, playerID, wc.ID,
		func(p models.WeeklyProgress) (models.WeeklyProgress, error) {
			completion = chapters.CompleteChapter(wc, p, dayNumber, now, s.loc)
			return completion.Progress, nil
		})
	if err != nil {
		return ChapterResult{}, errors.Wrap(err, "complete chapter", slog.String("case_id", wc.ID))
	}
	if completion.Completed {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "chapter completed",
			slog.String("case_id", wc.ID),
			slog.Int("day_number", dayNumber),
			slog.Int("points_earned", completion.PointsEarned))
	}
	return ChapterResult{
		Progress:     progress,
		Completed:    completion.Completed,
		PointsEarned: completion.PointsEarned,
		StreakBonus:  completion.StreakBonus,
		OnTimeBonus:  completion.OnTimeBonus,
	}, nil
}

// WeeklyClueResult is the outcome of finding a weekly clue.
type WeeklyClueResult struct {
	Clue     models.Clue           `json:"clue"`
	Progress models.WeeklyProgress `json:"progress"`
	New      bool                  `json:"new"`
}

// unlockedClues returns the clues introduced by the chapters unlocked today.
func (s *Service) unlockedClues(wc *models.WeeklyCase) []models.Clue {
	return wc.CluesUpTo(chapters.UnlockedDays(wc.StartDate, s.now(), s.loc))
}

// FindWeeklyClue finds a clue of an unlocked chapter. Clues of locked chapters are not found.
func (s *Service) FindWeeklyClue(ctx context.Context, sessionID, playerID, clueID string) (WeeklyClueResult, error) {
	wc, err := s.activeWeeklyCase()
	if err != nil {
		return WeeklyClueResult{}, err
	}
	unlocked := s.unlockedClues(wc)
	var discovery clues.WeeklyDiscovery
	progress, err := s.weekly.Update(ctx, sessionID, playerID, wc.ID,
		func(p models.WeeklyProgress) (models.WeeklyProgress, error) {
			var findErr error
			if discovery, findErr = clues.FindWeekly(p, clueID, unlocked); findErr != nil {
				return p, findErr
			}
			return discovery.Progress, nil
		})
	if err != nil {
		return WeeklyClueResult{}, errors.Wrap(err, "find weekly clue", slog.String("case_id", wc.ID))
	}
	return WeeklyClueResult{Clue: discovery.Clue, Progress: progress, New: discovery.New}, nil
}

// WeeklyExamineResult is the outcome of examining a crime scene object of a chapter.
type WeeklyExamineResult struct {
	Object   models.CrimeSceneObject `json:"object"`
	Clue     *models.Clue            `json:"clue,omitempty"`
	Progress models.WeeklyProgress   `json:"progress"`
}

// ExamineWeeklyObject examines a crime scene object of an unlocked chapter.
func (s *Service) ExamineWeeklyObject(
	ctx context.Context,
	sessionID, playerID, objectID string,
) (WeeklyExamineResult, error) {
	wc, err := s.activeWeeklyCase()
	if err != nil {
		return WeeklyExamineResult{}, err
	}
	unlockedDays := chapters.UnlockedDays(wc.StartDate, s.now(), s.loc)
	var (
		object models.CrimeSceneObject
		found  bool
	)
	for _, chapter := range wc.Chapters {
		if chapter.DayNumber > unlockedDays {
			continue
		}
		i := slices.IndexFunc(chapter.CrimeSceneObjects, func(o models.CrimeSceneObject) bool { return o.ID == objectID })
		if i >= 0 {
			object, found = chapter.CrimeSceneObjects[i], true
			break
		}
	}
	if !found {
		return WeeklyExamineResult{}, errors.Wrap(models.ErrObjectNotFound, "examine weekly object",
			slog.String("object_id", objectID))
	}
	if object.ClueID == "" {
		var progress models.WeeklyProgress
		if progress, err = s.weekly.Get(ctx, sessionID, playerID, wc.ID); err != nil {
			return WeeklyExamineResult{}, errors.Wrap(err, "get weekly progress")
		}
		return WeeklyExamineResult{Object: object, Progress: progress}, nil
	}
	clue, err := s.FindWeeklyClue(ctx, sessionID, playerID, object.ClueID)
	if err != nil {
		return WeeklyExamineResult{}, errors.Wrap(err, "examine weekly object", slog.String("object_id", objectID))
	}
	return WeeklyExamineResult{Object: object, Clue: &clue.Clue, Progress: clue.Progress}, nil
}

// WeeklyDialogueResult is the answer to a dialogue option of a weekly case suspect.
type WeeklyDialogueResult struct {
	Response     string                  `json:"response"`
	IsSuspicious bool                    `json:"isSuspicious"`
	UnlockedClue *models.Clue            `json:"unlockedClue,omitempty"`
	NextOptions  []models.DialogueOption `json:"nextOptions"`
	Progress     models.WeeklyProgress   `json:"progress"`
}

// RootWeeklyDialogueOptions returns the opening questions for a suspect of the active weekly case.
func (s *Service) RootWeeklyDialogueOptions(suspectID string) ([]models.DialogueOption, error) {
	wc, err := s.activeWeeklyCase()
	if err != nil {
		return nil, err
	}
	suspect, ok := wc.Suspect(suspectID)
	if !ok {
		return nil, errors.Wrap(models.ErrSuspectNotFound, "root weekly dialogue options",
			slog.String("suspect_id", suspectID))
	}
	return dialogue.RootOptions(suspect), nil
}

// SelectWeeklyDialogueOption asks a weekly case suspect the question optionID. An answer that points at a clue of a
// chapter that is still locked reveals nothing yet.
func (s *Service) SelectWeeklyDialogueOption(
	ctx context.Context,
	sessionID, playerID, suspectID, optionID string,
) (WeeklyDialogueResult, error) {
	wc, err := s.activeWeeklyCase()
	if err != nil {
		return WeeklyDialogueResult{}, err
	}
	suspect, ok := wc.Suspect(suspectID)
	if !ok {
		return WeeklyDialogueResult{}, errors.Wrap(models.ErrSuspectNotFound, "select weekly dialogue option",
			slog.String("suspect_id", suspectID))
	}
	result, err := dialogue.SelectOption(suspect, optionID)
	if err != nil {
		return WeeklyDialogueResult{}, errors.Wrap(err, "select weekly dialogue option")
	}

	unlocked := s.unlockedClues(wc)
	revealable := result.UnlocksClueID != "" && slices.ContainsFunc(unlocked, func(c models.Clue) bool {
		return c.ID == result.UnlocksClueID
	})
	var discovery clues.WeeklyDiscovery
	progress, err := s.weekly.Update(ctx, sessionID, playerID, wc.ID,
		func(p models.WeeklyProgress) (models.WeeklyProgress, error) {
			if !slices.Contains(p.SuspectsInterrogated, suspectID) {
				p.SuspectsInterrogated = append(p.SuspectsInterrogated, suspectID)
			}
			if !revealable {
				return p, nil
			}
			var findErr error
			if discovery, findErr = clues.FindWeekly(p, result.UnlocksClueID, unlocked); findErr != nil {
				return p, findErr
			}
			return discovery.Progress, nil
		})
	if err != nil {
		return WeeklyDialogueResult{}, errors.Wrap(err, "interrogate", slog.String("suspect_id", suspectID))
	}
	dr := WeeklyDialogueResult{
		Response:     result.Response,
		IsSuspicious: result.IsSuspicious,
		NextOptions:  result.NextOptions,
		Progress:     progress,
	}
	if revealable {
		dr.UnlockedClue = &discovery.Clue
	}
	return dr, nil
}

// WeeklyAccuseResult is the outcome of a weekly accusation.
type WeeklyAccuseResult struct {
	Correct        bool                  `json:"correct"`
	Suspect        models.Suspect        `json:"suspect"`
	Progress       models.WeeklyProgress `json:"progress"`
	AlreadyAccused bool                  `json:"alreadyAccused"`
}

// AccuseWeekly makes the player's one accusation in the weekly case. It fails with models.ErrAccusationLocked until
// chapters 1-6 are completed and the accusation day has unlocked.
func (s *Service) AccuseWeekly(ctx context.Context, sessionID, playerID, suspectID string) (WeeklyAccuseResult, error) {
	wc, err := s.activeWeeklyCase()
	if err != nil {
		return WeeklyAccuseResult{}, err
	}
	now := s.now()
	var verdict accusation.WeeklyVerdict
	progress, err := s.weekly.Update(ctx, sessionID, playerID, wc.ID,
		func(p models.WeeklyProgress) (models.WeeklyProgress, error) {
			schedule := chapters.ComputeStatuses(wc, p, now, s.loc)
			var accuseErr error
			if verdict, accuseErr = accusation.AccuseWeekly(p, suspectID, wc, schedule.IsAccusationUnlocked); accuseErr != nil {
				return p, accuseErr
			}
			return verdict.Progress, nil
		})
	if err != nil {
		return WeeklyAccuseResult{}, errors.Wrap(err, "accuse weekly", slog.String("case_id", wc.ID))
	}
	if !verdict.AlreadyAccused {
		s.recordAccusation(ctx, sessionID, wc.ID, verdict.Suspect.ID, verdict.Correct)
	}
	return WeeklyAccuseResult{
		Correct:        verdict.Correct,
		Suspect:        verdict.Suspect,
		Progress:       progress,
		AlreadyAccused: verdict.AlreadyAccused,
	}, nil
}

// GetWeeklyLeaderboard returns the accusation statistics of the active weekly case in the session.
func (s *Service) GetWeeklyLeaderboard(ctx context.Context, sessionID string) (models.LeaderboardStats, error) {
	wc, err := s.activeWeeklyCase()
	if err != nil {
		return models.LeaderboardStats{}, err
	}
	counters, err := s.stats.Counters(ctx, sessionID, wc.ID)
	if err != nil {
		return models.LeaderboardStats{}, errors.Wrap(err, "get counters", slog.String("case_id", wc.ID))
	}
	return accusation.Leaderboard(wc.ID, counters, wc.Suspects), nil
}
