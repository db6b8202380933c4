// Package game is the case progression engine used by the transports.
//
// The service is stateless: every operation names the session and the player explicitly and all player state lives
// in the progress store. Mutations run as atomic read-modify-write updates on that store.
package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/myrjola/casebook/internal/accusation"
	"github.com/myrjola/casebook/internal/clues"
	"github.com/myrjola/casebook/internal/content"
	"github.com/myrjola/casebook/internal/dialogue"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/models"
)

// ProgressStore persists daily case progress.
type ProgressStore interface {
	Get(ctx context.Context, sessionID, playerID, caseID string) (models.PlayerProgress, error)
	Update(
		ctx context.Context,
		sessionID, playerID, caseID string,
		fn func(models.PlayerProgress) (models.PlayerProgress, error),
	) (models.PlayerProgress, error)
	Reset(ctx context.Context, sessionID, playerID string) error
}

// WeeklyProgressStore persists weekly case progress.
type WeeklyProgressStore interface {
	Get(ctx context.Context, sessionID, playerID, caseID string) (models.WeeklyProgress, error)
	Update(
		ctx context.Context,
		sessionID, playerID, caseID string,
		fn func(models.WeeklyProgress) (models.WeeklyProgress, error),
	) (models.WeeklyProgress, error)
	Reset(ctx context.Context, sessionID, playerID string) error
}

// StatsStore holds the shared accusation counters.
type StatsStore interface {
	RecordAccusation(ctx context.Context, sessionID, caseID, suspectID string, correct bool) error
	Counters(ctx context.Context, sessionID, caseID string) (models.AccusationCounters, error)
}

// Options configure case selection and the calendar.
type Options struct {
	// DailySelector picks the active daily case.
	DailySelector content.Selector
	// WeeklySelector picks the active weekly case.
	WeeklySelector content.Selector
	// Location defines calendar days for chapter gating. Defaults to UTC.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	content        *content.Repository
	progress       ProgressStore
	weekly         WeeklyProgressStore
	stats          StatsStore
	dailySelector  content.Selector
	weeklySelector content.Selector
	loc            *time.Location
	now            func() time.Time
	logger         *slog.Logger
}

func NewService(
	contentRepo *content.Repository,
	progress ProgressStore,
	weekly WeeklyProgressStore,
	stats StatsStore,
	opts Options,
	logger *slog.Logger,
) *Service {
	s := Service{
		content:        contentRepo,
		progress:       progress,
		weekly:         weekly,
		stats:          stats,
		dailySelector:  opts.DailySelector,
		weeklySelector: opts.WeeklySelector,
		loc:            opts.Location,
		now:            opts.Now,
		logger:         logger,
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.dailySelector == nil {
		s.dailySelector = content.DailyRotation{Location: s.loc}
	}
	if s.weeklySelector == nil {
		s.weeklySelector = content.ISOWeekRotation{Location: s.loc}
	}
	return &s
}

func (s *Service) activeCase() (*models.Case, error) {
	c, err := s.content.SelectCase(s.dailySelector, s.now())
	if err != nil {
		return nil, errors.Wrap(err, "select daily case")
	}
	return c, nil
}

// InitResult is the starting state of the daily case.
type InitResult struct {
	Case     *models.Case          `json:"case"`
	Progress models.PlayerProgress `json:"progress"`
}

// Init returns the active case with the player's progress, which is empty for a new player.
func (s *Service) Init(ctx context.Context, sessionID, playerID string) (InitResult, error) {
	c, err := s.activeCase()
	if err != nil {
		return InitResult{}, err
	}
	progress, err := s.progress.Get(ctx, sessionID, playerID, c.ID)
	if err != nil {
		return InitResult{}, errors.Wrap(err, "get progress")
	}
	return InitResult{Case: c, Progress: progress}, nil
}

// GetProgress returns the player's progress in the active case.
func (s *Service) GetProgress(ctx context.Context, sessionID, playerID string) (models.PlayerProgress, error) {
	c, err := s.activeCase()
	if err != nil {
		return models.PlayerProgress{}, err
	}
	progress, err := s.progress.Get(ctx, sessionID, playerID, c.ID)
	if err != nil {
		return models.PlayerProgress{}, errors.Wrap(err, "get progress")
	}
	return progress, nil
}

// ClueResult is the outcome of finding a clue.
type ClueResult struct {
	Clue     models.Clue           `json:"clue"`
	Progress models.PlayerProgress `json:"progress"`
	New      bool                  `json:"new"`
}

// FindClue adds clueID to the player's found clues. Finding the same clue again is a no-op.
func (s *Service) FindClue(ctx context.Context, sessionID, playerID, clueID string) (ClueResult, error) {
	c, err := s.activeCase()
	if err != nil {
		return ClueResult{}, err
	}
	var discovery clues.Discovery
	progress, err := s.progress.Update(ctx, sessionID, playerID, c.ID,
		func(p models.PlayerProgress) (models.PlayerProgress, error) {
			var findErr error
			if discovery, findErr = clues.Find(p, clueID, c.Clues); findErr != nil {
				return p, findErr
			}
			return discovery.Progress, nil
		})
	if err != nil {
		return ClueResult{}, errors.Wrap(err, "find clue", slog.String("case_id", c.ID))
	}
	if discovery.New {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "clue found",
			slog.String("case_id", c.ID), slog.String("clue_id", clueID))
	}
	return ClueResult{Clue: discovery.Clue, Progress: progress, New: discovery.New}, nil
}

// ExamineResult is the outcome of examining a crime scene object.
type ExamineResult struct {
	Object models.CrimeSceneObject `json:"object"`
	// Clue is the clue hidden in the object, nil when there is none.
	Clue     *models.Clue          `json:"clue,omitempty"`
	Progress models.PlayerProgress `json:"progress"`
}

// ExamineObject examines a crime scene object and finds the clue it hides, if any.
func (s *Service) ExamineObject(ctx context.Context, sessionID, playerID, objectID string) (ExamineResult, error) {
	c, err := s.activeCase()
	if err != nil {
		return ExamineResult{}, err
	}
	object, ok := c.CrimeSceneObject(objectID)
	if !ok {
		return ExamineResult{}, errors.Wrap(models.ErrObjectNotFound, "examine object",
			slog.String("object_id", objectID))
	}
	if object.ClueID == "" {
		var progress models.PlayerProgress
		if progress, err = s.progress.Get(ctx, sessionID, playerID, c.ID); err != nil {
			return ExamineResult{}, errors.Wrap(err, "get progress")
		}
		return ExamineResult{Object: object, Progress: progress}, nil
	}
	found, err := s.FindClue(ctx, sessionID, playerID, object.ClueID)
	if err != nil {
		return ExamineResult{}, errors.Wrap(err, "examine object", slog.String("object_id", objectID))
	}
	return ExamineResult{Object: object, Clue: &found.Clue, Progress: found.Progress}, nil
}

// AccuseResult is the outcome of an accusation.
type AccuseResult struct {
	Correct        bool                  `json:"correct"`
	Suspect        models.Suspect        `json:"suspect"`
	Progress       models.PlayerProgress `json:"progress"`
	AlreadyAccused bool                  `json:"alreadyAccused"`
}

// Accuse makes the player's one accusation. Repeated accusations return the original verdict.
//
// A first-time accusation increments the shared counters. Failing to record them is logged and does not fail the
// accusation.
func (s *Service) Accuse(ctx context.Context, sessionID, playerID, suspectID string) (AccuseResult, error) {
	c, err := s.activeCase()
	if err != nil {
		return AccuseResult{}, err
	}
	var verdict accusation.Verdict
	progress, err := s.progress.Update(ctx, sessionID, playerID, c.ID,
		func(p models.PlayerProgress) (models.PlayerProgress, error) {
			var accuseErr error
			if verdict, accuseErr = accusation.Accuse(p, suspectID, c.Suspects); accuseErr != nil {
				return p, accuseErr
			}
			return verdict.Progress, nil
		})
	if err != nil {
		return AccuseResult{}, errors.Wrap(err, "accuse", slog.String("case_id", c.ID))
	}
	if !verdict.AlreadyAccused {
		s.recordAccusation(ctx, sessionID, c.ID, verdict.Suspect.ID, verdict.Correct)
	}
	return AccuseResult{
		Correct:        verdict.Correct,
		Suspect:        verdict.Suspect,
		Progress:       progress,
		AlreadyAccused: verdict.AlreadyAccused,
	}, nil
}

func (s *Service) recordAccusation(ctx context.Context, sessionID, caseID, suspectID string, correct bool) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "accusation made",
		slog.String("case_id", caseID), slog.String("suspect_id", suspectID), slog.Bool("correct", correct))
	if err := s.stats.RecordAccusation(ctx, sessionID, caseID, suspectID, correct); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to record accusation stats", errors.SlogError(err))
	}
}

// GetLeaderboard returns the accusation statistics of the active case in the session.
func (s *Service) GetLeaderboard(ctx context.Context, sessionID string) (models.LeaderboardStats, error) {
	c, err := s.activeCase()
	if err != nil {
		return models.LeaderboardStats{}, err
	}
	counters, err := s.stats.Counters(ctx, sessionID, c.ID)
	if err != nil {
		return models.LeaderboardStats{}, errors.Wrap(err, "get counters", slog.String("case_id", c.ID))
	}
	return accusation.Leaderboard(c.ID, counters, c.Suspects), nil
}

// RootDialogueOptions returns the opening questions for a suspect of the active case.
func (s *Service) RootDialogueOptions(suspectID string) ([]models.DialogueOption, error) {
	c, err := s.activeCase()
	if err != nil {
		return nil, err
	}
	suspect, ok := c.Suspect(suspectID)
	if !ok {
		return nil, errors.Wrap(models.ErrSuspectNotFound, "root dialogue options",
			slog.String("suspect_id", suspectID))
	}
	return dialogue.RootOptions(suspect), nil
}

// DialogueResult is the answer to a dialogue option.
type DialogueResult struct {
	Response     string `json:"response"`
	IsSuspicious bool   `json:"isSuspicious"`
	// UnlockedClue is the clue revealed by the answer, nil when the answer reveals nothing.
	UnlockedClue *models.Clue            `json:"unlockedClue,omitempty"`
	NextOptions  []models.DialogueOption `json:"nextOptions"`
	Progress     models.PlayerProgress   `json:"progress"`
}

// SelectDialogueOption asks a suspect the question optionID. The suspect is marked as interrogated and a clue
// revealed by the answer is found the same way as any other clue.
func (s *Service) SelectDialogueOption(
	ctx context.Context,
	sessionID, playerID, suspectID, optionID string,
) (DialogueResult, error) {
	c, err := s.activeCase()
	if err != nil {
		return DialogueResult{}, err
	}
	suspect, ok := c.Suspect(suspectID)
	if !ok {
		return DialogueResult{}, errors.Wrap(models.ErrSuspectNotFound, "select dialogue option",
			slog.String("suspect_id", suspectID))
	}
	result, err := dialogue.SelectOption(suspect, optionID)
	if err != nil {
		return DialogueResult{}, errors.Wrap(err, "select dialogue option")
	}

	var discovery clues.Discovery
	progress, err := s.progress.Update(ctx, sessionID, playerID, c.ID,
		func(p models.PlayerProgress) (models.PlayerProgress, error) {
			if !p.HasInterrogated(suspectID) {
				p.SuspectsInterrogated = append(p.SuspectsInterrogated, suspectID)
			}
			if result.UnlocksClueID == "" {
				return p, nil
			}
			var findErr error
			if discovery, findErr = clues.Find(p, result.UnlocksClueID, c.Clues); findErr != nil {
				return p, findErr
			}
			return discovery.Progress, nil
		})
	if err != nil {
		return DialogueResult{}, errors.Wrap(err, "interrogate", slog.String("suspect_id", suspectID))
	}

	dr := DialogueResult{
		Response:     result.Response,
		IsSuspicious: result.IsSuspicious,
		NextOptions:  result.NextOptions,
		Progress:     progress,
	}
	if result.UnlocksClueID != "" {
		dr.UnlockedClue = &discovery.Clue
		if discovery.New {
			s.logger.LogAttrs(ctx, slog.LevelInfo, "clue found",
				slog.String("case_id", c.ID), slog.String("clue_id", discovery.Clue.ID))
		}
	}
	return dr, nil
}

// ResetProgress deletes the daily and weekly progress of the player. Shared counters are kept.
func (s *Service) ResetProgress(ctx context.Context, sessionID, playerID string) error {
	if err := s.progress.Reset(ctx, sessionID, playerID); err != nil {
		return errors.Wrap(err, "reset progress")
	}
	if err := s.weekly.Reset(ctx, sessionID, playerID); err != nil {
		return errors.Wrap(err, "reset weekly progress")
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "progress reset")
	return nil
}
