// Package chapters gates the chapters of a weekly case by calendar day.
//
// Everything here is a pure function of the weekly case start date, the player's weekly progress and the current
// time, so chapter availability can be recomputed on any request or device with the same result.
package chapters

import (
	"time"

	"github.com/myrjola/casebook/internal/models"
)

const (
	// BasePoints are awarded for every completed chapter.
	BasePoints = 100
	// StreakBonus is awarded when the previous chapter was completed on the preceding calendar day.
	StreakBonus = 50
	// OnTimeBonus is awarded when a chapter is completed on the day it unlocks.
	OnTimeBonus = 25

	accusationDay = models.WeeklyChapterCount
)

// Schedule is the computed chapter availability for a player.
type Schedule struct {
	Statuses []models.ChapterStatus
	// CurrentDayNumber is the lowest unlocked but not completed chapter among days 1-6. It is the accusation day
	// when the accusation is unlocked and 0 when the player has to wait for the next chapter.
	CurrentDayNumber     int
	IsAccusationUnlocked bool
}

// UnlockedDays returns how many chapters are calendar-unlocked at now. Day 1 unlocks on the start date and one more
// day unlocks every calendar day in loc, capped at seven.
func UnlockedDays(startDate models.Date, now time.Time, loc *time.Location) int {
	elapsed := models.DateOf(now, loc).DaysSince(startDate)
	return min(max(elapsed+1, 0), models.WeeklyChapterCount)
}

// UnlockDate returns the calendar day chapter dayNumber unlocks.
func UnlockDate(startDate models.Date, dayNumber int) models.Date {
	return startDate.AddDays(dayNumber - 1)
}

// ComputeStatuses computes the status of every chapter of weeklyCase.
func ComputeStatuses(
	weeklyCase *models.WeeklyCase,
	progress models.WeeklyProgress,
	now time.Time,
	loc *time.Location,
) Schedule {
	var (
		unlocked = UnlockedDays(weeklyCase.StartDate, now, loc)
		schedule = Schedule{Statuses: make([]models.ChapterStatus, 0, models.WeeklyChapterCount)}
		allDone  = true
	)
	for day := 1; day <= models.WeeklyChapterCount; day++ {
		status := models.ChapterStatus{
			DayNumber:   day,
			IsUnlocked:  day <= unlocked,
			IsCompleted: progress.IsChapterCompleted(day),
		}
		status.IsAvailable = status.IsUnlocked && !status.IsCompleted
		if day < accusationDay {
			allDone = allDone && status.IsCompleted
			if status.IsAvailable && schedule.CurrentDayNumber == 0 {
				status.IsCurrent = true
				schedule.CurrentDayNumber = day
			}
		}
		schedule.Statuses = append(schedule.Statuses, status)
	}
	schedule.IsAccusationUnlocked = allDone && unlocked >= accusationDay
	if schedule.CurrentDayNumber == 0 && schedule.IsAccusationUnlocked {
		schedule.CurrentDayNumber = accusationDay
	}
	return schedule
}

// Completion is the outcome of completing a chapter.
type Completion struct {
	Progress     models.WeeklyProgress
	Completed    bool
	PointsEarned int
	StreakBonus  int
	OnTimeBonus  int
}

// CompleteChapter marks dayNumber as completed on today's date in loc.
//
// It is a no-op returning the unchanged progress with zero points when the chapter is already completed, not yet
// unlocked, or is the accusation day before chapters 1-6 are done.
func CompleteChapter(
	weeklyCase *models.WeeklyCase,
	progress models.WeeklyProgress,
	dayNumber int,
	now time.Time,
	loc *time.Location,
) Completion {
	noop := Completion{Progress: progress}
	if dayNumber < 1 || dayNumber > models.WeeklyChapterCount {
		return noop
	}
	schedule := ComputeStatuses(weeklyCase, progress, now, loc)
	status := schedule.Statuses[dayNumber-1]
	if !status.IsAvailable {
		return noop
	}
	if dayNumber == accusationDay && !schedule.IsAccusationUnlocked {
		return noop
	}

	today := models.DateOf(now, loc)
	completion := Completion{Completed: true, PointsEarned: BasePoints}
	if previous, ok := progress.Completion(dayNumber - 1); ok && today.DaysSince(previous.CompletedOn) == 1 {
		completion.StreakBonus = StreakBonus
	}
	if today.DaysSince(UnlockDate(weeklyCase.StartDate, dayNumber)) <= 0 {
		completion.OnTimeBonus = OnTimeBonus
	}
	completion.PointsEarned += completion.StreakBonus + completion.OnTimeBonus

	updated := progress.Clone()
	updated.ChapterCompletions = append(updated.ChapterCompletions, models.ChapterCompletion{
		DayNumber:   dayNumber,
		CompletedOn: today,
	})
	updated.TotalPoints += completion.PointsEarned
	completion.Progress = updated
	return completion
}
