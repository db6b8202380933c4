package models

import "slices"

// PlayerProgress is the per-player state of a daily case.
//
// It is owned by the progress store and keyed by session and player. Once Solved is true the accusation fields are
// final.
type PlayerProgress struct {
	CaseID               string   `json:"caseId"`
	CluesFound           []string `json:"cluesFound"`
	SuspectsInterrogated []string `json:"suspectsInterrogated"`
	AccusedSuspect       string   `json:"accusedSuspect,omitempty"`
	Solved               bool     `json:"solved"`
	Correct              bool     `json:"correct"`
	// Version is incremented on every write and used for compare-and-swap updates.
	Version int64 `json:"version"`
}

// NewPlayerProgress returns the empty progress for caseID.
func NewPlayerProgress(caseID string) PlayerProgress {
	return PlayerProgress{
		CaseID:               caseID,
		CluesFound:           []string{},
		SuspectsInterrogated: []string{},
	}
}

// HasClue reports whether the clue has been found.
func (p *PlayerProgress) HasClue(clueID string) bool {
	return slices.Contains(p.CluesFound, clueID)
}

// HasInterrogated reports whether the suspect has been questioned.
func (p *PlayerProgress) HasInterrogated(suspectID string) bool {
	return slices.Contains(p.SuspectsInterrogated, suspectID)
}

// Clone returns a deep copy so that transformations never alias the caller's slices.
func (p PlayerProgress) Clone() PlayerProgress {
	p.CluesFound = slices.Clone(p.CluesFound)
	p.SuspectsInterrogated = slices.Clone(p.SuspectsInterrogated)
	return p
}

// ChapterCompletion records the calendar day a chapter was completed.
type ChapterCompletion struct {
	DayNumber   int  `json:"dayNumber"`
	CompletedOn Date `json:"completedOn"`
}

// WeeklyProgress is the per-player state of a WeeklyCase.
type WeeklyProgress struct {
	CaseID               string              `json:"caseId"`
	ChapterCompletions   []ChapterCompletion `json:"chapterCompletions"`
	CluesFound           []string            `json:"cluesFound"`
	SuspectsInterrogated []string            `json:"suspectsInterrogated"`
	AccusedSuspect       string              `json:"accusedSuspect,omitempty"`
	Solved               bool                `json:"solved"`
	Correct              bool                `json:"correct"`
	TotalPoints          int                 `json:"totalPoints"`
	Version              int64               `json:"version"`
}

func NewWeeklyProgress(caseID string) WeeklyProgress {
	return WeeklyProgress{
		CaseID:               caseID,
		ChapterCompletions:   []ChapterCompletion{},
		CluesFound:           []string{},
		SuspectsInterrogated: []string{},
	}
}

// ChaptersCompleted returns the completed day numbers in ascending order.
func (p *WeeklyProgress) ChaptersCompleted() []int {
	days := make([]int, 0, len(p.ChapterCompletions))
	for _, c := range p.ChapterCompletions {
		days = append(days, c.DayNumber)
	}
	slices.Sort(days)
	return days
}

// Completion returns the completion record for dayNumber.
func (p *WeeklyProgress) Completion(dayNumber int) (ChapterCompletion, bool) {
	for _, c := range p.ChapterCompletions {
		if c.DayNumber == dayNumber {
			return c, true
		}
	}
	return ChapterCompletion{}, false
}

func (p *WeeklyProgress) IsChapterCompleted(dayNumber int) bool {
	_, ok := p.Completion(dayNumber)
	return ok
}

func (p *WeeklyProgress) HasClue(clueID string) bool {
	return slices.Contains(p.CluesFound, clueID)
}

func (p WeeklyProgress) Clone() WeeklyProgress {
	p.ChapterCompletions = slices.Clone(p.ChapterCompletions)
	p.CluesFound = slices.Clone(p.CluesFound)
	p.SuspectsInterrogated = slices.Clone(p.SuspectsInterrogated)
	return p
}

// ChapterStatus is the computed availability of one chapter.
type ChapterStatus struct {
	DayNumber   int  `json:"dayNumber"`
	IsUnlocked  bool `json:"isUnlocked"`
	IsAvailable bool `json:"isAvailable"`
	IsCurrent   bool `json:"isCurrent"`
	IsCompleted bool `json:"isCompleted"`
}

// SuspectStat is the share of accusations against one suspect.
type SuspectStat struct {
	SuspectID  string  `json:"suspectId"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// LeaderboardStats aggregates the accusations of all players of a case within a session.
type LeaderboardStats struct {
	CaseID       string        `json:"caseId"`
	TotalPlayers int           `json:"totalPlayers"`
	SolvedCount  int           `json:"solvedCount"`
	SolveRate    float64       `json:"solveRate"`
	SuspectStats []SuspectStat `json:"suspectStats"`
}

// AccusationCounters are the raw shared counters behind LeaderboardStats.
type AccusationCounters struct {
	TotalAccusations int
	SolvedCount      int
	BySuspect        map[string]int
}
