package models

import "time"

// Clue is a discoverable fact, optionally linked to a suspect as evidence.
//
// Clues are immutable content. A clue is found only through player progress.
type Clue struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	LinkedTo    string `yaml:"linkedTo,omitempty" json:"linkedTo,omitempty"`
}

// DialogueOption is a selectable question with a suspect.
//
// Options form a directed graph through NextOptions. IsRootOption marks the options offered when a conversation
// with the suspect starts or a branch is exhausted.
type DialogueOption struct {
	ID           string   `yaml:"id" json:"id"`
	Text         string   `yaml:"text" json:"text"`
	Response     string   `yaml:"response" json:"response"`
	IsSuspicious bool     `yaml:"isSuspicious,omitempty" json:"isSuspicious,omitempty"`
	UnlocksClue  string   `yaml:"unlocksClue,omitempty" json:"unlocksClue,omitempty"`
	NextOptions  []string `yaml:"nextOptions,omitempty" json:"nextOptions,omitempty"`
	IsRootOption bool     `yaml:"isRootOption,omitempty" json:"isRootOption,omitempty"`
}

type Suspect struct {
	ID              string           `yaml:"id" json:"id"`
	Name            string           `yaml:"name" json:"name"`
	Description     string           `yaml:"description" json:"description"`
	Alibi           string           `yaml:"alibi" json:"alibi"`
	IsGuilty        bool             `yaml:"isGuilty,omitempty" json:"-"`
	DialogueOptions []DialogueOption `yaml:"dialogueOptions" json:"dialogueOptions"`
}

// CrimeSceneObject is something the player can examine at the crime scene. Examining it reveals ClueID, if set.
type CrimeSceneObject struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	ClueID      string `yaml:"clueId,omitempty" json:"clueId,omitempty"`
}

// Case is a single-day mystery.
type Case struct {
	ID                string             `yaml:"id" json:"id"`
	Title             string             `yaml:"title" json:"title"`
	Intro             string             `yaml:"intro" json:"intro"`
	DayNumber         int                `yaml:"dayNumber" json:"dayNumber"`
	CrimeSceneObjects []CrimeSceneObject `yaml:"crimeSceneObjects" json:"crimeSceneObjects"`
	Suspects          []Suspect          `yaml:"suspects" json:"suspects"`
	Clues             []Clue             `yaml:"clues" json:"clues"`
}

// Chapter is one day of a WeeklyCase. It reveals new clues and crime scene objects.
type Chapter struct {
	DayNumber         int                `yaml:"dayNumber" json:"dayNumber"`
	Title             string             `yaml:"title" json:"title"`
	Summary           string             `yaml:"summary" json:"summary"`
	NewClues          []string           `yaml:"newClues" json:"newClues"`
	CrimeSceneObjects []CrimeSceneObject `yaml:"crimeSceneObjects" json:"crimeSceneObjects"`
	IsAccusationDay   bool               `yaml:"isAccusationDay,omitempty" json:"isAccusationDay"`
}

// WeeklyCase is a seven chapter saga where one chapter unlocks per calendar day.
type WeeklyCase struct {
	ID              string    `yaml:"id" json:"id"`
	Title           string    `yaml:"title" json:"title"`
	WeekNumber      int       `yaml:"weekNumber" json:"weekNumber"`
	StartDate       Date      `yaml:"startDate" json:"startDate"`
	Chapters        []Chapter `yaml:"chapters" json:"chapters"`
	Suspects        []Suspect `yaml:"suspects" json:"suspects"`
	AllClues        []Clue    `yaml:"allClues" json:"allClues"`
	GuiltySuspectID string    `yaml:"guiltySuspectId" json:"-"`
}

// WeeklyChapterCount is the number of chapters in a WeeklyCase. The last one is the accusation day.
const WeeklyChapterCount = 7

// Suspect looks up a suspect by id.
func (c *Case) Suspect(id string) (Suspect, bool) {
	return findSuspect(c.Suspects, id)
}

// Clue looks up a clue by id.
func (c *Case) Clue(id string) (Clue, bool) {
	return findClue(c.Clues, id)
}

// CrimeSceneObject looks up a crime scene object by id.
func (c *Case) CrimeSceneObject(id string) (CrimeSceneObject, bool) {
	for _, o := range c.CrimeSceneObjects {
		if o.ID == id {
			return o, true
		}
	}
	return CrimeSceneObject{}, false
}

func (w *WeeklyCase) Suspect(id string) (Suspect, bool) {
	return findSuspect(w.Suspects, id)
}

func (w *WeeklyCase) Clue(id string) (Clue, bool) {
	return findClue(w.AllClues, id)
}

// Chapter returns the chapter for dayNumber.
func (w *WeeklyCase) Chapter(dayNumber int) (Chapter, bool) {
	for _, c := range w.Chapters {
		if c.DayNumber == dayNumber {
			return c, true
		}
	}
	return Chapter{}, false
}

// CluesUpTo returns the clues revealed by chapters 1..dayNumber.
func (w *WeeklyCase) CluesUpTo(dayNumber int) []Clue {
	var clues []Clue
	for _, chapter := range w.Chapters {
		if chapter.DayNumber > dayNumber {
			continue
		}
		for _, id := range chapter.NewClues {
			if clue, ok := w.Clue(id); ok {
				clues = append(clues, clue)
			}
		}
	}
	return clues
}

func findSuspect(suspects []Suspect, id string) (Suspect, bool) {
	for _, s := range suspects {
		if s.ID == id {
			return s, true
		}
	}
	return Suspect{}, false
}

func findClue(clues []Clue, id string) (Clue, bool) {
	for _, c := range clues {
		if c.ID == id {
			return c, true
		}
	}
	return Clue{}, false
}

// Date is a calendar day without time of day or location, e.g., the start date of a WeeklyCase.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err //nolint:wrapcheck // callers add context
	}
	return DateOf(t, time.UTC), nil
}

// DateOf returns the calendar day of t in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// AddDays returns the date n calendar days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight().AddDate(0, 0, n), time.UTC)
}

// DaysSince returns the number of calendar days from other to d. It is negative when d is before other.
func (d Date) DaysSince(other Date) int {
	const day = 24 * time.Hour
	return int(d.midnight().Sub(other.midnight()) / day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return d.midnight().Format(dateLayout)
}

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
