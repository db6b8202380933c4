// Package dialogue resolves branching conversations with suspects.
//
// A suspect's dialogue options form a directed graph: each option lists the ids of its follow-up options. Options
// tagged as root options are offered when the conversation starts and whenever a branch runs out of follow-ups.
package dialogue

import (
	"fmt"
	"log/slog"

	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/models"
)

// Result is the outcome of selecting a dialogue option.
type Result struct {
	Response     string
	IsSuspicious bool
	// UnlocksClueID is the clue revealed by the answer. Empty when the answer reveals nothing.
	UnlocksClueID string
	// NextOptions are the follow-up questions. Empty when the branch is exhausted and the caller should fall back
	// to RootOptions.
	NextOptions []models.DialogueOption
}

// Graph indexes a suspect's dialogue options by id.
type Graph struct {
	suspectID string
	order     []string
	nodes     map[string]models.DialogueOption
}

// NewGraph indexes the options of suspect. Duplicate ids keep the first occurrence; use Validate to reject them.
func NewGraph(suspect models.Suspect) *Graph {
	g := Graph{
		suspectID: suspect.ID,
		order:     make([]string, 0, len(suspect.DialogueOptions)),
		nodes:     make(map[string]models.DialogueOption, len(suspect.DialogueOptions)),
	}
	for _, option := range suspect.DialogueOptions {
		if _, exists := g.nodes[option.ID]; exists {
			continue
		}
		g.order = append(g.order, option.ID)
		g.nodes[option.ID] = option
	}
	return &g
}

// Option looks up an option by id.
func (g *Graph) Option(id string) (models.DialogueOption, bool) {
	option, ok := g.nodes[id]
	return option, ok
}

// RootOptions returns the options explicitly tagged as root options in authored order.
func (g *Graph) RootOptions() []models.DialogueOption {
	roots := []models.DialogueOption{}
	for _, id := range g.order {
		if option := g.nodes[id]; option.IsRootOption {
			roots = append(roots, option)
		}
	}
	return roots
}

// Select resolves the answer to optionID.
func (g *Graph) Select(optionID string) (Result, error) {
	option, ok := g.nodes[optionID]
	if !ok {
		return Result{}, errors.Wrap(models.ErrOptionNotFound, "select option",
			slog.String("suspect_id", g.suspectID), slog.String("option_id", optionID))
	}
	next := make([]models.DialogueOption, 0, len(option.NextOptions))
	for _, id := range option.NextOptions {
		nextOption, exists := g.nodes[id]
		if !exists {
			// Validated at load time, so this means the graph was built from unvalidated content.
			return Result{}, errors.Wrap(models.ErrOptionNotFound, "resolve next option",
				slog.String("suspect_id", g.suspectID), slog.String("option_id", id))
		}
		next = append(next, nextOption)
	}
	return Result{
		Response:      option.Response,
		IsSuspicious:  option.IsSuspicious,
		UnlocksClueID: option.UnlocksClue,
		NextOptions:   next,
	}, nil
}

// SelectOption resolves optionID within suspect's dialogue.
func SelectOption(suspect models.Suspect, optionID string) (Result, error) {
	return NewGraph(suspect).Select(optionID)
}

// RootOptions returns the options a conversation with suspect starts from.
func RootOptions(suspect models.Suspect) []models.DialogueOption {
	return NewGraph(suspect).RootOptions()
}

// Validate checks that the dialogue graph of suspect is closed: option ids are unique, every next option resolves
// within the suspect, every unlocked clue exists in clueIDs and at least one root option exists.
func Validate(suspect models.Suspect, clueIDs map[string]struct{}) []error {
	var (
		errs    = []error{}
		seen    = make(map[string]struct{}, len(suspect.DialogueOptions))
		hasRoot bool
	)
	for _, option := range suspect.DialogueOptions {
		if option.ID == "" {
			errs = append(errs, fmt.Errorf("suspect %s: dialogue option without id", suspect.ID))
			continue
		}
		if _, dup := seen[option.ID]; dup {
			errs = append(errs, fmt.Errorf("suspect %s: duplicate dialogue option %s", suspect.ID, option.ID))
		}
		seen[option.ID] = struct{}{}
		hasRoot = hasRoot || option.IsRootOption
	}
	for _, option := range suspect.DialogueOptions {
		for _, next := range option.NextOptions {
			if _, ok := seen[next]; !ok {
				errs = append(errs, fmt.Errorf("suspect %s: option %s references unknown next option %s",
					suspect.ID, option.ID, next))
			}
		}
		if option.UnlocksClue != "" {
			if _, ok := clueIDs[option.UnlocksClue]; !ok {
				errs = append(errs, fmt.Errorf("suspect %s: option %s unlocks unknown clue %s",
					suspect.ID, option.ID, option.UnlocksClue))
			}
		}
	}
	if len(suspect.DialogueOptions) > 0 && !hasRoot {
		errs = append(errs, fmt.Errorf("suspect %s: no root dialogue option", suspect.ID))
	}
	return errs
}
