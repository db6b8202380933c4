package dialogue_test

import (
	"testing"

	"github.com/myrjola/casebook/internal/dialogue"
	"github.com/myrjola/casebook/internal/models"
	"github.com/stretchr/testify/require"
)

func testSuspect() models.Suspect {
	return models.Suspect{
		ID:   "le-bon",
		Name: "Adolphe Le Bon",
		DialogueOptions: []models.DialogueOption{
			{
				ID:           "money",
				Text:         "Why did you carry the gold to the house?",
				Response:     "Madame withdrew four thousand francs. I only escorted her home.",
				NextOptions:  []string{"money_2"},
				IsRootOption: true,
			},
			{
				ID:           "money_2",
				Text:         "Did anyone see you leave?",
				Response:     "No one. The street was empty.",
				IsSuspicious: true,
				UnlocksClue:  "receipt",
				NextOptions:  []string{"money_3"},
			},
			{
				ID:       "money_3",
				Text:     "Where did you go afterwards?",
				Response: "Home, to bed.",
			},
			{
				ID:           "voices",
				Text:         "Did you hear the voices?",
				Response:     "I was not there.",
				IsRootOption: true,
			},
		},
	}
}

func TestSelectOption(t *testing.T) {
	suspect := testSuspect()
	tests := []struct {
		name         string
		optionID     string
		wantResponse string
		wantSuspect  bool
		wantClue     string
		wantNext     []string
		wantErr      error
	}{
		{
			name:         "root option with follow-up",
			optionID:     "money",
			wantResponse: "Madame withdrew four thousand francs. I only escorted her home.",
			wantNext:     []string{"money_2"},
		},
		{
			name:         "suspicious answer unlocks clue",
			optionID:     "money_2",
			wantResponse: "No one. The street was empty.",
			wantSuspect:  true,
			wantClue:     "receipt",
			wantNext:     []string{"money_3"},
		},
		{
			name:         "exhausted branch",
			optionID:     "money_3",
			wantResponse: "Home, to bed.",
			wantNext:     []string{},
		},
		{
			name:     "unknown option",
			optionID: "nonexistent",
			wantErr:  models.ErrOptionNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := dialogue.SelectOption(suspect, tt.optionID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.ErrorIs(t, err, models.ErrContentNotFound)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantResponse, result.Response)
			require.Equal(t, tt.wantSuspect, result.IsSuspicious)
			require.Equal(t, tt.wantClue, result.UnlocksClueID)
			nextIDs := make([]string, 0, len(result.NextOptions))
			for _, option := range result.NextOptions {
				nextIDs = append(nextIDs, option.ID)
			}
			require.Equal(t, tt.wantNext, nextIDs)
		})
	}
}

func TestRootOptions(t *testing.T) {
	roots := dialogue.RootOptions(testSuspect())
	require.Len(t, roots, 2)
	require.Equal(t, "money", roots[0].ID)
	require.Equal(t, "voices", roots[1].ID)
}

func TestRootOptions_ignoreIDConventions(t *testing.T) {
	// Follow-up looking ids are roots when tagged so, and plain ids are not roots unless tagged.
	suspect := models.Suspect{
		ID: "s",
		DialogueOptions: []models.DialogueOption{
			{ID: "alibi_2", IsRootOption: true},
			{ID: "alibi"},
		},
	}
	roots := dialogue.RootOptions(suspect)
	require.Len(t, roots, 1)
	require.Equal(t, "alibi_2", roots[0].ID)
}

func TestValidate(t *testing.T) {
	clueIDs := map[string]struct{}{"receipt": {}}

	require.Empty(t, dialogue.Validate(testSuspect(), clueIDs))

	broken := testSuspect()
	broken.DialogueOptions[0].NextOptions = []string{"missing"}
	broken.DialogueOptions[1].UnlocksClue = "ghost"
	broken.DialogueOptions = append(broken.DialogueOptions, models.DialogueOption{ID: "voices"})
	errs := dialogue.Validate(broken, clueIDs)
	require.Len(t, errs, 3)

	noRoot := models.Suspect{ID: "s", DialogueOptions: []models.DialogueOption{{ID: "a"}}}
	require.Len(t, dialogue.Validate(noRoot, clueIDs), 1)
}
