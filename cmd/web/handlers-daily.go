package main

import (
	"net/http"
)

func (app *application) initDaily(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := player(r)
	result, err := app.game.Init(r.Context(), sessionID, playerID)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) dailyProgress(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := player(r)
	progress, err := app.game.GetProgress(r.Context(), sessionID, playerID)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, progress)
}

func (app *application) findClue(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := player(r)
	result, err := app.game.FindClue(r.Context(), sessionID, playerID, r.PathValue("clueID"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) examineObject(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := player(r)
	result, err := app.game.ExamineObject(r.Context(), sessionID, playerID, r.PathValue("objectID"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) rootDialogueOptions(w http.ResponseWriter, r *http.Request) {
	options, err := app.game.RootDialogueOptions(r.PathValue("suspectID"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, options)
}

func (app *application) selectDialogueOption(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := player(r)
	result, err := app.game.SelectDialogueOption(r.Context(), sessionID, playerID,
		r.PathValue("suspectID"), r.PathValue("optionID"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) accuse(w http.ResponseWriter, r *http.Request) {
	suspectID, err := decodeAccusation(r)
	if err != nil || suspectID == "" {
		app.badRequest(w, r, "suspectId is required")
		return
	}
	sessionID, playerID := player(r)
	result, err := app.game.Accuse(r.Context(), sessionID, playerID, suspectID)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) leaderboard(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := player(r)
	stats, err := app.game.GetLeaderboard(r.Context(), sessionID)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, stats)
}

func (app *application) resetProgress(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := player(r)
	if err := app.game.ResetProgress(r.Context(), sessionID, playerID); err != nil {
		app.gameError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
