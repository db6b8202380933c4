package main

import (
	"net/http"
	"strconv"
)

func (app *application) initWeekly(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := player(r)
	result, err := app.game.InitWeekly(r.Context(), sessionID, playerID)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) completeChapter(w http.ResponseWriter, r *http.Request) {
	dayNumber, err := strconv.Atoi(r.PathValue("dayNumber"))
	if err != nil {
		app.badRequest(w, r, "dayNumber must be a number")
		return
	}
	sessionID, playerID := player(r)
	result, err := app.game.CompleteChapter(r.Context(), sessionID, playerID, dayNumber)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) findWeeklyClue(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := player(r)
	result, err := app.game.FindWeeklyClue(r.Context(), sessionID, playerID, r.PathValue("clueID"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) examineWeeklyObject(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := player(r)
	result, err := app.game.ExamineWeeklyObject(r.Context(), sessionID, playerID, r.PathValue("objectID"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) rootWeeklyDialogueOptions(w http.ResponseWriter, r *http.Request) {
	options, err := app.game.RootWeeklyDialogueOptions(r.PathValue("suspectID"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, options)
}

func (app *application) selectWeeklyDialogueOption(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := player(r)
	result, err := app.game.SelectWeeklyDialogueOption(r.Context(), sessionID, playerID,
		r.PathValue("suspectID"), r.PathValue("optionID"))
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) accuseWeekly(w http.ResponseWriter, r *http.Request) {
	suspectID, err := decodeAccusation(r)
	if err != nil || suspectID == "" {
		app.badRequest(w, r, "suspectId is required")
		return
	}
	sessionID, playerID := player(r)
	result, err := app.game.AccuseWeekly(r.Context(), sessionID, playerID, suspectID)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}

func (app *application) weeklyLeaderboard(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := player(r)
	stats, err := app.game.GetWeeklyLeaderboard(r.Context(), sessionID)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, stats)
}
