package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	player := alice.New(app.identifyPlayer)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, player.ThenFunc(h))
	}

	mux.HandleFunc("GET /api/healthy", app.healthy)
	handle("GET /{$}", app.home)

	handle("GET /api/sessions/{sessionID}/daily", app.initDaily)
	handle("GET /api/sessions/{sessionID}/daily/progress", app.dailyProgress)
	handle("POST /api/sessions/{sessionID}/daily/clues/{clueID}", app.findClue)
	handle("POST /api/sessions/{sessionID}/daily/objects/{objectID}/examine", app.examineObject)
	handle("GET /api/sessions/{sessionID}/daily/suspects/{suspectID}/dialogue", app.rootDialogueOptions)
	handle("POST /api/sessions/{sessionID}/daily/suspects/{suspectID}/dialogue/{optionID}", app.selectDialogueOption)
	handle("POST /api/sessions/{sessionID}/daily/accusation", app.accuse)
	handle("GET /api/sessions/{sessionID}/daily/leaderboard", app.leaderboard)

	handle("GET /api/sessions/{sessionID}/weekly", app.initWeekly)
	handle("POST /api/sessions/{sessionID}/weekly/chapters/{dayNumber}/complete", app.completeChapter)
	handle("POST /api/sessions/{sessionID}/weekly/clues/{clueID}", app.findWeeklyClue)
	handle("POST /api/sessions/{sessionID}/weekly/objects/{objectID}/examine", app.examineWeeklyObject)
	handle("GET /api/sessions/{sessionID}/weekly/suspects/{suspectID}/dialogue", app.rootWeeklyDialogueOptions)
	handle("POST /api/sessions/{sessionID}/weekly/suspects/{suspectID}/dialogue/{optionID}",
		app.selectWeeklyDialogueOption)
	handle("POST /api/sessions/{sessionID}/weekly/accusation", app.accuseWeekly)
	handle("GET /api/sessions/{sessionID}/weekly/leaderboard", app.weeklyLeaderboard)

	handle("DELETE /api/sessions/{sessionID}/progress", app.resetProgress)

	mux.Handle("/", http.HandlerFunc(app.notFound))

	common := alice.New(
		app.recoverPanic,
		app.logRequest,
		secureHeaders,
		app.noSurf,
		app.sessionManager.LoadAndSave,
		commonContext,
	)
	return timeoutHandler(common.Then(mux), app.requestTimeout)
}
