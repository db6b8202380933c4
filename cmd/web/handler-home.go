package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/myrjola/casebook/internal/contexthelpers"
	"github.com/myrjola/casebook/internal/logging"
	"github.com/myrjola/casebook/internal/models"
)

// defaultSessionID is the game session of the landing page when no session query parameter is given.
const defaultSessionID = "public"

type homeTemplateData struct {
	BaseTemplateData
	Case           *models.Case
	Progress       models.PlayerProgress
	AccusationPath string
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	playerID := contexthelpers.PlayerID(r.Context())
	r = contexthelpers.SetSessionID(r, sessionID)
	r = r.WithContext(logging.WithAttrs(r.Context(), slog.String("session_id", sessionID)))

	result, err := app.game.Init(r.Context(), sessionID, playerID)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Case:             result.Case,
		Progress:         result.Progress,
		AccusationPath:   fmt.Sprintf("/api/sessions/%s/daily/accusation", url.PathEscape(sessionID)),
	}

	app.render(w, r, http.StatusOK, "home", data)
}
