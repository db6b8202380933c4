package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/justinas/nosurf"
	"github.com/myrjola/casebook/internal/contexthelpers"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/logging"
)

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'none';")
		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-XSS-Protection", "0")

		next.ServeHTTP(w, r)
	})
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			proto  = r.Proto
			method = r.Method
			uri    = r.URL.RequestURI()
		)

		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "received request",
			slog.String("proto", proto), slog.String("method", method), slog.String("uri", uri))

		next.ServeHTTP(w, r)
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, errors.New("panic", slog.String("recovered", fmt.Sprint(err))))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// identifyPlayer resolves the acting player. A player id given by the hosting platform in a header wins. Otherwise
// the id is kept in the session cookie and a new anonymous player id is generated on the first visit.
func (app *application) identifyPlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		playerID := r.Header.Get(playerIDHeader)
		if len(playerID) > maxPlayerIDLength {
			app.badRequest(w, r, "player id too long")
			return
		}
		if playerID == "" {
			playerID = app.sessionManager.GetString(ctx, string(playerIDSessionKey))
		}
		if playerID == "" {
			playerID = uuid.NewString()
			app.sessionManager.Put(ctx, string(playerIDSessionKey), playerID)
		}
		sessionID := r.PathValue("sessionID")
		r = contexthelpers.SetPlayerID(r, playerID)
		r = contexthelpers.SetSessionID(r, sessionID)
		if sessionID != "" {
			r = r.WithContext(logging.WithPlayer(r.Context(), sessionID, playerID))
		} else {
			r = r.WithContext(logging.WithAttrs(r.Context(), slog.String("player_id", playerID)))
		}
		next.ServeHTTP(w, r)
	})
}

func commonContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = contexthelpers.SetCSRFToken(r, nosurf.Token(r))
		next.ServeHTTP(w, r)
	})
}

// noSurf implements CSRF protection using https://github.com/justinas/nosurf
func (app *application) noSurf(next http.Handler) http.Handler {
	csrfHandler := nosurf.New(next)
	csrfHandler.SetBaseCookie(http.Cookie{
		HttpOnly: true,
		Path:     "/",
		Secure:   true,
	})
	csrfHandler.SetFailureHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.logger.LogAttrs(r.Context(), slog.LevelWarn, "csrf validation failed",
			slog.String("reason", fmt.Sprint(nosurf.Reason(r))))
		app.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid csrf token"})
	}))

	return csrfHandler
}
