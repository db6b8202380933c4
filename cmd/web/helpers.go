package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/myrjola/casebook/internal/contexthelpers"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/models"
)

type errorResponse struct {
	Error string `json:"error"`
}

// maxBodyBytes bounds the JSON request bodies which only carry ids.
const maxBodyBytes = 4096

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError,
		errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri), slog.String("msg", msg))
	app.writeJSON(w, r, status, errorResponse{Error: msg})
}

func (app *application) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	app.clientError(w, r, http.StatusBadRequest, msg)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}

// gameError maps the engine error taxonomy to HTTP status codes.
func (app *application) gameError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrContentNotFound):
		app.clientError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrAccusationLocked):
		app.clientError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrStorageUnavailable):
		app.logger.LogAttrs(r.Context(), slog.LevelError, "storage unavailable", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: models.ErrStorageUnavailable.Error()})
	default:
		app.serverError(w, r, err)
	}
}

type accusationRequest struct {
	SuspectID string `json:"suspectId"`
}

// decodeAccusation reads the accused suspect from a JSON body or a submitted form.
func decodeAccusation(r *http.Request) (string, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return r.PostFormValue("suspectId"), nil
	}
	var req accusationRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return "", errors.Wrap(err, "decode accusation")
	}
	return req.SuspectID, nil
}

// player returns the session and player ids resolved by identifyPlayer.
func player(r *http.Request) (string, string) {
	ctx := r.Context()
	return contexthelpers.SessionID(ctx), contexthelpers.PlayerID(ctx)
}
