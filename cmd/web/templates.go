package main

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/myrjola/casebook/internal/contexthelpers"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/ui"
)

var templates = template.Must(template.ParseFS(ui.Files, "templates/*.gohtml"))

type BaseTemplateData struct {
	CSRFToken string
}

func newBaseTemplateData(r *http.Request) BaseTemplateData {
	return BaseTemplateData{
		CSRFToken: contexthelpers.CSRFToken(r.Context()),
	}
}

func (app *application) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	buf := new(bytes.Buffer)
	if err := templates.ExecuteTemplate(buf, name, data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template", slog.String("template", name)))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	_, _ = buf.WriteTo(w)
}
