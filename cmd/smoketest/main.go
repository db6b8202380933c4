package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/myrjola/casebook/internal/e2etest"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/logging"
	"github.com/myrjola/casebook/internal/models"
)

// smokeSessionID keeps the smoke test players out of the public leaderboard.
const smokeSessionID = "smoketest"

type dailyCase struct {
	Case struct {
		ID                string                    `json:"id"`
		CrimeSceneObjects []models.CrimeSceneObject `json:"crimeSceneObjects"`
	} `json:"case"`
}

func TestDailyCase(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	if _, err := client.LandingPage(ctx, smokeSessionID); err != nil {
		return errors.Wrap(err, "landing page")
	}

	var daily dailyCase
	if err := expectOK(client.DoJSON(ctx, http.MethodGet, "/api/sessions/"+smokeSessionID+"/daily", nil, &daily)); err != nil {
		return errors.Wrap(err, "init daily case")
	}
	if len(daily.Case.CrimeSceneObjects) == 0 {
		return errors.New("daily case has no crime scene objects", slog.String("case_id", daily.Case.ID))
	}

	object := daily.Case.CrimeSceneObjects[0]
	path := fmt.Sprintf("/api/sessions/%s/daily/objects/%s/examine", smokeSessionID, object.ID)
	if err := expectOK(client.DoJSON(ctx, http.MethodPost, path, nil, nil)); err != nil {
		return errors.Wrap(err, "examine object", slog.String("object_id", object.ID))
	}

	var stats models.LeaderboardStats
	path = fmt.Sprintf("/api/sessions/%s/daily/leaderboard", smokeSessionID)
	if err := expectOK(client.DoJSON(ctx, http.MethodGet, path, nil, &stats)); err != nil {
		return errors.Wrap(err, "leaderboard")
	}

	path = fmt.Sprintf("/api/sessions/%s/progress", smokeSessionID)
	if status, err := client.DoJSON(ctx, http.MethodDelete, path, nil, nil); err != nil || status != http.StatusNoContent {
		return errors.New("reset progress failed", slog.Int("status", status), errors.SlogError(err))
	}
	return nil
}

func expectOK(status int, err error) error {
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return errors.New("unexpected status", slog.Int("status", status))
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		url      = "https://" + hostname
		client   *e2etest.Client
		err      error
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestDailyCase(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing daily case", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
