package admin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/logging"
	"github.com/myrjola/casebook/internal/repositories"
	"github.com/myrjola/casebook/internal/sqlite"
	"github.com/spf13/cobra"
)

var Group = &cobra.Group{
	ID:    "admin",
	Title: "Administration",
}

const defaultSQLiteURL = "./casebook.sqlite"

var (
	sqliteURL string
	sessionID string
	playerID  string
)

func init() {
	for _, cmd := range []*cobra.Command{Stats, Reset} {
		cmd.Flags().StringVar(&sqliteURL, "sqlite-url", "",
			"SQLite database URL, defaults to $CASEBOOK_SQLITE_URL or "+defaultSQLiteURL)
		cmd.Flags().StringVar(&sessionID, "session", "", "game session id")
	}
	Reset.Flags().StringVar(&playerID, "player", "", "reset only the progress of this player")
	_ = Reset.MarkFlagRequired("session")
}

var Stats = &cobra.Command{
	Use:     "stats",
	GroupID: "admin",
	Short:   "Show accusation statistics",
	Long:    "Lists the accusation counters of every case, optionally limited to one game session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger(cmd.ErrOrStderr())
		db, err := openDatabase(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer closeDatabase(cmd.Context(), db, logger)
		return listStats(cmd.Context(), cmd.OutOrStdout(), repositories.NewStatsRepository(db, logger), sessionID)
	},
}

var Reset = &cobra.Command{
	Use:     "reset",
	GroupID: "admin",
	Short:   "Reset a game session",
	Long: "Deletes the daily and weekly progress of a player when --player is given, " +
		"otherwise the accusation statistics of the whole game session",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger(cmd.ErrOrStderr())
		db, err := openDatabase(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer closeDatabase(cmd.Context(), db, logger)
		return reset(cmd.Context(), cmd.OutOrStdout(), db, logger, sessionID, playerID)
	},
}

func newLogger(logSink io.Writer) *slog.Logger {
	return slog.New(logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))
}

func openDatabase(ctx context.Context, logger *slog.Logger) (*sqlite.Database, error) {
	url := sqliteURL
	if url == "" {
		url = os.Getenv("CASEBOOK_SQLITE_URL")
	}
	if url == "" {
		url = defaultSQLiteURL
	}
	db, err := sqlite.NewDatabase(ctx, url, logger)
	if err != nil {
		return nil, errors.Wrap(err, "open database", slog.String("url", url))
	}
	return db, nil
}

func closeDatabase(ctx context.Context, db *sqlite.Database, logger *slog.Logger) {
	if err := db.Close(); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(err))
	}
}

type statsLister interface {
	List(ctx context.Context, sessionID string) ([]repositories.CaseStats, error)
}

func listStats(ctx context.Context, out io.Writer, repo statsLister, sessionID string) error {
	stats, err := repo.List(ctx, sessionID)
	if err != nil {
		return errors.Wrap(err, "list stats")
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0) //nolint:mnd // column padding
	_, _ = fmt.Fprintln(tw, "SESSION\tCASE\tACCUSATIONS\tSOLVED")
	for _, s := range stats {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", s.SessionID, s.CaseID, s.TotalAccusations, s.SolvedCount)
	}
	if err = tw.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return nil
}

func reset(
	ctx context.Context,
	out io.Writer,
	db *sqlite.Database,
	logger *slog.Logger,
	sessionID string,
	playerID string,
) error {
	if playerID == "" {
		if err := repositories.NewStatsRepository(db, logger).ResetSession(ctx, sessionID); err != nil {
			return errors.Wrap(err, "reset session stats")
		}
		_, _ = fmt.Fprintf(out, "reset statistics of session %s\n", sessionID)
		return nil
	}
	if err := repositories.NewProgressRepository(db, logger).Reset(ctx, sessionID, playerID); err != nil {
		return errors.Wrap(err, "reset daily progress")
	}
	if err := repositories.NewWeeklyProgressRepository(db, logger).Reset(ctx, sessionID, playerID); err != nil {
		return errors.Wrap(err, "reset weekly progress")
	}
	_, _ = fmt.Fprintf(out, "reset progress of player %s in session %s\n", playerID, sessionID)
	return nil
}
