package repositories

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/models"
	"github.com/myrjola/casebook/internal/sqlite"
)

// StatsRepository keeps the shared accusation counters of each case within a session.
type StatsRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewStatsRepository(db *sqlite.Database, logger *slog.Logger) *StatsRepository {
	return &StatsRepository{
		db:     db,
		logger: logger.With("source", "StatsRepository"),
	}
}

// RecordAccusation increments the counters for one first-time accusation.
func (r *StatsRepository) RecordAccusation(
	ctx context.Context,
	sessionID, caseID, suspectID string,
	correct bool,
) error {
	attrs := []slog.Attr{
		slog.String("session_id", sessionID),
		slog.String("case_id", caseID),
		slog.String("suspect_id", suspectID),
	}
	tx, err := r.db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return storageError(err, "begin transaction", attrs...)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(rbErr))
		}
	}()

	solved := 0
	if correct {
		solved = 1
	}
	stmt := `INSERT INTO case_stats (session_id, case_id, total_accusations, solved_count)
VALUES (:session_id, :case_id, 1, :solved)
ON CONFLICT (session_id, case_id) DO UPDATE SET total_accusations = total_accusations + 1,
                                                solved_count      = solved_count + :solved`
	if _, err = tx.ExecContext(ctx, stmt,
		sql.Named("session_id", sessionID), sql.Named("case_id", caseID), sql.Named("solved", solved)); err != nil {
		return storageError(err, "increment case stats", attrs...)
	}

	stmt = `INSERT INTO suspect_accusations (session_id, case_id, suspect_id, count)
VALUES (?, ?, ?, 1)
ON CONFLICT (session_id, case_id, suspect_id) DO UPDATE SET count = count + 1`
	if _, err = tx.ExecContext(ctx, stmt, sessionID, caseID, suspectID); err != nil {
		return storageError(err, "increment suspect accusations", attrs...)
	}

	if err = tx.Commit(); err != nil {
		return storageError(err, "commit transaction", attrs...)
	}
	return nil
}

type suspectCount struct {
	SuspectID string `db:"suspect_id"`
	Count     int    `db:"count"`
}

// Counters returns the accusation counters of the case. A case without accusations has zero counters.
func (r *StatsRepository) Counters(ctx context.Context, sessionID, caseID string) (models.AccusationCounters, error) {
	counters := models.AccusationCounters{BySuspect: map[string]int{}}
	attrs := []slog.Attr{slog.String("session_id", sessionID), slog.String("case_id", caseID)}

	// Read both tables from the same snapshot.
	tx, err := r.db.ReadOnly.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return counters, storageError(err, "begin transaction", attrs...)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(rbErr))
		}
	}()

	var totals struct {
		TotalAccusations int `db:"total_accusations"`
		SolvedCount      int `db:"solved_count"`
	}
	err = tx.GetContext(ctx, &totals, `SELECT total_accusations, solved_count FROM case_stats
WHERE session_id = ? AND case_id = ?`, sessionID, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return counters, nil
	}
	if err != nil {
		return counters, storageError(err, "select case stats", attrs...)
	}
	counters.TotalAccusations = totals.TotalAccusations
	counters.SolvedCount = totals.SolvedCount

	var bySuspect []suspectCount
	if err = tx.SelectContext(ctx, &bySuspect, `SELECT suspect_id, count FROM suspect_accusations
WHERE session_id = ? AND case_id = ?`, sessionID, caseID); err != nil {
		return counters, storageError(err, "select suspect accusations", attrs...)
	}
	for _, s := range bySuspect {
		counters.BySuspect[s.SuspectID] = s.Count
	}
	return counters, nil
}

// CaseStats is one row of the stats overview.
type CaseStats struct {
	SessionID        string `db:"session_id"`
	CaseID           string `db:"case_id"`
	TotalAccusations int    `db:"total_accusations"`
	SolvedCount      int    `db:"solved_count"`
}

// List returns the counters of every case, optionally filtered by session.
func (r *StatsRepository) List(ctx context.Context, sessionID string) ([]CaseStats, error) {
	var (
		stats []CaseStats
		err   error
	)
	stmt := `SELECT session_id, case_id, total_accusations, solved_count
FROM case_stats
WHERE :session_id = '' OR session_id = :session_id
ORDER BY session_id, case_id`
	var query string
	var args []any
	if query, args, err = sqlx.Named(stmt, map[string]any{"session_id": sessionID}); err != nil {
		return nil, errors.Wrap(err, "bind named query")
	}
	if err = r.db.ReadOnly.SelectContext(ctx, &stats, r.db.ReadOnly.Rebind(query), args...); err != nil {
		return nil, storageError(err, "select case stats", slog.String("session_id", sessionID))
	}
	return stats, nil
}

// ResetSession deletes the counters of every case in the session.
func (r *StatsRepository) ResetSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM case_stats WHERE session_id = ?`, sessionID); err != nil {
		return storageError(err, "delete case stats", slog.String("session_id", sessionID))
	}
	return nil
}
