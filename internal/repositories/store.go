package repositories

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/models"
	"github.com/myrjola/casebook/internal/sqlite"
)

// errVersionConflict means that the row changed between read and write.
var errVersionConflict = errors.NewSentinel("version conflict")

const maxUpdateAttempts = 3

// storageError marks err as a storage failure so that callers can detect it with errors.Is.
func storageError(err error, msg string, attrs ...slog.Attr) error {
	return errors.Wrap(fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err), msg, attrs...)
}

// progressRow is a row of the progress and weekly_progress tables.
type progressRow struct {
	CaseID  string `db:"case_id"`
	Data    string `db:"data"`
	Version int64  `db:"version"`
}

// jsonStore persists one JSON encoded progress document per session and player.
type jsonStore[T any] struct {
	db     *sqlite.Database
	table  string
	logger *slog.Logger
	// fresh returns the starting progress for a case.
	fresh func(caseID string) T
	// version exposes the version field of the progress.
	version func(p *T) *int64
	clone   func(p T) T
}

func (s *jsonStore[T]) attrs(sessionID, playerID string) []slog.Attr {
	return []slog.Attr{
		slog.String("table", s.table),
		slog.String("session_id", sessionID),
		slog.String("player_id", playerID),
	}
}

// decode returns the stored progress or fresh progress if the row is for another case.
func (s *jsonStore[T]) decode(row progressRow, caseID string) (T, error) {
	progress := s.fresh(caseID)
	if row.CaseID != caseID {
		// The active case has rotated. The old progress is replaced on the next write.
		*s.version(&progress) = row.Version
		return progress, nil
	}
	if err := json.Unmarshal([]byte(row.Data), &progress); err != nil {
		return progress, errors.Wrap(err, "unmarshal progress")
	}
	*s.version(&progress) = row.Version
	return progress, nil
}

func (s *jsonStore[T]) get(ctx context.Context, sessionID, playerID, caseID string) (T, error) {
	var row progressRow
	stmt := fmt.Sprintf(`SELECT case_id, data, version FROM %s WHERE session_id = ? AND player_id = ?`, s.table)
	err := s.db.ReadOnly.GetContext(ctx, &row, stmt, sessionID, playerID)
	if errors.Is(err, sql.ErrNoRows) {
		return s.fresh(caseID), nil
	}
	if err != nil {
		return s.fresh(caseID), storageError(err, "select progress", s.attrs(sessionID, playerID)...)
	}
	progress, err := s.decode(row, caseID)
	if err != nil {
		return progress, storageError(err, "decode progress", s.attrs(sessionID, playerID)...)
	}
	return progress, nil
}

func (s *jsonStore[T]) save(ctx context.Context, sessionID, playerID, caseID string, progress T) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return errors.Wrap(err, "marshal progress")
	}
	stmt := fmt.Sprintf(`INSERT INTO %s (session_id, player_id, case_id, data)
VALUES (?, ?, ?, ?)
ON CONFLICT (session_id, player_id) DO UPDATE SET case_id = excluded.case_id,
                                                  data    = excluded.data,
                                                  version = version + 1,
                                                  updated = excluded.updated`, s.table)
	if _, err = s.db.ReadWrite.ExecContext(ctx, stmt, sessionID, playerID, caseID, string(data)); err != nil {
		return storageError(err, "upsert progress", s.attrs(sessionID, playerID)...)
	}
	return nil
}

// update runs fn against the current progress inside a write transaction and stores the result. An error from fn
// aborts the update without writing and is returned as is.
func (s *jsonStore[T]) update(
	ctx context.Context,
	sessionID, playerID, caseID string,
	fn func(T) (T, error),
) (T, error) {
	var (
		result T
		err    error
	)
	for range maxUpdateAttempts {
		if result, err = s.tryUpdate(ctx, sessionID, playerID, caseID, fn); !errors.Is(err, errVersionConflict) {
			return result, err
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "retrying progress update", s.attrs(sessionID, playerID)...)
	}
	return result, storageError(err, "update progress", s.attrs(sessionID, playerID)...)
}

func (s *jsonStore[T]) tryUpdate(
	ctx context.Context,
	sessionID, playerID, caseID string,
	fn func(T) (T, error),
) (T, error) {
	var (
		tx      *sqlx.Tx
		row     progressRow
		current T
		next    T
		err     error
	)
	if tx, err = s.db.ReadWrite.BeginTxx(ctx, nil); err != nil {
		return current, storageError(err, "begin transaction", s.attrs(sessionID, playerID)...)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(rbErr))
		}
	}()

	stmt := fmt.Sprintf(`SELECT case_id, data, version FROM %s WHERE session_id = ? AND player_id = ?`, s.table)
	err = tx.GetContext(ctx, &row, stmt, sessionID, playerID)
	exists := true
	switch {
	case errors.Is(err, sql.ErrNoRows):
		exists = false
		current = s.fresh(caseID)
	case err != nil:
		return current, storageError(err, "select progress", s.attrs(sessionID, playerID)...)
	default:
		if current, err = s.decode(row, caseID); err != nil {
			return current, storageError(err, "decode progress", s.attrs(sessionID, playerID)...)
		}
	}

	if next, err = fn(s.clone(current)); err != nil {
		return current, err
	}
	*s.version(&next) = *s.version(&current)

	var (
		before []byte
		after  []byte
	)
	if before, err = json.Marshal(current); err != nil {
		return current, errors.Wrap(err, "marshal current progress")
	}
	if after, err = json.Marshal(next); err != nil {
		return current, errors.Wrap(err, "marshal next progress")
	}
	if (!exists || row.CaseID == caseID) && bytes.Equal(before, after) {
		// Nothing changed so there is nothing to write.
		return next, nil
	}

	version := *s.version(&current)
	*s.version(&next) = version + 1
	if after, err = json.Marshal(next); err != nil {
		return current, errors.Wrap(err, "marshal next progress")
	}

	var res sql.Result
	if exists {
		stmt = fmt.Sprintf(`UPDATE %s
SET case_id = ?, data = ?, version = ?, updated = strftime('%%Y-%%m-%%dT%%H:%%M:%%fZ')
WHERE session_id = ? AND player_id = ? AND version = ?`, s.table)
		res, err = tx.ExecContext(ctx, stmt, caseID, string(after), version+1, sessionID, playerID, version)
	} else {
		stmt = fmt.Sprintf(`INSERT INTO %s (session_id, player_id, case_id, data, version)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT DO NOTHING`, s.table)
		res, err = tx.ExecContext(ctx, stmt, sessionID, playerID, caseID, string(after), version+1)
	}
	if err != nil {
		return current, storageError(err, "write progress", s.attrs(sessionID, playerID)...)
	}
	var affected int64
	if affected, err = res.RowsAffected(); err != nil {
		return current, storageError(err, "rows affected", s.attrs(sessionID, playerID)...)
	}
	if affected != 1 {
		return current, errVersionConflict
	}

	if err = tx.Commit(); err != nil {
		return current, storageError(err, "commit transaction", s.attrs(sessionID, playerID)...)
	}
	return next, nil
}

func (s *jsonStore[T]) reset(ctx context.Context, sessionID, playerID string) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE session_id = ? AND player_id = ?`, s.table)
	if _, err := s.db.ReadWrite.ExecContext(ctx, stmt, sessionID, playerID); err != nil {
		return storageError(err, "delete progress", s.attrs(sessionID, playerID)...)
	}
	return nil
}
