package content

import (
	"log/slog"
	"slices"
	"time"

	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/models"
)

// Selector picks the active case among the ids of a pool.
type Selector interface {
	Select(ids []string, now time.Time) (string, error)
}

// FixedSelector always selects the case with the given id. It serves single-case deployments.
type FixedSelector string

func (s FixedSelector) Select(ids []string, _ time.Time) (string, error) {
	if !slices.Contains(ids, string(s)) {
		return "", errors.Wrap(models.ErrCaseNotFound, "fixed selector", slog.String("case_id", string(s)))
	}
	return string(s), nil
}

// ISOWeekRotation selects pool[isoWeek % len(pool)] in loc.
//
// Once the pool is exhausted the cases repeat. This is deliberate: the rotation keeps serving content until new
// cases are authored instead of failing.
type ISOWeekRotation struct {
	Location *time.Location
}

func (s ISOWeekRotation) Select(ids []string, now time.Time) (string, error) {
	if len(ids) == 0 {
		return "", errors.Wrap(models.ErrCaseNotFound, "iso week rotation over empty pool")
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	_, week := now.In(loc).ISOWeek()
	return ids[week%len(ids)], nil
}

// DailyRotation selects pool[day % len(pool)] where day counts the calendar days in loc since 1970-01-01.
type DailyRotation struct {
	Location *time.Location
}

func (s DailyRotation) Select(ids []string, now time.Time) (string, error) {
	if len(ids) == 0 {
		return "", errors.Wrap(models.ErrCaseNotFound, "daily rotation over empty pool")
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := now.In(loc).Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / int64((24 * time.Hour).Seconds())
	return ids[int(day%int64(len(ids)))], nil
}
