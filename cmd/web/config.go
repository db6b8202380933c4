package main

import (
	"time"

	"github.com/myrjola/casebook/internal/content"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/envstruct"
)

type config struct {
	// Addr is the address the server listens on. Use port 0 for a random port.
	Addr string `env:"CASEBOOK_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the path to the SQLite database or ":memory:".
	SqliteURL string `env:"CASEBOOK_SQLITE_URL" envDefault:"./casebook.sqlite"`
	// ContentDir replaces the embedded corpus with the *.yaml files of a directory.
	ContentDir string `env:"CASEBOOK_CONTENT_DIR" envDefault:""`
	// DailyCase pins the daily case. The cases rotate by calendar day when empty.
	DailyCase string `env:"CASEBOOK_DAILY_CASE" envDefault:""`
	// WeeklyCase pins the weekly case. The weekly cases rotate by ISO week when empty.
	WeeklyCase string `env:"CASEBOOK_WEEKLY_CASE" envDefault:""`
	// TimeZone defines the calendar days chapters unlock on.
	TimeZone string `env:"CASEBOOK_TIMEZONE" envDefault:"UTC"`
	// PprofPort enables the pprof server on the loopback interface.
	PprofPort       string        `env:"CASEBOOK_PPROF_PORT" envDefault:""`
	SessionLifetime time.Duration `env:"CASEBOOK_SESSION_LIFETIME" envDefault:"720h"`
	RequestTimeout  time.Duration `env:"CASEBOOK_REQUEST_TIMEOUT" envDefault:"5s"`
}

func loadConfig(lookupEnv func(string) (string, bool)) (config, error) {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return cfg, errors.Wrap(err, "populate config")
	}
	return cfg, nil
}

func (c config) location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, errors.Wrap(err, "load time zone")
	}
	return loc, nil
}

func (c config) selectors(loc *time.Location) (content.Selector, content.Selector) {
	var daily, weekly content.Selector = content.DailyRotation{Location: loc}, content.ISOWeekRotation{Location: loc}
	if c.DailyCase != "" {
		daily = content.FixedSelector(c.DailyCase)
	}
	if c.WeeklyCase != "" {
		weekly = content.FixedSelector(c.WeeklyCase)
	}
	return daily, weekly
}
