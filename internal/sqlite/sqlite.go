package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/random"

	_ "embed"

	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
)

//go:embed schema.sql
var schemaDefinition string

const driverName = "sqlite3"

type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
	logger    *slog.Logger
}

// NewDatabase connects to database, synchronizes the schema and starts the hourly optimizer which stops when ctx is
// done.
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	var (
		db  *Database
		err error
	)
	if db, err = connect(url, logger); err != nil {
		return nil, errors.Wrap(err, "connect")
	}

	if err = db.migrateTo(ctx, schemaDefinition); err != nil {
		return nil, errors.Wrap(err, "synchronize schema")
	}

	go db.startDatabaseOptimizer(ctx)

	return db, nil
}

// connect establishes two database connection pools, one for read/write operations and one for read-only
// operations. This is a best practice mentioned in https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995
func connect(url string, logger *slog.Logger) (*Database, error) {
	var (
		err         error
		readWriteDB *sql.DB
		readDB      *sql.DB
	)

	commonConfig := strings.Join([]string{
		// Write-ahead logging enables higher performance and concurrent readers.
		"_journal_mode=wal",
		// Avoids SQLITE_BUSY errors when database is under load.
		"_busy_timeout=5000",
		// Increases performance at the cost of durability https://www.sqlite.org/pragma.html#pragma_synchronous.
		"_synchronous=normal",
		// Enables foreign key constraints.
		"_foreign_keys=on",
	}, "&")

	// The options prefixed with underscore '_' are SQLite pragmas documented at https://www.sqlite.org/pragma.html.
	// The options without leading underscore are SQLite URI parameters documented at https://www.sqlite.org/uri.html.
	if strings.Contains(url, ":memory:") {
		// Every in-memory database gets a random name so that parallel tests don't share data. The database lives
		// as long as the single read-write connection, which also serves reads to avoid shared-cache table locks.
		// See https://www.sqlite.org/inmemorydb.html.
		var (
			randomID     string
			dbNameLength uint = 20
		)
		if randomID, err = random.Letters(dbNameLength); err != nil {
			return nil, errors.Wrap(err, "generate random ID")
		}
		dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_txlock=immediate&%s", randomID, commonConfig)
		if readWriteDB, err = openReadWrite(dsn); err != nil {
			return nil, err
		}
		rw := sqlx.NewDb(readWriteDB, driverName)
		return &Database{ReadWrite: rw, ReadOnly: rw, logger: logger}, nil
	}

	readConfig := fmt.Sprintf("file:%s?mode=ro&_txlock=deferred&_query_only=true&%s", url, commonConfig)
	readWriteConfig := fmt.Sprintf("file:%s?mode=rwc&_txlock=immediate&%s", url, commonConfig)

	if readWriteDB, err = openReadWrite(readWriteConfig); err != nil {
		return nil, err
	}

	if readDB, err = sql.Open(driverName, readConfig); err != nil {
		return nil, errors.Wrap(err, "open read database")
	}

	maxReadConns := 10
	readDB.SetMaxOpenConns(maxReadConns)
	readDB.SetMaxIdleConns(maxReadConns)
	readDB.SetConnMaxLifetime(time.Hour)
	readDB.SetConnMaxIdleTime(time.Hour)

	return &Database{
		ReadWrite: sqlx.NewDb(readWriteDB, driverName),
		ReadOnly:  sqlx.NewDb(readDB, driverName),
		logger:    logger,
	}, nil
}

// openReadWrite opens the single writer connection. SQLite allows one writer at a time so the pool is capped to one
// connection, which also serializes the read-modify-write transactions of the repositories.
func openReadWrite(dsn string) (*sql.DB, error) {
	readWriteDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open read-write database")
	}
	readWriteDB.SetMaxOpenConns(1)
	readWriteDB.SetMaxIdleConns(1)
	readWriteDB.SetConnMaxLifetime(0)
	readWriteDB.SetConnMaxIdleTime(0)
	if err = readWriteDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping read-write database")
	}
	return readWriteDB, nil
}

// Close closes both connection pools.
func (db *Database) Close() error {
	var errs []error
	if db.ReadOnly != db.ReadWrite {
		if err := db.ReadOnly.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "close read database"))
		}
	}
	if err := db.ReadWrite.Close(); err != nil {
		errs = append(errs, errors.Wrap(err, "close read-write database"))
	}
	return errors.Join(errs...)
}
