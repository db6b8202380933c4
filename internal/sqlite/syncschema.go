package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/myrjola/casebook/internal/errors"
	"github.com/myrjola/casebook/internal/random"
)

// schemaObject is a row of sqlite_schema.
type schemaObject struct {
	Type    string         `db:"type"`
	Name    string         `db:"name"`
	TblName string         `db:"tbl_name"`
	SQL     sql.NullString `db:"sql"`
}

// migrateTo ensures that the db schema matches schemaDefinition.
//
// We employ a very simple declarative schema migration that:
//
// 1. Deletes deleted tables,
// 2. Creates new tables,
// 3. Migrates changed tables using 12-step schema migration https://www.sqlite.org/lang_altertable.html#otheralter,
// 4. Recreates indexes, triggers and views from the target schema.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) error {
	var (
		err    error
		target []schemaObject
	)

	// Create schema against a temporary database so that we know what the target looks like.
	if target, err = db.targetSchema(ctx, schemaDefinition); err != nil {
		return errors.Wrap(err, "target schema")
	}

	// Step 1: Disable foreign key validation temporarily. The read-write pool has a single connection so the pragma
	// applies to the transaction below.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign key validation")
	}
	// Step 12: Re-enable foreign key validation.
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(context.WithoutCancel(ctx), "PRAGMA foreign_keys = ON"); fkErr != nil {
			fkErr = errors.Wrap(fkErr, "re-enable foreign key validation")
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to re-enable foreign keys", errors.SlogError(fkErr))
		}
	}()

	// Step 2: Start transaction.
	var tx *sql.Tx
	if tx, err = db.ReadWrite.BeginTx(ctx, nil); err != nil {
		return errors.Wrap(err, "start transaction")
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(rbErr))
		}
	}()

	// Step 3-7 migrate tables.
	if err = db.migrateTables(ctx, tx, target); err != nil {
		return errors.Wrap(err, "migrate tables")
	}

	// Step 8: Recreate indexes and triggers associated with table if needed.
	// Step 9: Recreate views associated with table.
	if err = db.recreateDependents(ctx, tx, target); err != nil {
		return errors.Wrap(err, "recreate indexes, triggers and views")
	}

	// Step 10: Check foreign key constraints.
	if err = foreignKeyCheck(ctx, tx); err != nil {
		return errors.Wrap(err, "foreign key check")
	}

	// Step 11: Commit transaction from step 2.
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	// Step 12: is in defer above.

	return nil
}

// targetSchema returns the sqlite_schema rows that schemaDefinition produces in an empty database.
func (db *Database) targetSchema(ctx context.Context, schemaDefinition string) ([]schemaObject, error) {
	var (
		randomID     string
		dbNameLength uint = 20
		err          error
	)
	if randomID, err = random.Letters(dbNameLength); err != nil {
		return nil, errors.Wrap(err, "generate random ID")
	}
	targetDB, err := sql.Open(driverName, fmt.Sprintf("file:%s?mode=memory&cache=shared", randomID))
	if err != nil {
		return nil, errors.Wrap(err, "open schema target database")
	}
	targetDB.SetMaxOpenConns(1)
	defer func() {
		if closeErr := targetDB.Close(); closeErr != nil {
			closeErr = errors.Wrap(closeErr, "close schema target database")
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target database",
				errors.SlogError(closeErr))
		}
	}()
	if _, err = targetDB.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, errors.Wrap(err, "migrate schema target database")
	}
	var target []schemaObject
	if target, err = querySchema(ctx, targetDB); err != nil {
		return nil, errors.Wrap(err, "query target schema")
	}
	return target, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func querySchema(ctx context.Context, q queryer) ([]schemaObject, error) {
	rows, err := q.QueryContext(ctx, `SELECT type, name, tbl_name, sql FROM sqlite_schema
WHERE name NOT LIKE 'sqlite_%' ORDER BY rowid`)
	if err != nil {
		return nil, errors.Wrap(err, "query sqlite_schema")
	}
	defer rows.Close()
	var objects []schemaObject
	for rows.Next() {
		var o schemaObject
		if err = rows.Scan(&o.Type, &o.Name, &o.TblName, &o.SQL); err != nil {
			return nil, errors.Wrap(err, "scan schema object")
		}
		objects = append(objects, o)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return objects, nil
}

func tables(objects []schemaObject) map[string]schemaObject {
	result := map[string]schemaObject{}
	for _, o := range objects {
		if o.Type == "table" {
			result[o.Name] = o
		}
	}
	return result
}

// migrateTables ensures table schema is synchronized between databases.
func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx, target []schemaObject) error {
	current, err := querySchema(ctx, tx)
	if err != nil {
		return errors.Wrap(err, "query current schema")
	}
	currentTables := tables(current)
	targetTables := tables(target)

	// Drop deleted tables.
	for _, table := range current {
		if _, keep := targetTables[table.Name]; table.Type != "table" || keep {
			continue
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", table.Name))
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q;", table.Name)); err != nil {
			return errors.Wrap(err, "drop table", slog.String("table", table.Name))
		}
	}

	for _, table := range target {
		if table.Type != "table" {
			continue
		}
		existing, exists := currentTables[table.Name]

		// Create new tables.
		if !exists {
			db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("query", table.SQL.String))
			if _, err = tx.ExecContext(ctx, table.SQL.String); err != nil {
				return errors.Wrap(err, "create table", slog.String("table", table.Name))
			}
			continue
		}
		if existing.SQL.String == table.SQL.String {
			continue
		}

		// Identify tables with changed schema and continue the 12-step schema migration with them.
		db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
			slog.String("table", table.Name),
			slog.String("current_sql", existing.SQL.String),
			slog.String("new_sql", table.SQL.String))

		// Step 4: Create tables according to new schema on temporary names.
		tempName := table.Name + "_migration_temp"
		tempNameSQL := strings.Replace(table.SQL.String, table.Name, tempName, 1)
		if _, err = tx.ExecContext(ctx, tempNameSQL); err != nil {
			return errors.Wrap(err, "create new table to temporary name", slog.String("query", tempNameSQL))
		}

		// Step 5: Copy common columns between tables.
		var commonColumns []string
		if commonColumns, err = queryCommonColumns(ctx, tx, table.Name, tempName); err != nil {
			return errors.Wrap(err, "query common columns")
		}
		if len(commonColumns) > 0 {
			common := strings.Join(commonColumns, ", ")
			copySQL := fmt.Sprintf("INSERT INTO %q (%s) SELECT %s FROM %q;", //nolint: gosec // we trust the query.
				tempName, common, common, table.Name)
			db.logger.LogAttrs(ctx, slog.LevelInfo, "copying data", slog.String("query", copySQL))
			if _, err = tx.ExecContext(ctx, copySQL); err != nil {
				return errors.Wrap(err, "copy data")
			}
		}

		// Step 6: Drop the old table.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %q;", table.Name)); err != nil {
			return errors.Wrap(err, "drop old table")
		}

		// Step 7: Rename new table to old table's name.
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %q RENAME TO %q;", tempName, table.Name)); err != nil {
			return errors.Wrap(err, "rename new table")
		}
	}
	return nil
}

// queryCommonColumns returns the quoted names of the columns present in both tables.
func queryCommonColumns(ctx context.Context, tx *sql.Tx, table, other string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT '"' || current.name || '"'
FROM PRAGMA_TABLE_INFO(:table_name) AS current
JOIN PRAGMA_TABLE_INFO(:other_name) AS target ON target.name = current.name;`,
		sql.Named("table_name", table), sql.Named("other_name", other))
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer rows.Close()
	var columns []string
	for rows.Next() {
		var column string
		if err = rows.Scan(&column); err != nil {
			return nil, errors.Wrap(err, "scan column")
		}
		columns = append(columns, column)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows error")
	}
	return columns, nil
}

// recreateDependents drops indexes, triggers and views that differ from the target and creates the missing ones.
func (db *Database) recreateDependents(ctx context.Context, tx *sql.Tx, target []schemaObject) error {
	current, err := querySchema(ctx, tx)
	if err != nil {
		return errors.Wrap(err, "query current schema")
	}
	isDependent := func(o schemaObject) bool {
		// Automatic indexes have no SQL and live and die with their table.
		return o.Type != "table" && o.SQL.Valid
	}
	sameAs := func(objects []schemaObject, o schemaObject) bool {
		return slices.ContainsFunc(objects, func(other schemaObject) bool {
			return other.Type == o.Type && other.Name == o.Name && other.SQL.String == o.SQL.String
		})
	}

	for _, o := range current {
		if !isDependent(o) || sameAs(target, o) {
			continue
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping "+o.Type, slog.String("name", o.Name))
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("DROP %s %q;", strings.ToUpper(o.Type), o.Name)); err != nil {
			return errors.Wrap(err, "drop", slog.String("type", o.Type), slog.String("name", o.Name))
		}
	}
	for _, o := range target {
		if !isDependent(o) || sameAs(current, o) {
			continue
		}
		db.logger.LogAttrs(ctx, slog.LevelInfo, "creating "+o.Type, slog.String("query", o.SQL.String))
		if _, err = tx.ExecContext(ctx, o.SQL.String); err != nil {
			return errors.Wrap(err, "create", slog.String("type", o.Type), slog.String("name", o.Name))
		}
	}
	return nil
}

func foreignKeyCheck(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return errors.Wrap(err, "query")
	}
	defer rows.Close()
	if rows.Next() {
		return errors.New("foreign key violation after migration")
	}
	if err = rows.Err(); err != nil {
		return errors.Wrap(err, "rows error")
	}
	return nil
}
