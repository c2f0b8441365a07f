package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	tableRecords = "records"
)

// DB is a sqlite archive of run trajectories.
type DB struct {
	Path string

	db *sql.DB
}

// Open opens the archive at path, creating it if needed.
func Open(path string) (*DB, error) {
	d := &DB{Path: path}
	var err error
	d.db, err = sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}

	if err := prepareDB(d.db); err != nil {
		d.db.Close()
		return nil, errors.Wrap(err, "")
	}
	return d, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func prepareDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sqlStr := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (run TEXT, iter INTEGER, re REAL, im REAL, variance REAL, PRIMARY KEY (run, iter)) STRICT`, tableRecords)
	if _, err := db.ExecContext(ctx, sqlStr); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Archive stores all records of lg, replacing any previously archived run of
// the same name.
func (d *DB) Archive(lg *Log) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer tx.Rollback()

	sqlStr := fmt.Sprintf(`DELETE FROM %s WHERE run=?`, tableRecords)
	if _, err := tx.ExecContext(ctx, sqlStr, lg.Name); err != nil {
		return errors.Wrap(err, "")
	}

	sqlStr = fmt.Sprintf(`INSERT INTO %s (run, iter, re, im, variance) VALUES (?, ?, ?, ?, ?)`, tableRecords)
	for _, r := range lg.Records {
		if _, err := tx.ExecContext(ctx, sqlStr, lg.Name, r.Iter, real(r.Energy), imag(r.Energy), r.Variance); err != nil {
			return errors.Wrap(err, fmt.Sprintf("%s %d", lg.Name, r.Iter))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Load returns the named run's records ordered by iteration.
func (d *DB) Load(name string) (*Log, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT iter, re, im, variance FROM %s WHERE run=? ORDER BY iter`, tableRecords)
	rows, err := d.db.QueryContext(ctx, sqlStr, name)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	lg := New(name)
	for rows.Next() {
		var iter int
		var re, im, variance float64
		if err := rows.Scan(&iter, &re, &im, &variance); err != nil {
			return nil, errors.Wrap(err, "")
		}
		lg.Append(iter, complex(re, im), variance)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return lg, nil
}

// Runs lists the archived run names.
func (d *DB) Runs() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	sqlStr := fmt.Sprintf(`SELECT DISTINCT run FROM %s ORDER BY run`, tableRecords)
	rows, err := d.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return names, nil
}
