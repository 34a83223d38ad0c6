package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

func Open(dsn string) (*sql.DB, error) {
	d, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	d.SetMaxOpenConns(10)
	d.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.PingContext(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// EnsureSchema creates the two tables if missing. The FK on
// users.company_id is what turns a delete of a referenced company
// into a constraint violation instead of silently orphaning users.
func EnsureSchema(ctx context.Context, d *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id        bigserial PRIMARY KEY,
			name      text NOT NULL,
			address   text NOT NULL,
			latitude  double precision,
			longitude double precision
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id            bigserial PRIMARY KEY,
			first_name    text NOT NULL,
			last_name     text NOT NULL,
			email         text NOT NULL,
			designation   text,
			date_of_birth text,
			active        boolean NOT NULL DEFAULT true,
			company_id    bigint REFERENCES companies(id)
		)`,
	}
	for _, s := range stmts {
		if _, err := d.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
