package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pressly/goose/v3"
)

const (
	DefaultDir       = "pkg/migrate/migrations"
	DefaultSQLiteDir = "pkg/migrate/migrations_sqlite"
)

//go:embed migrations/*.sql migrations_sqlite/*.sql
var embedded embed.FS

func isSQLite(driver string) bool {
	return driver == "sqlite" || driver == "sqlite3"
}

// Runner applies one migration tree to one database. It holds its own goose
// provider, so runners never share goose's package-level state.
type Runner struct {
	provider *goose.Provider
}

// NewRunner opens the tree for driver. An empty dir uses the migrations
// compiled into the binary; otherwise the SQL files are read from dir.
func NewRunner(db *sql.DB, driver, dir string) (*Runner, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}

	dialect, sub := goose.DialectPostgres, "migrations"
	if isSQLite(driver) {
		dialect, sub = goose.DialectSQLite3, "migrations_sqlite"
	}

	var fsys fs.FS
	if dir != "" {
		fsys = os.DirFS(dir)
	} else {
		var err error
		if fsys, err = fs.Sub(embedded, sub); err != nil {
			return nil, fmt.Errorf("open embedded migrations: %w", err)
		}
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Runner{provider: provider}, nil
}

// Up applies every pending migration.
func (r *Runner) Up(ctx context.Context) ([]*goose.MigrationResult, error) {
	res, err := r.provider.Up(ctx)
	if err != nil {
		return res, fmt.Errorf("goose up: %w", err)
	}
	return res, nil
}

// Down rolls back the most recent migration.
func (r *Runner) Down(ctx context.Context) ([]*goose.MigrationResult, error) {
	res, err := r.provider.Down(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose down: %w", err)
	}
	return []*goose.MigrationResult{res}, nil
}

func (r *Runner) Status(ctx context.Context) ([]*goose.MigrationStatus, error) {
	return r.provider.Status(ctx)
}

func (r *Runner) Version(ctx context.Context) (int64, error) {
	return r.provider.GetDBVersion(ctx)
}

// To moves the schema up or down to version (YYYYMMDDHHMMSS). Migrating to the
// current version is a no-op.
func (r *Runner) To(ctx context.Context, version string) ([]*goose.MigrationResult, error) {
	target, err := strconv.ParseInt(version, 10, 64)
	if err != nil || target < 0 {
		return nil, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", version)
	}

	current, err := r.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current < target:
		res, err := r.provider.UpTo(ctx, target)
		if err != nil {
			return res, fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return res, nil
	case current > target:
		res, err := r.provider.DownTo(ctx, target)
		if err != nil {
			return res, fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return res, nil
	}
	return nil, nil
}
