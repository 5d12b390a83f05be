// Command migrate applies and authors goose migrations.
//
//	go run ./cmd/migrate -cmd up
//	go run ./cmd/migrate -cmd create -name add_indice_despachos
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/medsupply/cotizaciones-api/pkg/config"
	"github.com/medsupply/cotizaciones-api/pkg/db"
	"github.com/medsupply/cotizaciones-api/pkg/logger"
	"github.com/medsupply/cotizaciones-api/pkg/migrate"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := flag.String("cmd", "up", "up|down|status|version|create|validate")
	dir := flag.String("dir", "", "migration dir; empty uses the embedded tree (create/validate: both trees)")
	name := flag.String("name", "", "migration name for -cmd=create")
	version := flag.String("version", "", "target YYYYMMDDHHMMSS for -cmd=version")
	flag.Parse()

	// Authoring commands work on files only.
	switch *cmd {
	case "create":
		if strings.TrimSpace(*name) == "" {
			fmt.Fprintln(os.Stderr, "create needs -name")
			return 2
		}
		paths, err := migrate.CreateSQLMigration(*name, authoringDirs(*dir)...)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			return 1
		}
		for _, p := range paths {
			fmt.Println("created", p)
		}
		return 0
	case "validate":
		if err := migrate.ValidateInSync(authoringDirs(*dir)...); err != nil {
			fmt.Fprintln(os.Stderr, "validate:", err)
			return 1
		}
		fmt.Println("migrations ok")
		return 0
	}

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		return 1
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.LogFormat == "console",
	})

	driver := cfg.DB.Driver
	if cfg.FeatureFlags.UseSQLite {
		driver = "sqlite"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"dir":    *dir,
		"driver": driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to open database", err)
		return 1
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.SQL()
	if err != nil {
		logg.Error(ctx, "failed to unwrap sql.DB", err)
		return 1
	}
	runner, err := migrate.NewRunner(sqlDB, dbClient.Dialect(), *dir)
	if err != nil {
		logg.Error(ctx, "failed to open migrations", err)
		return 1
	}

	var results []*goose.MigrationResult
	switch *cmd {
	case "up":
		results, err = runner.Up(ctx)
	case "down":
		results, err = runner.Down(ctx)
	case "status":
		err = printStatus(ctx, runner)
	case "version":
		if *version == "" {
			fmt.Fprintln(os.Stderr, "version needs -version")
			return 2
		}
		results, err = runner.To(ctx, *version)
	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd:", *cmd)
		return 2
	}
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"version":     res.Source.Version,
			"file":        res.Source.Path,
			"direction":   res.Direction,
			"duration_ms": res.Duration.Milliseconds(),
		}), "migration applied")
	}
	if err != nil {
		logg.Error(ctx, "migration failed", err)
		return 1
	}
	logg.Info(ctx, "migration finished")
	return 0
}

func printStatus(ctx context.Context, runner *migrate.Runner) error {
	statuses, err := runner.Status(ctx)
	if err != nil {
		return err
	}
	for _, st := range statuses {
		applied := "pending"
		if st.State == goose.StateApplied {
			applied = st.AppliedAt.Format(time.RFC3339)
		}
		fmt.Printf("%-25s %s\n", applied, st.Source.Path)
	}
	return nil
}

func authoringDirs(dir string) []string {
	if dir != "" {
		return []string{dir}
	}
	return []string{migrate.DefaultDir, migrate.DefaultSQLiteDir}
}
