package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/riskibarqy/fantasy-racing/db/migrations"
	"github.com/riskibarqy/fantasy-racing/internal/app"
	"github.com/riskibarqy/fantasy-racing/internal/config"
	"github.com/riskibarqy/fantasy-racing/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-racing/internal/platform/logging"
)

var errUsage = errors.New("usage")

type command func(m *migrate.Migrate, logger *logging.Logger, args []string) error

var commands = map[string]command{
	"up":      cmdUp,
	"down":    cmdDown,
	"version": cmdVersion,
	"force":   cmdForce,
	"goto":    cmdGoto,
	"migrate": cmdGoto,
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "fantasy-racing-migration"})

	name := strings.ToLower(strings.TrimSpace(os.Args[1]))
	err = run(cfg, logger, name, os.Args[2:])
	switch {
	case errors.Is(err, errUsage):
		printUsage()
		os.Exit(2)
	case err != nil:
		logger.Error("migration command failed", "command", name, "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg config.Config, logger *logging.Logger, name string, args []string) error {
	dbURL := strings.TrimSpace(cfg.DBURL)
	if dbURL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if name == "seed" {
		return seed(cfg, logger)
	}

	cmd, ok := commands[name]
	if !ok {
		return errUsage
	}

	m, source, err := newMigrator(dbURL)
	if err != nil {
		return err
	}
	defer closeMigrator(m, logger)

	logger.Debug("migration source", "source", source)
	return cmd(m, logger, args)
}

// newMigrator reads migrations from MIGRATIONS_DIR when set, otherwise from
// the copies embedded in the binary.
func newMigrator(dbURL string) (*migrate.Migrate, string, error) {
	if dir := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, "", fmt.Errorf("resolve MIGRATIONS_DIR: %w", err)
		}
		source := "file://" + filepath.ToSlash(abs)
		m, err := migrate.New(source, dbURL)
		if err != nil {
			return nil, "", fmt.Errorf("create migrator: %w", err)
		}
		return m, source, nil
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, "", fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return nil, "", fmt.Errorf("create migrator: %w", err)
	}
	return m, "embedded", nil
}

func seed(cfg config.Config, logger *logging.Logger) error {
	ctx := context.Background()
	db, err := app.OpenPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		return fmt.Errorf("bootstrap seed: %w", err)
	}
	logger.Info("seed data applied")
	return nil
}

func cmdUp(m *migrate.Migrate, logger *logging.Logger, _ []string) error {
	if err := ignoreNoChange(m.Up(), logger); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func cmdDown(m *migrate.Migrate, logger *logging.Logger, args []string) error {
	steps, err := parseSteps(args)
	if err != nil {
		return err
	}
	if err := ignoreNoChange(m.Steps(-steps), logger); err != nil {
		return err
	}
	logger.Info("migrations rolled back", "steps", steps)
	return nil
}

func cmdVersion(m *migrate.Migrate, _ *logging.Logger, _ []string) error {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Println("version: none\ndirty: false")
		return nil
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	}
	fmt.Printf("version: %d\ndirty: %t\n", version, dirty)
	return nil
}

func cmdForce(m *migrate.Migrate, logger *logging.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("force requires a version argument")
	}
	version, err := parseVersion(args[0])
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	logger.Info("migration version forced", "version", version)
	return nil
}

func cmdGoto(m *migrate.Migrate, logger *logging.Logger, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("goto requires a target version argument")
	}
	target, err := parseTarget(args[0])
	if err != nil {
		return err
	}
	if err := ignoreNoChange(m.Migrate(target), logger); err != nil {
		return err
	}
	logger.Info("migrated", "version", target)
	return nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

// parseVersion parses a version for Force, which takes an int.
func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func ignoreNoChange(err error, logger *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func closeMigrator(m *migrate.Migrate, logger *logging.Logger) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source failed", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration db failed", "error", dbErr)
	}
}

func printUsage() {
	bin := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "usage: %s <up|down [n]|version|force <v>|goto <v>|seed>\n", bin)
	fmt.Fprintln(os.Stderr, "migrations are read from MIGRATIONS_DIR when set, otherwise from the binary")
}
