package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/subcommands"
	_ "github.com/lib/pq"
	"github.com/maia/backend/internal/infrastructure/config"
	"github.com/maia/backend/internal/infrastructure/logger"
	"github.com/maia/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const (
	defaultMigrationsPath = "migrations"
	pingTimeout           = 5 * time.Second
)

// common holds the flags every subcommand accepts
type common struct {
	path     string
	logLevel string
}

func (c *common) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.path, "path", "", "Path to the migrations directory (default: ./migrations)")
	f.StringVar(&c.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func (c *common) migrationsPath() string {
	if c.path != "" {
		return c.path
	}
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return defaultMigrationsPath
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return defaultMigrationsPath
}

func (c *common) newLogger() *zap.Logger {
	log, err := logger.New(&logger.Config{
		Level:      c.logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// withMigrator opens the configured database and runs fn against it
func (c *common) withMigrator(fn func(*migration.Migrator) error) subcommands.ExitStatus {
	log := c.newLogger()
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load configuration", zap.Error(err))
		return subcommands.ExitFailure
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to open database", zap.Error(err))
		return subcommands.ExitFailure
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping database", zap.Error(err))
		return subcommands.ExitFailure
	}

	m, err := migration.New(db, c.migrationsPath(), log)
	if err != nil {
		log.Error("Failed to open migrator", zap.Error(err))
		return subcommands.ExitFailure
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	if err := fn(m); err != nil {
		log.Error("Migration failed", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func intArg(f *flag.FlagSet, name string) (int, bool) {
	if f.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one %s argument\n", name)
		return 0, false
	}
	n, err := strconv.Atoi(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s must be an integer: %v\n", name, err)
		return 0, false
	}
	return n, true
}

type upCmd struct{ common }

func (*upCmd) Name() string     { return "up" }
func (*upCmd) Synopsis() string { return "apply all pending migrations" }
func (*upCmd) Usage() string    { return "migrate up [-path <dir>]\n" }

func (c *upCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *upCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.withMigrator(func(m *migration.Migrator) error { return m.Up() })
}

type downCmd struct{ common }

func (*downCmd) Name() string     { return "down" }
func (*downCmd) Synopsis() string { return "roll back every applied migration" }
func (*downCmd) Usage() string    { return "migrate down [-path <dir>]\n" }

func (c *downCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *downCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.withMigrator(func(m *migration.Migrator) error { return m.Down() })
}

type stepsCmd struct{ common }

func (*stepsCmd) Name() string     { return "steps" }
func (*stepsCmd) Synopsis() string { return "apply (n > 0) or roll back (n < 0) n migrations" }
func (*stepsCmd) Usage() string    { return "migrate steps <n>\n" }

func (c *stepsCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *stepsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	n, ok := intArg(f, "n")
	if !ok || n == 0 {
		return subcommands.ExitUsageError
	}
	return c.withMigrator(func(m *migration.Migrator) error { return m.Steps(n) })
}

type gotoCmd struct{ common }

func (*gotoCmd) Name() string     { return "goto" }
func (*gotoCmd) Synopsis() string { return "migrate up or down to a specific version" }
func (*gotoCmd) Usage() string    { return "migrate goto <version>\n" }

func (c *gotoCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *gotoCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, ok := intArg(f, "version")
	if !ok || v < 0 {
		return subcommands.ExitUsageError
	}
	return c.withMigrator(func(m *migration.Migrator) error { return m.GoTo(uint(v)) })
}

type versionCmd struct{ common }

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "print the applied schema version" }
func (*versionCmd) Usage() string    { return "migrate version\n" }

func (c *versionCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.withMigrator(func(m *migration.Migrator) error {
		status, err := m.Status()
		if err != nil {
			return err
		}
		switch {
		case status.Pristine:
			fmt.Println("No migrations applied")
		case status.Dirty:
			fmt.Printf("Version %d (dirty, fix the schema and run force)\n", status.Version)
		default:
			fmt.Printf("Version %d\n", status.Version)
		}
		return nil
	})
}

type forceCmd struct{ common }

func (*forceCmd) Name() string     { return "force" }
func (*forceCmd) Synopsis() string { return "mark a version as applied without running it" }
func (*forceCmd) Usage() string    { return "migrate force <version>\n" }

func (c *forceCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *forceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, ok := intArg(f, "version")
	if !ok {
		return subcommands.ExitUsageError
	}
	return c.withMigrator(func(m *migration.Migrator) error { return m.Force(v) })
}

type createCmd struct {
	common
	description string
}

func (*createCmd) Name() string     { return "create" }
func (*createCmd) Synopsis() string { return "write an empty up/down migration pair" }
func (*createCmd) Usage() string    { return "migrate create [-d <description>] <name>\n" }

func (c *createCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.description, "d", "", "Description written into the file header")
}

func (c *createCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expected a migration name")
		return subcommands.ExitUsageError
	}
	mf, err := migration.CreateMigration(c.migrationsPath(), f.Arg(0), c.description)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println("Created", mf.UpPath)
	fmt.Println("Created", mf.DownPath)
	return subcommands.ExitSuccess
}

type listCmd struct{ common }

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "list migration files" }
func (*listCmd) Usage() string    { return "migrate list [-path <dir>]\n" }

func (c *listCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *listCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	names, err := migration.ListMigrations(c.migrationsPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return subcommands.ExitSuccess
}
