package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/erp/settlement/internal/infrastructure/config"
	"github.com/erp/settlement/internal/infrastructure/logger"
	"github.com/erp/settlement/internal/infrastructure/migration"
	"github.com/erp/settlement/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultMigrationsDir = "migrations"

// cliOptions holds the persistent flags shared by every subcommand
type cliOptions struct {
	path       string
	configFile string
	logLevel   string

	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Settlement database migration tool",
		Long: "Applies the settlement schema migrations and seeds tenant ledger accounts.\n" +
			"Migrations are read from --path when set, otherwise from the copy embedded in the binary.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(&logger.Config{
				Level:      opts.logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = logger.Sync(opts.log)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.path, "path", "", "migrations directory (default: embedded migrations)")
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: config.toml lookup)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	cmd.AddCommand(newUpCmd(opts))
	cmd.AddCommand(newDownCmd(opts))
	cmd.AddCommand(newStepsCmd(opts))
	cmd.AddCommand(newGotoCmd(opts))
	cmd.AddCommand(newVersionCmd(opts))
	cmd.AddCommand(newForceCmd(opts))
	cmd.AddCommand(newCreateCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newSeedAccountsCmd(opts))
	return cmd
}

func (o *cliOptions) loadConfig() (*config.Config, error) {
	if o.configFile != "" {
		return config.LoadFile(o.configFile)
	}
	return config.Load()
}

// migrationsFS returns the directory given by --path, or the embedded migrations
func (o *cliOptions) migrationsFS() fs.FS {
	if o.path != "" {
		return os.DirFS(o.path)
	}
	return migrations.FS
}

// migrationsDir is where create writes new files
func (o *cliOptions) migrationsDir() (string, error) {
	dir := o.path
	if dir == "" {
		dir = defaultMigrationsDir
	}
	return filepath.Abs(dir)
}

// withMigrator opens the database, runs fn and closes everything
func (o *cliOptions) withMigrator(fn func(m *migration.Migrator) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	var m *migration.Migrator
	if o.path != "" {
		dir, err := filepath.Abs(o.path)
		if err != nil {
			return err
		}
		m, err = migration.New(db, dir, o.log)
		if err != nil {
			return err
		}
	} else {
		m, err = migration.NewFromFS(db, migrations.FS, o.log)
		if err != nil {
			return err
		}
	}
	defer func() {
		if err := m.Close(); err != nil {
			o.log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	return fn(m)
}
