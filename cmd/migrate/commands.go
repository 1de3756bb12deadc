package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/erp/settlement/internal/infrastructure/migration"
	"github.com/erp/settlement/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newUpCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withMigrator(func(m *migration.Migrator) error {
				return m.Up()
			})
		},
	}
}

func newDownCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withMigrator(func(m *migration.Migrator) error {
				return m.Down()
			})
		},
	}
}

func newStepsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "steps <n>",
		Short: "Apply n migrations (negative rolls back)",
		Long:  "Pass negative counts after --, e.g. migrate steps -- -1",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return opts.withMigrator(func(m *migration.Migrator) error {
				return m.Steps(n)
			})
		},
	}
}

func newGotoCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "goto <version>",
		Short: "Migrate up or down to a specific version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return opts.withMigrator(func(m *migration.Migrator) error {
				return m.GoTo(uint(version))
			})
		},
	}
}

func newVersionCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withMigrator(func(m *migration.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no migrations applied")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	}
}

func newForceCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Long:  "Clears the dirty flag after a failed migration has been repaired by hand.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			opts.log.Warn("Forcing migration version", zap.Int("version", version))
			return opts.withMigrator(func(m *migration.Migrator) error {
				return m.Force(version)
			})
		},
	}
}

func newCreateCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create a new up/down migration pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := opts.migrationsDir()
			if err != nil {
				return err
			}
			description := ""
			if len(args) == 2 {
				description = args[1]
			}

			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mf.UpPath)
			fmt.Fprintln(cmd.OutOrStdout(), mf.DownPath)
			return nil
		},
	}
}

func newListCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := migration.ListMigrations(opts.migrationsFS())
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no migrations found")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newSeedAccountsCmd(opts *cliOptions) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "seed-accounts",
		Short: "Create a tenant's receivable, revenue and cash accounts",
		Long:  "Idempotent: an existing mapping is left untouched and printed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil || tenantID == uuid.Nil {
				return fmt.Errorf("invalid tenant ID %q", tenant)
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			db, err := persistence.NewDatabase(&cfg.Database, opts.log, 0)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			mapping, err := persistence.NewGormAccountRepository(db.DB).SeedAccounts(ctx, tenantID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tenant              %s\n", mapping.TenantID)
			fmt.Fprintf(out, "accounts_receivable %s\n", mapping.AccountsReceivable)
			fmt.Fprintf(out, "sales_revenue       %s\n", mapping.SalesRevenue)
			fmt.Fprintf(out, "cash                %s\n", mapping.Cash)
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant ID (UUID)")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
