// Command ledgerctl runs operator tasks directly against the ledger database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/quoteledger/internal/ledger/app"
	"github.com/aussiebroadwan/quoteledger/internal/ledger/store"
)

// operatorActor is recorded as the actor of audited changes made here.
const operatorActor = "system:ledgerctl"

// dbConfig is the subset of the service configuration ledgerctl needs.
type dbConfig struct {
	Driver string `envconfig:"LEDGER_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"LEDGER_DB_DSN" default:"ledger.db"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var db dbConfig

	cmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operate on the quote ledger database",
		Long: `Operator commands for the quote ledger.

Connection settings default to LEDGER_DB_DRIVER and LEDGER_DB_DSN
(read from the environment or a .env file) and can be overridden with flags.

Examples:
  ledgerctl migrate
  ledgerctl credits balance 01J9Z3...
  ledgerctl credits grant 01J9Z3... 5 --reason "support goodwill"
  ledgerctl audit list --target 01J9Z3... --limit 20
  ledgerctl invites prune
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			var env dbConfig
			if err := envconfig.Process("", &env); err != nil {
				return err
			}
			if !cmd.Flags().Changed("driver") {
				db.Driver = env.Driver
			}
			if !cmd.Flags().Changed("dsn") {
				db.DSN = env.DSN
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&db.Driver, "driver", "", "database driver (sqlite, postgres)")
	cmd.PersistentFlags().StringVar(&db.DSN, "dsn", "", "database DSN or SQLite file path")

	open := func() (store.Store, error) {
		return app.OpenStore(app.Config{DBDriver: db.Driver, DBDSN: db.DSN})
	}

	cmd.AddCommand(
		migrateCmd(open),
		creditsCmd(open),
		auditCmd(open),
		invitesCmd(open),
		versionCmd(),
	)
	return cmd
}

type opener func() (store.Store, error)

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.BuildVersion)
		},
	}
}
