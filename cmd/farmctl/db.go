package main

import (
	"fmt"

	"github.com/aussiebroadwan/farmstead/internal/farm/service"
	"github.com/aussiebroadwan/farmstead/internal/farm/store/drivers/sqlite"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	var dbFile string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sqlite.NewStore(sqlite.DSN(dbFile))
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.ApplyMigrations(); err != nil {
				return err
			}
			version, dirty, err := st.MigrationVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dirty=%t)\n", version, dirty)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbFile, "db", defaultDatabaseFile(), "SQLite database file")
	return cmd
}

func newSweepCommand() *cobra.Command {
	var dbFile string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Mark pending invitations past their expiry as expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := sqlite.NewStore(sqlite.DSN(dbFile))
			if err != nil {
				return err
			}
			defer st.Close()

			invitations := &service.InvitationService{Store: st}
			n, err := invitations.SweepExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired %d invitation(s)\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbFile, "db", defaultDatabaseFile(), "SQLite database file")
	return cmd
}
