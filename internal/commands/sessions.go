package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balkashynov/doit/internal/auth"
	"github.com/balkashynov/doit/internal/logging"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage login sessions",
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired sessions once",
	Long: `Delete every session whose expiry has passed. Expired sessions are
already ignored on lookup; this only reclaims the rows. Suitable for cron.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := auth.NewSweeper(st, 0, logging.Component(logger, "sweeper")).Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🧹 Deleted %d expired sessions\n", n)
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sweepCmd)
}
