package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balkashynov/doit/internal/happy"
)

var happyCmd = &cobra.Command{
	Use:   "happy",
	Short: "Accountability emails",
}

var happyRunCmd = &cobra.Command{
	Use:   "run <job>",
	Short: "Run one scheduled email job for every opted-in user",
	Long: fmt.Sprintf(`Run one scheduled job. Jobs: %s.

Each job checks the user's local time itself, so run it hourly from cron:
  0 * * * * doit happy run morning`, strings.Join(happy.ScheduledJobs, ", ")),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := happy.ValidJob(args[0]); err != nil {
			return err
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		runner, err := newRunner(cmd.Context(), st)
		if err != nil {
			return err
		}
		report, err := runner.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d users, %d sent, %d skipped, %d failed\n",
			args[0], report.Users, report.Sent, report.Skipped, report.Failed)
		if report.Failed > 0 {
			return fmt.Errorf("%d emails failed", report.Failed)
		}
		return nil
	},
}

func init() {
	happyCmd.AddCommand(happyRunCmd)
}
