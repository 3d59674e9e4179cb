package cmd

import (
	"fmt"

	"github.com/foxseedlab/callinterview/internal/interview"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

var refreshResponseIDs []string

func init() {
	fetchTranscriptsCmd.Flags().StringSliceVarP(&refreshResponseIDs, "response-id", "r", nil, "refresh only these responses (repeatable)")
}

var fetchTranscriptsCmd = &cobra.Command{
	Use:   "fetch-transcripts",
	Short: "Fetch transcripts that are still pending",
	Long: `Fetch transcripts that are still pending.

Without --response-id every pending response with a recording is fetched again,
the same sweep the server runs on TRANSCRIPT_SWEEP_SCHEDULE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		injector, err := newInjector()
		if err != nil {
			return err
		}
		engine, err := do.Invoke[*interview.Engine](injector)
		if err != nil {
			return err
		}
		defer engine.Wait()

		out := cmd.OutOrStdout()
		if len(refreshResponseIDs) == 0 {
			report, err := engine.SweepPendingTranscripts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "checked %d: %d completed, %d failed, %d still pending\n",
				report.Checked, report.Completed, report.Failed, report.Pending)
			return nil
		}

		for _, id := range refreshResponseIDs {
			resp, res, err := engine.RefreshTranscript(cmd.Context(), id)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, err)
				continue
			}
			fmt.Fprintf(out, "%s\t%s\t%d attempts\n", id, resp.TranscriptStatus, res.Attempts)
		}
		return nil
	},
}
