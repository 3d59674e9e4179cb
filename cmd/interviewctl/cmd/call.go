package cmd

import (
	"fmt"

	"github.com/foxseedlab/callinterview/internal/interview"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call <phone-number>...",
	Short: "Start an interview call to each number",
	Long: `Start an interview call to each number.

Numbers are normalized the same way as POST /calls: local numbers get the
configured country code, everything else is dialled as given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		injector, err := newInjector()
		if err != nil {
			return err
		}
		initiator, err := do.Invoke[*interview.Initiator](injector)
		if err != nil {
			return err
		}

		failed := 0
		for _, number := range args {
			callID, err := initiator.Start(cmd.Context(), number)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", number, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", number, callID)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d calls failed", failed, len(args))
		}
		return nil
	},
}
