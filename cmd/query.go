package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var queryWait bool

var queryCmd = &cobra.Command{
	Use:   "query [id...]",
	Short: "Answer membership for identifiers against the set",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSet(); err != nil {
			return err
		}
		s, err := newSession()
		if err != nil {
			return err
		}
		run, err := s.load(cmd.Context(), setPath)
		if err != nil {
			return err
		}
		if queryWait {
			if err := newProgressPrinter(cmd.ErrOrStderr(), setPath).watch(run); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		for _, id := range args {
			r := s.svc.Search(strings.TrimSpace(id))
			_, _ = fmt.Fprintf(out, "%s\t%s\n", r.ID, s.labels.Label(r.Outcome))
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().BoolVar(&queryWait, "wait", true, "Wait for the set to finish loading before answering")
	rootCmd.AddCommand(queryCmd)
}
