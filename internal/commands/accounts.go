package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAccountsCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the chart of accounts and the option ledger mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(repoDir)
			if err != nil {
				return err
			}

			codes := r.cfg.Codes()
			roles := map[int]string{
				codes.LongCall:     "long call",
				codes.LongPut:      "long put",
				codes.ShortCall:    "short call",
				codes.ShortPut:     "short put",
				codes.RealizedGain: "closing legs",
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTYPE\tPOSTS")
			for _, a := range r.chart.All() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", a.ID, a.Name, a.Type, roles[a.ID])
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")

	return cmd
}
