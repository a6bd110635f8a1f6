package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newClassesCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List depreciation classes and rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CLASS\tRATE\tDESCRIPTION")
			for _, c := range p.classes.All() {
				fmt.Fprintf(w, "%s\t%s%%\t%s\n", c.ID, c.Rate.Shift(2).String(), c.Description)
			}
			return w.Flush()
		},
	}
}
