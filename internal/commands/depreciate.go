package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fiscal/internal/auditlog"
	"github.com/cleared-dev/fiscal/internal/gitops"
)

func newDepreciateCommand(g *globals) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "depreciate",
		Short: "Record a fiscal year's depreciation for every asset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			svc, err := p.ledgerService()
			if err != nil {
				return err
			}
			report, err := svc.Depreciate(cmd.Context(), year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range report.Recorded {
				half := ""
				if e.HalfYear {
					half = " (half-year)"
				}
				fmt.Fprintf(out, "%s  %s%s\n", e.Key(), e.Amount.StringFixed(2), half)
				p.record(auditlog.ActionDepreciate, e.Key(), "recorded "+e.Amount.StringFixed(2)+half)
			}
			for _, s := range report.Skipped {
				fmt.Fprintf(out, "%s  skipped: %s\n", s.AssetID, s.Reason)
			}
			for _, e := range report.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", e)
			}
			fmt.Fprintf(out, "FY%d: %d recorded, total %s\n", year, len(report.Recorded), report.Total().StringFixed(2))

			if len(report.Recorded) > 0 {
				summary := fmt.Sprintf("FY%d, %d entries", year, len(report.Recorded))
				if err := p.finish(cmd.Context(), gitops.PrefixDepreciate, summary); err != nil {
					return err
				}
			}
			if len(report.Errors) > 0 {
				return fmt.Errorf("%d assets failed", len(report.Errors))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", time.Now().Year()-1, "fiscal year to record")
	return cmd
}
