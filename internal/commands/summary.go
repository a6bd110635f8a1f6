package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/fiscal/internal/model"
	"github.com/cleared-dev/fiscal/internal/summary"
)

func newSummaryCommand(g *globals) *cobra.Command {
	var from, to string
	var year int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Compute the period summary as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			var w model.DateWindow
			switch {
			case year != 0:
				w = model.FiscalYearWindow(year)
			case from != "" && to != "":
				if w, err = parseWindow(from, to); err != nil {
					return err
				}
			default:
				return fmt.Errorf("give --year or both --from and --to")
			}

			recs, err := p.records().Load(w)
			if err != nil {
				return err
			}
			svc, err := p.ledgerService()
			if err != nil {
				return err
			}
			assets, rejected, err := svc.Ledger().Assets(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := svc.Ledger().Entries(cmd.Context())
			if err != nil {
				return err
			}

			s := summary.Summarize(summary.Input{
				Company:     p.cfg.Company(),
				Window:      w,
				Rates:       p.classes,
				Rejected:    rejected,
				Sales:       recs.Sales,
				Purchases:   recs.Purchases,
				Dividends:   recs.Dividends,
				Assets:      assets,
				Entries:     entries,
				Remittances: recs.Remittances,
			})
			if len(s.Errors) > 0 {
				p.log.Warn("summary skipped records", zap.Int("errors", len(s.Errors)), zap.Stringer("window", w))
			}

			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding summary: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "window start YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "window end YYYY-MM-DD")
	cmd.Flags().IntVar(&year, "year", 0, "whole fiscal year (instead of --from/--to)")
	cmd.MarkFlagsMutuallyExclusive("year", "from")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}
