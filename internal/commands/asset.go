package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/fiscal/internal/auditlog"
	"github.com/cleared-dev/fiscal/internal/gitops"
	"github.com/cleared-dev/fiscal/internal/ledger"
	"github.com/cleared-dev/fiscal/internal/model"
	"github.com/cleared-dev/fiscal/internal/taxcalc"
)

func newAssetCommand(g *globals) *cobra.Command {
	assetCmd := &cobra.Command{
		Use:   "asset",
		Short: "Capital asset operations",
	}
	assetCmd.AddCommand(
		newAssetAddCommand(g),
		newAssetListCommand(g),
		newAssetDisposeCommand(g),
		newAssetScheduleCommand(g),
	)
	return assetCmd
}

func newAssetAddCommand(g *globals) *cobra.Command {
	var description, classID, date, amount, taxPaid, fundedBy string
	var exempt bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a capital asset purchase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			acquired, err := parseDateOrToday("date", date)
			if err != nil {
				return err
			}
			preTax, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			// Tax paid defaults to the current sales tax rate on the purchase.
			var tax decimal.Decimal
			if taxPaid != "" {
				if tax, err = parseAmount("tax-paid", taxPaid); err != nil {
					return err
				}
			} else if tax, err = taxcalc.ComputeTax(preTax, p.cfg.Tax.SalesTaxRate, exempt); err != nil {
				return err
			}

			svc, err := p.ledgerService()
			if err != nil {
				return err
			}
			a, err := svc.AddAsset(cmd.Context(), ledger.AssetParams{
				Description:  description,
				ClassID:      classID,
				AcquiredOn:   acquired,
				PreTaxAmount: preTax,
				TaxPaid:      tax,
				FundedBy:     model.FundingSource(fundedBy),
			})
			if err != nil {
				return err
			}

			p.record(auditlog.ActionAddAsset, a.ID,
				fmt.Sprintf("class %s cost %s", a.ClassID, a.TotalCost.StringFixed(2)))
			if err := p.finish(cmd.Context(), gitops.PrefixAsset, fmt.Sprintf("Add %s %s", a.ID, a.Description)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  class %s  cost %s\n", a.ID, a.ClassID, a.TotalCost.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "what the asset is")
	cmd.Flags().StringVar(&classID, "class", "", "depreciation class id (required)")
	_ = cmd.MarkFlagRequired("class")
	cmd.Flags().StringVar(&date, "date", "", "acquisition date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&amount, "amount", "", "pre-tax purchase amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&taxPaid, "tax-paid", "", "tax paid (default computed at the current rate)")
	cmd.Flags().BoolVar(&exempt, "exempt", false, "purchase carried no sales tax")
	cmd.Flags().StringVar(&fundedBy, "funded-by", string(model.FundedByCompany), "company or principal")
	return cmd
}

func newAssetListCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List capital assets with book values",
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
			assets, rejected, err := svc.Ledger().Assets(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range rejected {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", r)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCLASS\tACQUIRED\tCOST\tACCUMULATED\tBOOK VALUE\tDISPOSED\tDESCRIPTION")
			for _, a := range assets {
				disposed := ""
				if a.IsDisposed() {
					disposed = a.DisposedOn.Format(model.DateFormat)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.ClassID, a.AcquiredOn.Format(model.DateFormat),
					a.TotalCost.StringFixed(2), a.AccumulatedDepreciation.StringFixed(2),
					a.BookValue.StringFixed(2), disposed, a.Description)
			}
			return w.Flush()
		},
	}
}

func newAssetDisposeCommand(g *globals) *cobra.Command {
	var date, proceeds string

	cmd := &cobra.Command{
		Use:   "dispose <asset-id>",
		Short: "Record the sale or scrapping of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			on, err := parseDateOrToday("date", date)
			if err != nil {
				return err
			}
			amount, err := parseAmount("proceeds", proceeds)
			if err != nil {
				return err
			}
			svc, err := p.ledgerService()
			if err != nil {
				return err
			}
			a, err := svc.Dispose(cmd.Context(), args[0], on, amount)
			if err != nil {
				return err
			}

			p.record(auditlog.ActionDispose, a.ID,
				fmt.Sprintf("disposed %s for %s", on.Format(model.DateFormat), amount.StringFixed(2)))
			if err := p.finish(cmd.Context(), gitops.PrefixDispose, "Dispose "+a.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s disposed on %s, book value %s\n",
				a.ID, on.Format(model.DateFormat), a.BookValue.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "disposal date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&proceeds, "proceeds", "0", "amount received")
	return cmd
}

func newAssetScheduleCommand(g *globals) *cobra.Command {
	var from, years int

	cmd := &cobra.Command{
		Use:   "schedule <asset-id>",
		Short: "Project an asset's depreciation without recording it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			svc, err := p.ledgerService()
			if err != nil {
				return err
			}
			if from == 0 {
				if from, err = nextYear(cmd, svc, args[0]); err != nil {
					return err
				}
			}
			sched, err := svc.Schedule(cmd.Context(), args[0], from, years)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "YEAR\tAMOUNT\tHALF-YEAR\tREMAINING")
			for _, r := range sched {
				fmt.Fprintf(w, "%d\t%s\t%t\t%s\n", r.FiscalYear, r.Amount.StringFixed(2), r.HalfYear, r.RemainingBookValue.StringFixed(2))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "first fiscal year (default the year after the last entry)")
	cmd.Flags().IntVar(&years, "years", 10, "number of years to project")
	return cmd
}

// nextYear is the first fiscal year without a recorded entry for the asset.
func nextYear(cmd *cobra.Command, svc *ledger.Service, assetID string) (int, error) {
	a, err := svc.Ledger().Asset(cmd.Context(), assetID)
	if err != nil {
		return 0, err
	}
	entries, err := svc.Ledger().Entries(cmd.Context())
	if err != nil {
		return 0, err
	}
	year := a.AcquiredOn.Year()
	for _, e := range entries {
		if e.AssetID == assetID && e.FiscalYear >= year {
			year = e.FiscalYear + 1
		}
	}
	return year, nil
}
