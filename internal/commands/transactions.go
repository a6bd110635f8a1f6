package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fiscal/internal/auditlog"
	"github.com/cleared-dev/fiscal/internal/gitops"
	"github.com/cleared-dev/fiscal/internal/model"
	"github.com/cleared-dev/fiscal/internal/records"
)

func newSaleCommand(g *globals) *cobra.Command {
	saleCmd := &cobra.Command{
		Use:   "sale",
		Short: "Sales and invoices",
	}

	var date, client, description, amount, status string
	var exempt bool
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a sale; tax is computed at the current rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			on, err := parseDateOrToday("date", date)
			if err != nil {
				return err
			}
			preTax, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			s, err := p.records().AddSale(records.SaleParams{
				Date:         on,
				Client:       client,
				Description:  description,
				PreTaxAmount: preTax,
				ClientExempt: exempt,
				Status:       model.SaleStatus(status),
			}, p.cfg.Tax.SalesTaxRate)
			if err != nil {
				return err
			}

			p.record(auditlog.ActionAddSale, s.ID, fmt.Sprintf("%s + tax %s", s.PreTaxAmount.StringFixed(2), s.TaxAmount.StringFixed(2)))
			if err := p.finish(cmd.Context(), gitops.PrefixSale, fmt.Sprintf("Add %s %s", s.ID, s.Client)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s + tax %s = %s\n",
				s.ID, s.PreTaxAmount.StringFixed(2), s.TaxAmount.StringFixed(2), s.Total.StringFixed(2))
			return nil
		},
	}
	add.Flags().StringVar(&date, "date", "", "sale date YYYY-MM-DD (default today)")
	add.Flags().StringVar(&client, "client", "", "client name")
	add.Flags().StringVar(&description, "description", "", "description")
	add.Flags().StringVar(&amount, "amount", "", "pre-tax amount (required)")
	_ = add.MarkFlagRequired("amount")
	add.Flags().BoolVar(&exempt, "exempt", false, "client is exempt from sales tax")
	add.Flags().StringVar(&status, "status", string(model.SaleStatusIssued), "draft, issued, settled or paid")

	saleCmd.AddCommand(add)
	return saleCmd
}

func newPurchaseCommand(g *globals) *cobra.Command {
	purchaseCmd := &cobra.Command{
		Use:   "purchase",
		Short: "Expense purchases",
	}

	var date, vendor, description, amount, fundedBy string
	var exempt bool
	add := &cobra.Command{
		Use:   "add",
		Short: "Record an expense; tax is computed at the current rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			on, err := parseDateOrToday("date", date)
			if err != nil {
				return err
			}
			preTax, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			pu, err := p.records().AddPurchase(records.PurchaseParams{
				Date:         on,
				Vendor:       vendor,
				Description:  description,
				PreTaxAmount: preTax,
				VendorExempt: exempt,
				FundedBy:     model.FundingSource(fundedBy),
			}, p.cfg.Tax.SalesTaxRate)
			if err != nil {
				return err
			}

			p.record(auditlog.ActionAddPurch, pu.ID, fmt.Sprintf("%s + tax %s", pu.PreTaxAmount.StringFixed(2), pu.TaxAmount.StringFixed(2)))
			if err := p.finish(cmd.Context(), gitops.PrefixPurchase, fmt.Sprintf("Add %s %s", pu.ID, pu.Vendor)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s + tax %s = %s\n",
				pu.ID, pu.PreTaxAmount.StringFixed(2), pu.TaxAmount.StringFixed(2), pu.Total.StringFixed(2))
			return nil
		},
	}
	add.Flags().StringVar(&date, "date", "", "purchase date YYYY-MM-DD (default today)")
	add.Flags().StringVar(&vendor, "vendor", "", "vendor name")
	add.Flags().StringVar(&description, "description", "", "description")
	add.Flags().StringVar(&amount, "amount", "", "pre-tax amount (required)")
	_ = add.MarkFlagRequired("amount")
	add.Flags().BoolVar(&exempt, "exempt", false, "vendor charged no sales tax")
	add.Flags().StringVar(&fundedBy, "funded-by", string(model.FundedByCompany), "company or principal")

	purchaseCmd.AddCommand(add)
	return purchaseCmd
}

func newDividendCommand(g *globals) *cobra.Command {
	dividendCmd := &cobra.Command{
		Use:   "dividend",
		Short: "Dividend declarations and payments",
	}

	var declDate, amount string
	declare := &cobra.Command{
		Use:   "declare",
		Short: "Declare a dividend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			on, err := parseDateOrToday("date", declDate)
			if err != nil {
				return err
			}
			amt, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			d, err := p.records().AddDividend(amt, on)
			if err != nil {
				return err
			}

			p.record(auditlog.ActionDeclare, d.ID, "declared "+d.Amount.StringFixed(2))
			if err := p.finish(cmd.Context(), gitops.PrefixDividend, "Declare "+d.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s declared %s on %s\n", d.ID, d.Amount.StringFixed(2), on.Format(model.DateFormat))
			return nil
		},
	}
	declare.Flags().StringVar(&declDate, "date", "", "declaration date YYYY-MM-DD (default today)")
	declare.Flags().StringVar(&amount, "amount", "", "dividend amount (required)")
	_ = declare.MarkFlagRequired("amount")

	var payDate string
	pay := &cobra.Command{
		Use:   "pay <dividend-id>",
		Short: "Record payment of a declared dividend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			on, err := parseDateOrToday("date", payDate)
			if err != nil {
				return err
			}
			d, err := p.records().MarkDividendPaid(args[0], on)
			if err != nil {
				return err
			}

			p.record(auditlog.ActionPay, d.ID, "paid "+d.Amount.StringFixed(2))
			if err := p.finish(cmd.Context(), gitops.PrefixDividend, "Pay "+d.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s paid %s on %s\n", d.ID, d.Amount.StringFixed(2), on.Format(model.DateFormat))
			return nil
		},
	}
	pay.Flags().StringVar(&payDate, "date", "", "payment date YYYY-MM-DD (default today)")

	dividendCmd.AddCommand(declare, pay)
	return dividendCmd
}

func newRemitCommand(g *globals) *cobra.Command {
	var date, amount, reference string

	cmd := &cobra.Command{
		Use:   "remit",
		Short: "Record sales tax paid directly to the authority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			on, err := parseDateOrToday("date", date)
			if err != nil {
				return err
			}
			amt, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			r, err := p.records().AddRemittance(amt, on, reference)
			if err != nil {
				return err
			}

			p.record(auditlog.ActionRemit, r.ID, "remitted "+r.Amount.StringFixed(2))
			if err := p.finish(cmd.Context(), gitops.PrefixRemit, "Remit "+r.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s remitted %s on %s\n", r.ID, r.Amount.StringFixed(2), on.Format(model.DateFormat))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "remittance date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount remitted (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&reference, "reference", "", "confirmation or period reference")
	return cmd
}

func newRerateCommand(g *globals) *cobra.Command {
	var from, to, rate string

	cmd := &cobra.Command{
		Use:   "rerate",
		Short: "Recompute stored sales tax in a window at a new rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			w, err := parseWindow(from, to)
			if err != nil {
				return err
			}
			r := p.cfg.Tax.SalesTaxRate
			if rate != "" {
				if r, err = parseAmount("rate", rate); err != nil {
					return err
				}
			}
			n, err := p.records().Rerate(w, r)
			if err != nil {
				return err
			}

			if n > 0 {
				p.record(auditlog.ActionRerate, w.String(), fmt.Sprintf("%d records at %s", n, r.String()))
				if err := p.finish(cmd.Context(), gitops.PrefixRerate, fmt.Sprintf("%s at %s", w, r)); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Re-rated %d records in %s at %s\n", n, w, r)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "window start YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&to, "to", "", "window end YYYY-MM-DD (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&rate, "rate", "", "tax rate (default the configured rate)")
	return cmd
}
