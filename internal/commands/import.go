package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/fiscal/internal/auditlog"
	"github.com/cleared-dev/fiscal/internal/gitops"
	"github.com/cleared-dev/fiscal/internal/importer"
)

func newImportCommand(g *globals) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Turn bank statements in import/ into sales and purchases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parser, err := importer.DefaultRegistry().Lookup(format)
			if err != nil {
				return err
			}

			p, err := openProject(cmd, g)
			if err != nil {
				return err
			}
			defer p.close()

			files, err := importer.Pending(p.root)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "No statements to import.")
				return nil
			}

			rate := p.cfg.Tax.SalesTaxRate
			var names []string
			for _, f := range files {
				res, err := importFile(p, parser, f)
				if err != nil {
					return err
				}
				p.record(auditlog.ActionImport, f.Name,
					fmt.Sprintf("%d sales, %d purchases at %s", len(res.Sales), len(res.Purchases), rate))
				fmt.Fprintf(out, "%s  %d sales, %d purchases\n", f.Name, len(res.Sales), len(res.Purchases))
				names = append(names, f.Name)
			}
			return p.finish(cmd.Context(), gitops.PrefixImport, strings.Join(names, ", "))
		},
	}
	cmd.Flags().StringVar(&format, "format", "chase", "statement format")
	return cmd
}

func importFile(p *project, parser importer.Parser, f importer.Statement) (importer.Result, error) {
	lines, err := readStatement(parser, f)
	if err != nil {
		return importer.Result{}, err
	}
	plan, err := importer.NewPlan(lines, p.cfg.Tax.SalesTaxRate)
	if err != nil {
		return importer.Result{}, fmt.Errorf("%s: %w", f.Name, err)
	}
	res, err := importer.Apply(p.records(), plan, p.cfg.Tax.SalesTaxRate)
	if err != nil {
		return res, fmt.Errorf("%s: %w", f.Name, err)
	}
	if len(plan.Skipped) > 0 {
		p.log.Info("skipped transfers", zap.String("file", f.Name), zap.Int("lines", len(plan.Skipped)))
	}
	if err := importer.Archive(p.root, f); err != nil {
		return res, err
	}
	return res, nil
}

func readStatement(parser importer.Parser, f importer.Statement) ([]importer.Line, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer file.Close()

	lines, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	return lines, nil
}
