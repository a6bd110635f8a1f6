package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/fiscal/internal/auditlog"
	"github.com/cleared-dev/fiscal/internal/classes"
	"github.com/cleared-dev/fiscal/internal/config"
	"github.com/cleared-dev/fiscal/internal/gitops"
	"github.com/cleared-dev/fiscal/internal/importer"
	"github.com/cleared-dev/fiscal/internal/ledger"
	"github.com/cleared-dev/fiscal/internal/records"
)

type initOptions struct {
	name              string
	entityType        string
	jurisdiction      string
	taxRate           string
	smallBusinessRate string
	registered        bool
	driver            string
	noGit             bool
}

func newInitCommand() *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new fiscal project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			} else if repo, _ := cmd.Flags().GetString("repo"); repo != "" {
				dir = repo
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(cmd.Context(), absDir, opts)
			if err != nil {
				return err
			}
			if hash != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized fiscal project at %s (%s)\n", absDir, hash)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized fiscal project at %s\n", absDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&opts.entityType, "entity-type", "ccpc", "entity type")
	cmd.Flags().StringVar(&opts.jurisdiction, "jurisdiction", "ON", "tax jurisdiction")
	cmd.Flags().StringVar(&opts.taxRate, "tax-rate", "0.13", "sales tax rate")
	cmd.Flags().StringVar(&opts.smallBusinessRate, "small-business-rate", "0.09", "income tax rate")
	cmd.Flags().BoolVar(&opts.registered, "registered", true, "registered to collect sales tax")
	cmd.Flags().StringVar(&opts.driver, "ledger", "csv", "depreciation ledger backend (csv or sqlite)")
	cmd.Flags().BoolVar(&opts.noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(ctx context.Context, dir string, opts initOptions) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return "", fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	cfg := config.Default(opts.name, opts.entityType)
	cfg.Tax.Jurisdiction = opts.jurisdiction
	cfg.Tax.Registered = opts.registered
	var err error
	if cfg.Tax.SalesTaxRate, err = parseAmount("tax-rate", opts.taxRate); err != nil {
		return "", err
	}
	if cfg.Tax.SmallBusinessRate, err = parseAmount("small-business-rate", opts.smallBusinessRate); err != nil {
		return "", err
	}
	cfg.Ledger.Driver = opts.driver
	if opts.driver == "sqlite" {
		cfg.Ledger.SQLitePath = filepath.Join(ledger.Dir, "ledger.db")
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	// Create directory structure.
	for _, d := range []string{"classes", records.Dir, ledger.Dir, importer.Dir, "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	if err := classes.Default().Save(dir); err != nil {
		return "", fmt.Errorf("writing class table: %w", err)
	}

	gitignore := "*.db-journal\n*.tmp\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}

	entry := auditlog.Entry{
		Timestamp: time.Now().UTC(),
		RunID:     auditlog.NewRunID(),
		Action:    auditlog.ActionInit,
		Details:   "initialized " + opts.name,
	}
	if opts.noGit {
		return "", auditlog.Append(dir, []auditlog.Entry{entry})
	}

	if err := gitops.Init(ctx, dir); err != nil {
		return "", err
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(ctx, dir, gitops.Message(gitops.PrefixInit, "Initialize "+opts.name), author)
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	entry.CommitHash = hash
	if err := auditlog.Append(dir, []auditlog.Entry{entry}); err != nil {
		return "", fmt.Errorf("writing audit log: %w", err)
	}
	return hash, nil
}
