package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/fiscal/internal/auditlog"
	"github.com/cleared-dev/fiscal/internal/classes"
	"github.com/cleared-dev/fiscal/internal/config"
	"github.com/cleared-dev/fiscal/internal/gitops"
	"github.com/cleared-dev/fiscal/internal/ledger"
	"github.com/cleared-dev/fiscal/internal/ledger/sqlledger"
	"github.com/cleared-dev/fiscal/internal/logger"
	"github.com/cleared-dev/fiscal/internal/records"
)

// project is an opened fiscal project for the duration of one command.
type project struct {
	root    string
	cfg     *config.Config
	classes *classes.Registry
	log     *zap.Logger
	runID   string
	audit   []auditlog.Entry
	closers []func() error
}

func openProject(cmd *cobra.Command, g *globals) (*project, error) {
	root, err := filepath.Abs(g.repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("not a fiscal project (run fiscal init): %w", err)
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	reg, err := classes.Load(root)
	if err != nil {
		return nil, err
	}
	runID := auditlog.NewRunID()
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}, cmd.ErrOrStderr()).
		With(zap.String("run_id", runID))

	return &project{
		root:    root,
		cfg:     cfg,
		classes: reg,
		log:     log,
		runID:   runID,
	}, nil
}

func (p *project) records() *records.Store {
	return records.NewStore(p.root)
}

// ledgerService opens the configured ledger backend.
func (p *project) ledgerService() (*ledger.Service, error) {
	var l ledger.Ledger
	switch p.cfg.Ledger.Driver {
	case "sqlite":
		sl, err := sqlledger.Open(p.cfg.SQLitePath(p.root), p.log, p.cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, sl.Close)
		l = sl
	default:
		l = ledger.NewCSV(p.root)
	}
	return ledger.NewService(l, p.classes, p.log), nil
}

// record queues an audit log entry for this run.
func (p *project) record(action auditlog.Action, ref, details string) {
	p.audit = append(p.audit, auditlog.Entry{
		Timestamp: time.Now().UTC(),
		RunID:     p.runID,
		Action:    action,
		Details:   details,
		Ref:       ref,
	})
}

// finish commits the run's changes when auto-commit is on, then appends the
// queued audit entries stamped with the commit hash.
func (p *project) finish(ctx context.Context, prefix, summary string) error {
	var hash string
	if p.cfg.Git.AutoCommit && gitops.IsRepo(p.root) {
		author := gitops.Author{Name: p.cfg.Git.AuthorName, Email: p.cfg.Git.AuthorEmail}
		h, err := gitops.CommitAll(ctx, p.root, gitops.Message(prefix, summary), author)
		if err != nil {
			p.log.Warn("auto-commit failed", zap.Error(err))
		}
		hash = h
	}
	for i := range p.audit {
		p.audit[i].CommitHash = hash
	}
	if len(p.audit) > 0 {
		if err := auditlog.Append(p.root, p.audit); err != nil {
			return fmt.Errorf("writing audit log: %w", err)
		}
	}
	return nil
}

func (p *project) close() {
	for _, c := range p.closers {
		if err := c(); err != nil {
			p.log.Warn("closing", zap.Error(err))
		}
	}
	_ = p.log.Sync()
}
