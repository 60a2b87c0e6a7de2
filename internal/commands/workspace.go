package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GromitDog/GUMS-sub000/internal/accounts"
	"github.com/GromitDog/GUMS-sub000/internal/auditlog"
	"github.com/GromitDog/GUMS-sub000/internal/config"
	"github.com/GromitDog/GUMS-sub000/internal/ledger"
	"github.com/GromitDog/GUMS-sub000/internal/posting"
	"github.com/GromitDog/GUMS-sub000/internal/report"
	"github.com/GromitDog/GUMS-sub000/internal/store"
)

const configFile = "gums.yaml"

const flagDateFormat = "2006-01-02"

// workspace bundles the loaded config, open store, and services for one
// command invocation.
type workspace struct {
	dir      string
	cfg      *config.Config
	st       *store.Store
	accounts *accounts.Service
	ledger   *ledger.Service
	posting  *posting.Service
	report   *report.Service
}

// openWorkspace loads gums.yaml from dir, opens the database, and wires
// the services. Default accounts are ensured on every open.
func openWorkspace(dir string) (*workspace, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(absDir, configFile))
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Database.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(absDir, dbPath)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	acctSvc := accounts.NewService(st)
	if err := acctSvc.EnsureDefaultAccounts(context.Background()); err != nil {
		_ = st.Close()
		return nil, err
	}
	ledgerSvc := ledger.NewService(st)

	return &workspace{
		dir:      absDir,
		cfg:      cfg,
		st:       st,
		accounts: acctSvc,
		ledger:   ledgerSvc,
		posting:  posting.NewService(st, ledgerSvc, nil),
		report:   report.NewService(st),
	}, nil
}

// Close releases the database handle.
func (w *workspace) Close() error {
	return w.st.Close()
}

// audit appends one row to the audit log. Audit failures are reported but
// never undo the ledger work that already committed.
func (w *workspace) audit(action, details string, transactionID int64) {
	entry := auditlog.Entry{
		Timestamp:     time.Now().UTC(),
		Actor:         actorName(),
		Action:        action,
		Details:       details,
		TransactionID: transactionID,
	}
	if err := auditlog.Append(w.dir, []auditlog.Entry{entry}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log append failed: %v\n", err)
	}
}

func actorName() string {
	if actor := os.Getenv("GUMS_ACTOR"); actor != "" {
		return actor
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "treasurer"
}

// termWindow returns the configured term bounds for windowed reports.
func (w *workspace) termWindow() (time.Time, time.Time, error) {
	return w.cfg.Term.Window()
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amt, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amt, nil
}

// parseDate parses a --date flag, defaulting to today when empty.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(flagDateFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", raw, err)
	}
	return date, nil
}
