// Package accounts owns the chart of accounts: seeding the fixed system
// accounts, managing user-defined expense categories, and read access for
// every other component. Balances are never written here; only the ledger
// engine mutates them.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GromitDog/GUMS-sub000/internal/faults"
	"github.com/GromitDog/GUMS-sub000/internal/model"
	"github.com/GromitDog/GUMS-sub000/internal/store"
)

// Service provides chart-of-accounts operations.
type Service struct {
	st *store.Store
}

// NewService creates an accounts Service.
func NewService(st *store.Store) *Service {
	return &Service{st: st}
}

// EnsureDefaultAccounts seeds the fixed system accounts and the starter
// expense taxonomy. Only codes not already present are inserted, so it is
// safe to call on every startup.
func (s *Service) EnsureDefaultAccounts(ctx context.Context) error {
	return s.st.WithTx(ctx, func(tx *sql.Tx) error {
		for _, seed := range defaultChart() {
			var exists int
			err := tx.QueryRow("SELECT 1 FROM accounts WHERE code = ?", seed.Code).Scan(&exists)
			if err == nil {
				continue
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("checking account code %d: %w", seed.Code, err)
			}
			if _, err := tx.Exec(
				"INSERT INTO accounts (code, name, type, is_system, balance) VALUES (?, ?, ?, ?, '0')",
				seed.Code, seed.Name, string(seed.Type), boolToInt(seed.IsSystem),
			); err != nil {
				return fmt.Errorf("seeding account %d %q: %w", seed.Code, seed.Name, err)
			}
		}
		return nil
	})
}

// CreateExpenseAccount adds a new expense category, auto-assigning the next
// unused code in the reserved expense band.
func (s *Service) CreateExpenseAccount(ctx context.Context, name string) (model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Account{}, faults.Validation("account name is required")
	}

	var created model.Account
	err := s.st.WithTx(ctx, func(tx *sql.Tx) error {
		code, err := nextExpenseCode(tx)
		if err != nil {
			return err
		}
		res, err := tx.Exec(
			"INSERT INTO accounts (code, name, type, is_system, balance) VALUES (?, ?, ?, 0, '0')",
			code, name, string(model.AccountTypeExpense),
		)
		if err != nil {
			return fmt.Errorf("inserting expense account: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading new account id: %w", err)
		}
		created = model.Account{
			ID:      id,
			Code:    code,
			Name:    name,
			Type:    model.AccountTypeExpense,
			Balance: decimal.Zero,
		}
		return nil
	})
	if err != nil {
		return model.Account{}, err
	}
	return created, nil
}

// UpdateExpenseAccount renames a user-defined expense category.
func (s *Service) UpdateExpenseAccount(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return faults.Validation("account name is required")
	}
	return s.st.WithTx(ctx, func(tx *sql.Tx) error {
		acct, err := getForUpdate(tx, id)
		if err != nil {
			return err
		}
		if acct.IsSystem || acct.Type != model.AccountTypeExpense {
			return faults.Conflict("account %q is not an editable expense category", acct.Name)
		}
		if _, err := tx.Exec("UPDATE accounts SET name = ? WHERE id = ?", name, id); err != nil {
			return fmt.Errorf("renaming account %d: %w", id, err)
		}
		return nil
	})
}

// DeleteExpenseAccount removes a user-defined expense category. Accounts
// with posted lines or referencing expenses cannot be deleted; there is no
// soft delete, so removal would orphan history.
func (s *Service) DeleteExpenseAccount(ctx context.Context, id int64) error {
	return s.st.WithTx(ctx, func(tx *sql.Tx) error {
		acct, err := getForUpdate(tx, id)
		if err != nil {
			return err
		}
		if acct.IsSystem || acct.Type != model.AccountTypeExpense {
			return faults.Conflict("account %q is not a deletable expense category", acct.Name)
		}

		var lines int
		if err := tx.QueryRow("SELECT COUNT(*) FROM transaction_lines WHERE account_id = ?", id).Scan(&lines); err != nil {
			return fmt.Errorf("counting lines for account %d: %w", id, err)
		}
		if lines > 0 {
			return faults.Conflict("account %q has transactions and cannot be deleted", acct.Name)
		}
		var expenses int
		if err := tx.QueryRow("SELECT COUNT(*) FROM expenses WHERE expense_account_id = ?", id).Scan(&expenses); err != nil {
			return fmt.Errorf("counting expenses for account %d: %w", id, err)
		}
		if expenses > 0 {
			return faults.Conflict("account %q has expenses and cannot be deleted", acct.Name)
		}

		if _, err := tx.Exec("DELETE FROM accounts WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting account %d: %w", id, err)
		}
		return nil
	})
}

// Get returns an account snapshot by id.
func (s *Service) Get(ctx context.Context, id int64) (model.Account, error) {
	return scanAccount(s.st.DB.QueryRowContext(ctx, selectAccount+" WHERE id = ?", id), fmt.Sprintf("account %d", id))
}

// GetByCode returns an account snapshot by its unique code.
func (s *Service) GetByCode(ctx context.Context, code int) (model.Account, error) {
	return scanAccount(s.st.DB.QueryRowContext(ctx, selectAccount+" WHERE code = ?", code), fmt.Sprintf("account code %d", code))
}

// All returns every account ordered by code.
func (s *Service) All(ctx context.Context) ([]model.Account, error) {
	return s.list(ctx, selectAccount+" ORDER BY code")
}

// ExpenseAccounts returns every expense category ordered by code.
func (s *Service) ExpenseAccounts(ctx context.Context) ([]model.Account, error) {
	return s.list(ctx, selectAccount+" WHERE type = 'expense' ORDER BY code")
}

const selectAccount = "SELECT id, code, name, type, is_system, balance FROM accounts"

func (s *Service) list(ctx context.Context, query string, args ...any) ([]model.Account, error) {
	rows, err := s.st.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accts []model.Account
	for rows.Next() {
		var a model.Account
		var typ string
		var isSystem int
		var balance string
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &typ, &isSystem, &balance); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		a.Type = model.AccountType(typ)
		a.IsSystem = isSystem != 0
		a.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("parsing balance for account %d: %w", a.ID, err)
		}
		accts = append(accts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return accts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, what string) (model.Account, error) {
	var a model.Account
	var typ string
	var isSystem int
	var balance string
	err := row.Scan(&a.ID, &a.Code, &a.Name, &typ, &isSystem, &balance)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, faults.NotFound("%s not found", what)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("reading %s: %w", what, err)
	}
	a.Type = model.AccountType(typ)
	a.IsSystem = isSystem != 0
	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing balance for %s: %w", what, err)
	}
	return a, nil
}

func getForUpdate(tx *sql.Tx, id int64) (model.Account, error) {
	return scanAccount(tx.QueryRow(selectAccount+" WHERE id = ?", id), fmt.Sprintf("account %d", id))
}

// nextExpenseCode finds the lowest unused code in the expense band,
// skipping the reserved gap code.
func nextExpenseCode(tx *sql.Tx) (int, error) {
	rows, err := tx.Query(
		"SELECT code FROM accounts WHERE code BETWEEN ? AND ?",
		expenseCodeStart, expenseCodeEnd,
	)
	if err != nil {
		return 0, fmt.Errorf("listing expense codes: %w", err)
	}
	defer rows.Close()

	used := make(map[int]bool)
	for rows.Next() {
		var code int
		if err := rows.Scan(&code); err != nil {
			return 0, fmt.Errorf("scanning expense code: %w", err)
		}
		used[code] = true
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("listing expense codes: %w", err)
	}

	for code := expenseCodeStart; code <= expenseCodeEnd; code += expenseCodeStep {
		if code == expenseCodeGap || used[code] {
			continue
		}
		return code, nil
	}
	return 0, faults.Validation("no expense account codes left in band %d-%d", expenseCodeStart, expenseCodeEnd)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
