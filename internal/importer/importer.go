// Package importer brings payment exports from the membership system into
// the ledger. Files dropped in <workDir>/import/ are parsed, posted one
// payment at a time through the posting rules, and moved to
// import/processed/ when done.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GromitDog/GUMS-sub000/internal/model"
	"github.com/GromitDog/GUMS-sub000/internal/posting"
)

const paymentDateFormat = "2006-01-02"

// PaymentRow is one payment in a membership-system export.
type PaymentRow struct {
	PaymentID   string
	Date        time.Time
	Amount      decimal.Decimal
	Method      model.PaymentMethod
	Type        model.PaymentType
	MemberID    string
	Description string
}

// Header is the expected CSV header for payment exports.
const Header = "payment_id,date,amount,method,type,member_id,description"

const (
	numFields    = 7
	colPaymentID = 0
	colDate      = 1
	colAmount    = 2
	colMethod    = 3
	colType      = 4
	colMemberID  = 5
	colDesc      = 6
)

// importDir is the subdirectory watched for export CSVs.
const importDir = "import"

// processedDir is the subdirectory completed CSVs move to.
const processedDir = "import/processed"

// ParsePayments reads a payment export CSV. Rows with a blank payment id
// get a generated one so re-running other exports cannot collide with them.
func ParsePayments(r io.Reader) ([]PaymentRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading payments CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var payments []PaymentRow
	for i, rec := range records[1:] {
		p, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func parseRow(rec []string) (PaymentRow, error) {
	date, err := time.Parse(paymentDateFormat, rec[colDate])
	if err != nil {
		return PaymentRow{}, fmt.Errorf("parsing date %q: %w", rec[colDate], err)
	}
	amount, err := decimal.NewFromString(rec[colAmount])
	if err != nil {
		return PaymentRow{}, fmt.Errorf("parsing amount %q: %w", rec[colAmount], err)
	}

	paymentID := strings.TrimSpace(rec[colPaymentID])
	if paymentID == "" {
		paymentID = uuid.NewString()
	}

	return PaymentRow{
		PaymentID:   paymentID,
		Date:        date,
		Amount:      amount,
		Method:      model.PaymentMethod(strings.ToLower(strings.TrimSpace(rec[colMethod]))),
		Type:        model.PaymentType(strings.ToLower(strings.TrimSpace(rec[colType]))),
		MemberID:    strings.TrimSpace(rec[colMemberID]),
		Description: strings.TrimSpace(rec[colDesc]),
	}, nil
}

// RowError records a payment that could not be posted. Row is the CSV file
// line (header is line 1), matching ParsePayments error messages.
type RowError struct {
	Row int
	Err error
}

// Result summarizes one import run.
type Result struct {
	Posted int
	Errors []RowError
}

// PostPayments posts each payment through the posting rules. A bad row is
// recorded and skipped; the rest of the batch continues.
func PostPayments(ctx context.Context, svc *posting.Service, payments []PaymentRow) Result {
	var res Result
	for i, p := range payments {
		_, err := svc.RecordPaymentEntry(ctx, posting.PaymentEntry{
			PaymentID:   p.PaymentID,
			Amount:      p.Amount,
			Method:      p.Method,
			Type:        p.Type,
			MemberID:    p.MemberID,
			Description: p.Description,
			Date:        p.Date,
		})
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: i + 2, Err: err})
			continue
		}
		res.Posted++
	}
	return res
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns CSV files in <workDir>/import/.
func Scan(workDir string) ([]FileInfo, error) {
	dir := filepath.Join(workDir, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(workDir, fileName string) error {
	src := filepath.Join(workDir, importDir, fileName)
	dstDir := filepath.Join(workDir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
