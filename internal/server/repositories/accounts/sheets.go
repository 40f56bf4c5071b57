package accounts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bkkdisplay/confeditor/internal/common"
	"github.com/bkkdisplay/confeditor/internal/server/models"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Column layout of the backing worksheet, one account per row starting at
// row 2: A email, B password hash, C created at, D last upload, E upload
// count, F config blob.
const (
	sheetDataRange  = "A2:F"
	firstDataRow    = 2
	sheetTimeLayout = time.RFC3339
)

// SheetsRepository adapts a Google Sheets worksheet to the Repository
// interface. The worksheet is shared with other processes, so every
// operation re-resolves the account row by email: a row number observed
// earlier may be stale after a concurrent append.
type SheetsRepository struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

func NewSheetsRepository(ctx context.Context, spreadsheetID, worksheet string, credentialsJSON []byte) (*SheetsRepository, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets client init: %w", err)
	}
	return &SheetsRepository{svc: svc, spreadsheetID: spreadsheetID, worksheet: worksheet}, nil
}

func (r *SheetsRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	_, account, err := r.findRow(ctx, email)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *SheetsRepository) Insert(ctx context.Context, account *models.Account) error {
	// The Sheets API offers no uniqueness constraint, so the duplicate check
	// is a scan followed by an append. Two concurrent inserts of the same
	// email can both pass the scan; callers must treat the result as advisory.
	_, _, err := r.findRow(ctx, account.Email)
	if err == nil {
		return common.ErrorDuplicate
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	row := []any{
		account.Email,
		string(account.PasswordHash),
		account.CreatedAt.Format(sheetTimeLayout),
		formatNullableTime(account.LastUploadAt),
		strconv.Itoa(account.UploadCountToday),
		account.ConfigBlob,
	}
	_, err = r.svc.Spreadsheets.Values.
		Append(r.spreadsheetID, r.rangeRef(sheetDataRange), &sheets.ValueRange{Values: [][]any{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}
	return nil
}

func (r *SheetsRepository) Update(ctx context.Context, email string, fields UpdateFields) error {
	rowNum, account, err := r.findRow(ctx, email)
	if err != nil {
		return err
	}

	if fields.LastUploadAt != nil {
		t := *fields.LastUploadAt
		account.LastUploadAt = &t
	}
	if fields.UploadCountToday != nil {
		account.UploadCountToday = *fields.UploadCountToday
	}
	if fields.ConfigBlob != nil {
		account.ConfigBlob = *fields.ConfigBlob
	}

	target := r.rangeRef(fmt.Sprintf("D%d:F%d", rowNum, rowNum))
	values := [][]any{{
		formatNullableTime(account.LastUploadAt),
		strconv.Itoa(account.UploadCountToday),
		account.ConfigBlob,
	}}
	_, err = r.svc.Spreadsheets.Values.
		Update(r.spreadsheetID, target, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets update: %w", err)
	}
	return nil
}

// findRow scans the worksheet for the account and returns its current row
// number along with the decoded record.
func (r *SheetsRepository) findRow(ctx context.Context, email string) (int, *models.Account, error) {
	resp, err := r.svc.Spreadsheets.Values.
		Get(r.spreadsheetID, r.rangeRef(sheetDataRange)).
		Context(ctx).
		Do()
	if err != nil {
		return 0, nil, fmt.Errorf("sheets read: %w", err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if models.NormalizeEmail(cellString(row, 0)) != email {
			continue
		}
		account, err := decodeRow(row)
		if err != nil {
			return 0, nil, err
		}
		return firstDataRow + i, account, nil
	}
	return 0, nil, common.ErrorNotFound
}

func (r *SheetsRepository) rangeRef(cells string) string {
	return fmt.Sprintf("%s!%s", r.worksheet, cells)
}

func decodeRow(row []any) (*models.Account, error) {
	a := &models.Account{
		Email:        models.NormalizeEmail(cellString(row, 0)),
		PasswordHash: []byte(cellString(row, 1)),
		ConfigBlob:   cellString(row, 5),
	}
	if v := cellString(row, 2); v != "" {
		t, err := time.Parse(sheetTimeLayout, v)
		if err != nil {
			return nil, fmt.Errorf("bad created_at cell %q: %w", v, err)
		}
		a.CreatedAt = t
	}
	if v := cellString(row, 3); v != "" {
		t, err := time.Parse(sheetTimeLayout, v)
		if err != nil {
			return nil, fmt.Errorf("bad last_upload cell %q: %w", v, err)
		}
		a.LastUploadAt = &t
	}
	// A garbled counter cell degrades to zero.
	if n, err := strconv.Atoi(cellString(row, 4)); err == nil && n > 0 {
		a.UploadCountToday = n
	}
	return a, nil
}

func cellString(row []any, idx int) string {
	if idx >= len(row) {
		return ""
	}
	s, _ := row[idx].(string)
	return s
}

func formatNullableTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(sheetTimeLayout)
}
