package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"wallet/internal/core"
	applog "wallet/internal/log"
	"wallet/internal/store"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// DefaultSheetName is used when no sheet name is configured.
const DefaultSheetName = "Expenses"

// createdAtLayout matches SQLite's CURRENT_TIMESTAMP text.
const createdAtLayout = "2006-01-02 15:04:05"

// Header is the expected content of row 1, in column order A..G.
var Header = []string{"id", "date", "category", "amount", "place", "description", "created_at"}

// Config selects the spreadsheet and the credentials used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// Client is the spreadsheet-backed store.Store. Row 1 of the sheet is a header,
// every following row is one expense.
//
// The sheet has no query language: every read fetches all rows and filters,
// sorts and aggregates in memory. Id assignment (max id + 1) and locating a
// row by scanning are not atomic; a single writer is assumed.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
	now           func() time.Time
}

var _ store.Store = (*Client)(nil)

// CredentialOptions resolves service account credentials from cfg, falling back
// to GOOGLE_APPLICATION_CREDENTIALS.
func CredentialOptions(cfg Config) ([]goption.ClientOption, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	return []goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, nil
}

// New creates a Sheets client. opts carry credentials (see CredentialOptions)
// or, in tests, an alternative endpoint.
func New(ctx context.Context, cfg Config, logger *applog.Logger, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	if logger == nil {
		logger = applog.Default(applog.ComponentSheets)
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(applog.ComponentSheets).With(applog.FieldSheet, sheetName),
		now:           time.Now,
	}, nil
}

// Initialize makes sure the sheet exists and carries the header row.
func (c *Client) Initialize(ctx context.Context) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if _, err := c.ensureSheet(ctx); err != nil {
		return err
	}

	rng := c.a1("A1:G1")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header %s: %w", rng, err)
	}
	if len(resp.Values) > 0 && !rowBlank(resp.Values[0]) {
		got := toStrings(resp.Values[0])
		if !headerMatches(got) {
			return fmt.Errorf("unexpected header in sheet %s: got %v, want %v", c.sheetName, got, Header)
		}
		return nil
	}

	row := make([]any, len(Header))
	for i, h := range Header {
		row[i] = h
	}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header %s: %w", rng, err)
	}
	c.logger.InfoContext(ctx, "Wrote header row", applog.FieldOperation, applog.OpInitialize)
	return nil
}

// ensureSheet returns the sheet id, adding the sheet when it does not exist.
func (c *Client) ensureSheet(ctx context.Context) (int64, error) {
	id, found, err := c.lookupSheet(ctx)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: c.sheetName},
			},
		}},
	}
	resp, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("add sheet %s: %w", c.sheetName, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("add sheet %s: empty reply", c.sheetName)
	}
	c.logger.InfoContext(ctx, "Created sheet")
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (c *Client) lookupSheet(ctx context.Context) (int64, bool, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("get spreadsheet %s: %w", c.spreadsheetID, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == c.sheetName {
			return sh.Properties.SheetId, true, nil
		}
	}
	return 0, false, nil
}

func (c *Client) AddExpense(ctx context.Context, in core.ExpenseInput) bool {
	if err := in.Validate(); err != nil {
		c.fail(ctx, applog.OpCreate, applog.ErrorTypeValidation, fmt.Errorf("validation failed: %w", err))
		return false
	}
	rows, err := c.fetchRows(ctx)
	if err != nil {
		c.fail(ctx, applog.OpCreate, applog.ErrorTypeNetwork, err)
		return false
	}
	id := store.NextID(expenses(rows))

	row := []any{
		id,
		string(in.Date),
		in.Category,
		in.Amount,
		in.Place,
		in.Description,
		c.now().UTC().Format(createdAtLayout),
	}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.a1("A:G"), &gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		c.fail(ctx, applog.OpCreate, applog.ErrorTypeNetwork, fmt.Errorf("append to sheet %s: %w", c.sheetName, err))
		return false
	}

	c.logger.InfoContext(ctx, "Expense appended to sheet",
		applog.FieldExpenseID, id,
		applog.FieldDate, in.Date,
		applog.FieldCategory, in.Category,
		applog.FieldAmount, in.Amount)
	return true
}

func (c *Client) GetAllExpenses(ctx context.Context) []core.Expense {
	items, err := c.allExpenses(ctx)
	if err != nil {
		c.fail(ctx, applog.OpList, applog.ErrorTypeNetwork, err)
		return nil
	}
	return items
}

func (c *Client) GetExpensesByDateRange(ctx context.Context, start, end core.Date) []core.Expense {
	items, err := c.allExpenses(ctx)
	if err != nil {
		c.fail(ctx, applog.OpListByDateRange, applog.ErrorTypeNetwork, err,
			applog.FieldStartDate, start, applog.FieldEndDate, end)
		return nil
	}
	out := store.FilterDateRange(items, start, end)
	c.logger.DebugContext(ctx, "Listed expenses by date range",
		applog.FieldStartDate, start,
		applog.FieldEndDate, end,
		applog.FieldCount, len(out))
	return out
}

func (c *Client) GetExpensesByCategory(ctx context.Context, category string) []core.Expense {
	items, err := c.allExpenses(ctx)
	if err != nil {
		c.fail(ctx, applog.OpListByCategory, applog.ErrorTypeNetwork, err)
		return nil
	}
	return store.FilterCategory(items, category)
}

func (c *Client) UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) bool {
	if err := in.Validate(); err != nil {
		c.fail(ctx, applog.OpUpdate, applog.ErrorTypeValidation, fmt.Errorf("validation failed: %w", err), applog.FieldExpenseID, id)
		return false
	}
	rowNum, ok := c.locate(ctx, applog.OpUpdate, id)
	if !ok {
		return false
	}

	// id (A) and created_at (G) are left untouched
	rng := c.a1(fmt.Sprintf("B%d:F%d", rowNum, rowNum))
	vr := &gsheet.ValueRange{Values: [][]any{{string(in.Date), in.Category, in.Amount, in.Place, in.Description}}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		c.fail(ctx, applog.OpUpdate, applog.ErrorTypeNetwork, fmt.Errorf("update %s: %w", rng, err), applog.FieldExpenseID, id)
		return false
	}
	c.logger.InfoContext(ctx, "Expense updated", applog.FieldExpenseID, id, applog.FieldRow, rowNum)
	return true
}

func (c *Client) DeleteExpense(ctx context.Context, id int64) bool {
	rowNum, ok := c.locate(ctx, applog.OpDelete, id)
	if !ok {
		return false
	}
	sheetID, found, err := c.lookupSheet(ctx)
	if err == nil && !found {
		err = fmt.Errorf("sheet %s not found", c.sheetName)
	}
	if err != nil {
		c.fail(ctx, applog.OpDelete, applog.ErrorTypeNetwork, err, applog.FieldExpenseID, id)
		return false
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNum - 1),
					EndIndex:   int64(rowNum),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		c.fail(ctx, applog.OpDelete, applog.ErrorTypeNetwork, fmt.Errorf("delete row %d: %w", rowNum, err), applog.FieldExpenseID, id)
		return false
	}
	c.logger.InfoContext(ctx, "Expense deleted", applog.FieldExpenseID, id, applog.FieldRow, rowNum)
	return true
}

func (c *Client) GetCategorySummary(ctx context.Context) []core.CategorySummary {
	items, err := c.allExpenses(ctx)
	if err != nil {
		c.fail(ctx, applog.OpCategorySummary, applog.ErrorTypeNetwork, err)
		return nil
	}
	return store.Summarize(items)
}

func (c *Client) GetMonthlySummary(ctx context.Context, year, month int) []core.CategorySummary {
	start, end, err := core.MonthRange(year, month)
	if err != nil {
		c.fail(ctx, applog.OpMonthlySummary, applog.ErrorTypeValidation, err, applog.FieldYear, year, applog.FieldMonth, month)
		return nil
	}
	items, err := c.allExpenses(ctx)
	if err != nil {
		c.fail(ctx, applog.OpMonthlySummary, applog.ErrorTypeNetwork, err, applog.FieldYear, year, applog.FieldMonth, month)
		return nil
	}
	return store.Summarize(store.FilterHalfOpen(items, start, end))
}

// locate returns the 1-based sheet row holding id. A missing id is not logged as a fault.
func (c *Client) locate(ctx context.Context, op string, id int64) (int, bool) {
	rows, err := c.fetchRows(ctx)
	if err != nil {
		c.fail(ctx, op, applog.ErrorTypeNetwork, err, applog.FieldExpenseID, id)
		return 0, false
	}
	for _, r := range rows {
		if r.Expense.ID == id {
			return r.Row, true
		}
	}
	c.logger.WarnContext(ctx, "Expense not found",
		applog.FieldOperation, op,
		applog.FieldErrorType, applog.ErrorTypeNotFound,
		applog.FieldExpenseID, id)
	return 0, false
}

func (c *Client) allExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := c.fetchRows(ctx)
	if err != nil {
		return nil, err
	}
	out := expenses(rows)
	store.SortExpenses(out)
	return out, nil
}

// fetchRows reads every data row below the header.
func (c *Client) fetchRows(ctx context.Context) ([]sheetRow, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := c.a1("A2:G")
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseRows(resp.Values, 2), nil
}

// a1 prefixes a cell range with the quoted sheet name.
func (c *Client) a1(cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(c.sheetName, "'", "''"), cells)
}

func (c *Client) fail(ctx context.Context, op, errorType string, err error, args ...any) {
	fields := applog.NewFields().
		WithOperation(op).
		WithErrorType(errorType).
		WithError(err).
		ToSlice()
	c.logger.ErrorContext(ctx, "Sheets operation failed", append(fields, args...)...)
}
