package google

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets emulates the subset of the Sheets v4 REST API the client uses.
type fakeSheets struct {
	mu          sync.Mutex
	sheets      map[string]*fakeSheet
	nextSheetID int64
	failWith    int
	requests    []string
}

type fakeSheet struct {
	id   int64
	rows [][]any
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{sheets: map[string]*fakeSheet{}, nextSheetID: 7}
}

func (f *fakeSheets) addSheet(title string, rows ...[]any) *fakeSheet {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh := &fakeSheet{id: f.nextSheetID, rows: rows}
	f.nextSheetID++
	f.sheets[title] = sh
	return sh
}

func (f *fakeSheets) rows(title string) [][]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	sh, ok := f.sheets[title]
	if !ok {
		return nil
	}
	out := make([][]any, len(sh.rows))
	for i, r := range sh.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}

func (f *fakeSheets) countRequests(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeSheets) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeSheets) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != 0 {
		writeError(w, f.failWith, "injected failure")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/")
	switch {
	case strings.HasSuffix(path, ":batchUpdate"):
		f.requests = append(f.requests, "batchUpdate")
		f.batchUpdate(w, r)
	case strings.Contains(path, "/values/"):
		rng := path[strings.Index(path, "/values/")+len("/values/"):]
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(rng, ":append"):
			f.requests = append(f.requests, "append "+strings.TrimSuffix(rng, ":append"))
			f.appendValues(w, r, strings.TrimSuffix(rng, ":append"))
		case r.Method == http.MethodPut:
			f.requests = append(f.requests, "update "+rng)
			f.updateValues(w, r, rng)
		default:
			f.requests = append(f.requests, "get "+rng)
			f.getValues(w, rng)
		}
	default:
		f.requests = append(f.requests, "spreadsheet")
		f.getSpreadsheet(w)
	}
}

func (f *fakeSheets) getSpreadsheet(w http.ResponseWriter) {
	ss := &gsheet.Spreadsheet{SpreadsheetId: "sheet-test"}
	for title, sh := range f.sheets {
		ss.Sheets = append(ss.Sheets, &gsheet.Sheet{Properties: &gsheet.SheetProperties{SheetId: sh.id, Title: title}})
	}
	writeJSON(w, ss)
}

func (f *fakeSheets) getValues(w http.ResponseWriter, raw string) {
	a, err := parseA1(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sh, ok := f.sheets[a.sheet]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unable to parse range: "+raw)
		return
	}
	last := len(sh.rows)
	if a.endRow > 0 && a.endRow < last {
		last = a.endRow
	}
	var values [][]any
	for i := a.startRow - 1; i < last; i++ {
		row := sh.rows[i]
		if a.startCol < len(row) {
			row = row[a.startCol:]
		} else {
			row = nil
		}
		values = append(values, trimRow(row))
	}
	for len(values) > 0 && len(values[len(values)-1]) == 0 {
		values = values[:len(values)-1]
	}
	writeJSON(w, &gsheet.ValueRange{Range: raw, MajorDimension: "ROWS", Values: values})
}

func (f *fakeSheets) updateValues(w http.ResponseWriter, r *http.Request, raw string) {
	a, err := parseA1(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sh, ok := f.sheets[a.sheet]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unable to parse range: "+raw)
		return
	}
	var vr gsheet.ValueRange
	if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i, row := range vr.Values {
		rowIdx := a.startRow - 1 + i
		for len(sh.rows) <= rowIdx {
			sh.rows = append(sh.rows, nil)
		}
		for j, v := range row {
			col := a.startCol + j
			for len(sh.rows[rowIdx]) <= col {
				sh.rows[rowIdx] = append(sh.rows[rowIdx], "")
			}
			sh.rows[rowIdx][col] = v
		}
	}
	writeJSON(w, &gsheet.UpdateValuesResponse{UpdatedRange: raw, UpdatedRows: int64(len(vr.Values))})
}

func (f *fakeSheets) appendValues(w http.ResponseWriter, r *http.Request, raw string) {
	a, err := parseA1(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sh, ok := f.sheets[a.sheet]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unable to parse range: "+raw)
		return
	}
	var vr gsheet.ValueRange
	if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for len(sh.rows) > 0 && len(trimRow(sh.rows[len(sh.rows)-1])) == 0 {
		sh.rows = sh.rows[:len(sh.rows)-1]
	}
	sh.rows = append(sh.rows, vr.Values...)
	writeJSON(w, &gsheet.AppendValuesResponse{SpreadsheetId: "sheet-test"})
}

func (f *fakeSheets) batchUpdate(w http.ResponseWriter, r *http.Request) {
	var req gsheet.BatchUpdateSpreadsheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp := &gsheet.BatchUpdateSpreadsheetResponse{SpreadsheetId: "sheet-test"}
	for _, rq := range req.Requests {
		switch {
		case rq.AddSheet != nil:
			title := rq.AddSheet.Properties.Title
			sh := &fakeSheet{id: f.nextSheetID}
			f.nextSheetID++
			f.sheets[title] = sh
			resp.Replies = append(resp.Replies, &gsheet.Response{
				AddSheet: &gsheet.AddSheetResponse{Properties: &gsheet.SheetProperties{SheetId: sh.id, Title: title}},
			})
		case rq.DeleteDimension != nil:
			dr := rq.DeleteDimension.Range
			var target *fakeSheet
			for _, sh := range f.sheets {
				if sh.id == dr.SheetId {
					target = sh
				}
			}
			if target == nil || dr.Dimension != "ROWS" || dr.StartIndex >= int64(len(target.rows)) || dr.EndIndex <= dr.StartIndex {
				writeError(w, http.StatusBadRequest, "invalid deleteDimension range")
				return
			}
			end := dr.EndIndex
			if end > int64(len(target.rows)) {
				end = int64(len(target.rows))
			}
			target.rows = append(target.rows[:dr.StartIndex], target.rows[end:]...)
			resp.Replies = append(resp.Replies, &gsheet.Response{})
		default:
			writeError(w, http.StatusBadRequest, "unsupported request")
			return
		}
	}
	writeJSON(w, resp)
}

type a1Range struct {
	sheet    string
	startCol int // 0-based
	startRow int // 1-based
	endRow   int // 1-based, 0 when open
}

func parseA1(raw string) (a1Range, error) {
	i := strings.LastIndex(raw, "!")
	if i < 0 {
		return a1Range{}, fmt.Errorf("range without sheet: %s", raw)
	}
	sheet := raw[:i]
	if strings.HasPrefix(sheet, "'") && strings.HasSuffix(sheet, "'") && len(sheet) >= 2 {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	parts := strings.Split(raw[i+1:], ":")
	startCol, startRow := parseCell(parts[0])
	if startRow == 0 {
		startRow = 1
	}
	endRow := 0
	if len(parts) > 1 {
		_, endRow = parseCell(parts[1])
	}
	return a1Range{sheet: sheet, startCol: startCol, startRow: startRow, endRow: endRow}, nil
}

func parseCell(s string) (col, row int) {
	j := 0
	for j < len(s) && s[j] >= 'A' && s[j] <= 'Z' {
		col = col*26 + int(s[j]-'A'+1)
		j++
	}
	row, _ = strconv.Atoi(s[j:])
	return col - 1, row
}

func trimRow(row []any) []any {
	n := len(row)
	for n > 0 {
		if s, ok := row[n-1].(string); ok && s == "" || row[n-1] == nil {
			n--
			continue
		}
		break
	}
	if n == 0 {
		return []any{}
	}
	return row[:n]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": msg},
	})
}
