package google

import (
	"fmt"
	"slices"
	"strings"

	"cashlens/internal/core"
	ports "cashlens/internal/sheets"

	gsheet "google.golang.org/api/sheets/v4"
)

// parseRows converts a values matrix (as returned by Sheets API) into
// expenses. A leading header row is skipped; other unreadable rows are
// counted and dropped.
func parseRows(values [][]interface{}) ([]core.Expense, int) {
	out := make([]core.Expense, 0, len(values))
	skipped := 0
	for i, row := range values {
		cols := toStrings(row)
		if i == 0 && isHeader(cols) {
			continue
		}
		if strings.TrimSpace(strings.Join(cols, "")) == "" {
			continue
		}
		e, err := ports.ParseRow(cols)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, e)
	}
	return out, skipped
}

func isHeader(cols []string) bool {
	return indexOf(cols, "id") == 0 && indexOf(cols, "amount") > 0
}

// findRows returns the zero-based indexes of rows whose first cell is id.
func findRows(values [][]interface{}, id string) []int64 {
	id = strings.TrimSpace(id)
	var out []int64
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			out = append(out, int64(i))
		}
	}
	return out
}

// deleteRowRequests builds one DeleteDimension per row, bottom first so
// earlier deletions do not shift later ones.
func deleteRowRequests(sheetID int64, rows []int64) []*gsheet.Request {
	sorted := slices.Clone(rows)
	slices.Sort(sorted)
	slices.Reverse(sorted)

	reqs := make([]*gsheet.Request, 0, len(sorted))
	for _, r := range sorted {
		reqs = append(reqs, &gsheet.Request{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: r,
					EndIndex:   r + 1,
				},
			},
		})
	}
	return reqs
}

func sheetIDByTitle(props []*gsheet.SheetProperties, title string) (int64, bool) {
	for _, p := range props {
		if p != nil && strings.EqualFold(strings.TrimSpace(p.Title), strings.TrimSpace(title)) {
			return p.SheetId, true
		}
	}
	return 0, false
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}
