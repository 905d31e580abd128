package google

import (
	"testing"

	gsheet "google.golang.org/api/sheets/v4"
)

func TestParseRows(t *testing.T) {
	values := [][]interface{}{
		{"id", "title", "amount", "category", "date", "notes"},
		{"e1", "Chocolate", "20.00", "food", "2025-05-07T00:00:00Z"},
		{"e2", "Dinner", 120.5, "food", "2025-05-07T00:00:00Z", "with friends"},
		{},
		{"e3", "Broken", "n/a", "food", "2025-05-07T00:00:00Z"},
		{"e4", "Cat food", "15,50", "Pets", "2025-05-08"},
	}

	got, skipped := parseRows(values)
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(got) != 3 {
		t.Fatalf("got %d expenses, want 3", len(got))
	}
	if got[0].Amount.Cents != 2000 {
		t.Errorf("e1 amount = %d", got[0].Amount.Cents)
	}
	if got[1].Amount.Cents != 12050 || got[1].Notes != "with friends" {
		t.Errorf("unexpected e2: %+v", got[1])
	}
	if got[2].Category.Name() != "pets" || got[2].Amount.Cents != 1550 {
		t.Errorf("unexpected e4: %+v", got[2])
	}
}

func TestParseRowsWithoutHeader(t *testing.T) {
	got, skipped := parseRows([][]interface{}{
		{"e1", "Bus", "3.00", "transportation", "2025-05-07"},
	})
	if skipped != 0 || len(got) != 1 {
		t.Fatalf("got %d rows, %d skipped", len(got), skipped)
	}
}

func TestFindRows(t *testing.T) {
	values := [][]interface{}{
		{"id"},
		{"a"},
		{},
		{" b "},
		{"a"},
	}
	rows := findRows(values, "a")
	if len(rows) != 2 || rows[0] != 1 || rows[1] != 4 {
		t.Errorf("findRows(a) = %v", rows)
	}
	if rows := findRows(values, "b"); len(rows) != 1 || rows[0] != 3 {
		t.Errorf("findRows(b) = %v", rows)
	}
	if rows := findRows(values, "zzz"); len(rows) != 0 {
		t.Errorf("findRows(zzz) = %v", rows)
	}
}

func TestDeleteRowRequests(t *testing.T) {
	reqs := deleteRowRequests(42, []int64{1, 7, 4})
	if len(reqs) != 3 {
		t.Fatalf("got %d requests", len(reqs))
	}
	want := []int64{7, 4, 1}
	for i, r := range reqs {
		rng := r.DeleteDimension.Range
		if rng.SheetId != 42 || rng.Dimension != "ROWS" {
			t.Errorf("request %d: unexpected range %+v", i, rng)
		}
		if rng.StartIndex != want[i] || rng.EndIndex != want[i]+1 {
			t.Errorf("request %d: rows [%d,%d), want [%d,%d)", i, rng.StartIndex, rng.EndIndex, want[i], want[i]+1)
		}
	}
}

func TestSheetIDByTitle(t *testing.T) {
	props := []*gsheet.SheetProperties{
		{SheetId: 0, Title: "Summary"},
		nil,
		{SheetId: 913, Title: "Expenses"},
	}
	if id, ok := sheetIDByTitle(props, "expenses"); !ok || id != 913 {
		t.Errorf("sheetIDByTitle = %d, %v", id, ok)
	}
	if _, ok := sheetIDByTitle(props, "Missing"); ok {
		t.Error("expected missing sheet")
	}
}
