package google

import (
	"testing"
	"time"

	"expensetracker/internal/core"
)

func TestExpenseRow(t *testing.T) {
	e := core.Expense{
		ID:          "abc",
		Amount:      core.Money{Cents: 1250},
		Category:    "Food",
		Description: "Lunch",
		Date:        "2024-01-10",
		CreatedAt:   time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC),
	}
	row := expenseRow(e)
	if len(row) != 6 {
		t.Fatalf("row has %d cells, want 6", len(row))
	}
	if row[0] != "abc" || row[1] != "2024-01-10" || row[2] != "Lunch" || row[4] != "Food" {
		t.Fatalf("unexpected row %v", row)
	}
	if row[3] != 12.5 {
		t.Fatalf("amount cell = %v, want 12.5", row[3])
	}
	if row[5] != "2024-01-10T09:30:00Z" {
		t.Fatalf("created_at cell = %v", row[5])
	}
}

func TestAppendRowsAddsHeaderToEmptySheet(t *testing.T) {
	e := core.Expense{ID: "abc", Description: "=SUM(A1:A9)", Amount: core.Money{Cents: 100}}

	rows := appendRows(nil, e)
	if len(rows) != 2 {
		t.Fatalf("empty sheet: got %d rows, want header + record", len(rows))
	}
	if rows[0][0] != "ID" || len(rows[0]) != len(rows[1]) {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][2] != "=SUM(A1:A9)" {
		t.Fatalf("description cell = %v", rows[1][2])
	}

	rows = appendRows([][]interface{}{{"ID"}, {"other"}}, e)
	if len(rows) != 1 || rows[0][0] != "abc" {
		t.Fatalf("non-empty sheet: got %v", rows)
	}
}

func TestRowIndexOf(t *testing.T) {
	values := [][]interface{}{
		{"ID", "Date"},
		{},
		{"a1", "2024-01-01"},
		{" b2 ", "2024-01-02"},
	}
	tests := []struct {
		id   string
		want int
	}{
		{"a1", 2},
		{"b2", 3},
		{"missing", -1},
		{"", -1},
	}
	for _, tt := range tests {
		if got := rowIndexOf(values, tt.id); got != tt.want {
			t.Errorf("rowIndexOf(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestRowRef(t *testing.T) {
	if got := rowRef("Expenses", 2); got != "Expenses!A3:F3" {
		t.Fatalf("rowRef = %q", got)
	}
}
