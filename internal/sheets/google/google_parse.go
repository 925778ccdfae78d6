package google

import (
	"fmt"
	"strings"
	"time"

	"expensetracker/internal/core"
	ports "expensetracker/internal/sheets"
)

// expenseRow lays a record out as A:F of the mirror sheet.
func expenseRow(e core.Expense) []interface{} {
	return []interface{}{
		e.ID,
		e.Date,
		e.Description,
		e.Amount.Float(),
		e.Category,
		e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// appendRows returns the rows to append for e given the current column A.
// An empty sheet gets the header row first.
func appendRows(existing [][]interface{}, e core.Expense) [][]interface{} {
	rows := make([][]interface{}, 0, 2)
	if len(existing) == 0 {
		header := make([]interface{}, len(ports.Header))
		for i, h := range ports.Header {
			header[i] = h
		}
		rows = append(rows, header)
	}
	return append(rows, expenseRow(e))
}

// rowIndexOf returns the zero-based row whose first cell equals id, or -1.
func rowIndexOf(values [][]interface{}, id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i
		}
	}
	return -1
}

func rowRef(sheetName string, row int) string {
	return fmt.Sprintf("%s!A%d:F%d", sheetName, row+1, row+1)
}
