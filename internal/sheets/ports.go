package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// Ports for outbound adapters.
type (
	ExpenseWriter interface {
		// Append writes e unless a row for e.ID already exists.
		Append(ctx context.Context, e core.Expense) (rowRef string, err error)
	}

	ExpenseDeleter interface {
		// DeleteExpense removes the row for id. A missing row is not an error.
		DeleteExpense(ctx context.Context, id string) error
	}

	// Mirror replicates records into an external spreadsheet.
	Mirror interface {
		ExpenseWriter
		ExpenseDeleter
	}
)

// Header is the first row of a mirror sheet.
var Header = []string{"ID", "Date", "Description", "Amount", "Category", "Created At"}
