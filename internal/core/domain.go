package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// SortAddedDesc orders by creation time, newest first.
	SortAddedDesc SortOrder = "added_desc"
	// SortDateDesc orders by the caller-supplied date, newest first, with
	// creation time as tie-break.
	SortDateDesc SortOrder = "date_desc"
)

const (
	MaxDescriptionLength    = 200
	MaxIdempotencyKeyLength = 128
)

type (
	SortOrder string

	// Expense is one persisted expense record. Records are immutable once
	// stored; the only mutation is deletion.
	Expense struct {
		ID             string
		Amount         Money
		Category       string
		Description    string
		Date           string // stored verbatim
		CreatedAt      time.Time
		IdempotencyKey string // empty means no key
	}

	// NewExpense carries the caller-supplied fields of a creation request.
	NewExpense struct {
		Amount         Money
		Category       string
		Description    string
		Date           string
		IdempotencyKey string
	}

	ListQuery struct {
		Category string // exact match, empty means all
		Sort     SortOrder
	}
)

// ParseSortOrder maps the query-string form to a SortOrder. Anything other
// than "date_desc" falls back to the default ordering.
func ParseSortOrder(s string) SortOrder {
	if strings.TrimSpace(s) == string(SortDateDesc) {
		return SortDateDesc
	}
	return SortAddedDesc
}

// Validate reports every missing or malformed field at once.
func (n NewExpense) Validate() error {
	var missing []string
	if n.Amount.Cents <= 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(n.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(n.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(n.Date) == "" {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Reason: "missing required fields"}
	}
	if utf8.RuneCountInString(n.Description) > MaxDescriptionLength {
		return &ValidationError{Fields: []string{"description"}, Reason: "description too long (max 200 characters)"}
	}
	if utf8.RuneCountInString(n.IdempotencyKey) > MaxIdempotencyKeyLength {
		return &ValidationError{Fields: []string{"idempotencyKey"}, Reason: "idempotency key too long (max 128 characters)"}
	}
	return nil
}

// Record builds the unsaved record for n. ID and CreatedAt are left for the
// store to assign.
func (n NewExpense) Record() Expense {
	return Expense{
		Amount:         n.Amount,
		Category:       n.Category,
		Description:    n.Description,
		Date:           n.Date,
		IdempotencyKey: n.IdempotencyKey,
	}
}

// HasIdempotencyKey reports whether the record takes part in deduplication.
func (e Expense) HasIdempotencyKey() bool {
	return e.IdempotencyKey != ""
}

// Less reports whether a sorts before b under order. Stores that cannot push
// ordering down to the database use it directly.
func (o SortOrder) Less(a, b Expense) bool {
	if o == SortDateDesc && a.Date != b.Date {
		return a.Date > b.Date
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// Matches reports whether e passes the category filter of q.
func (q ListQuery) Matches(e Expense) bool {
	return q.Category == "" || e.Category == q.Category
}
