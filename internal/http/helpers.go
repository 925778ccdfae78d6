package http

import (
	"strings"
	"time"

	"expensetracker/internal/core"
)

type expenseResponse struct {
	ID             string  `json:"id"`
	Amount         float64 `json:"amount"`
	Category       string  `json:"category"`
	Description    string  `json:"description"`
	Date           string  `json:"date"`
	CreatedAt      string  `json:"created_at"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:             e.ID,
		Amount:         e.Amount.Float(),
		Category:       e.Category,
		Description:    e.Description,
		Date:           e.Date,
		CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339Nano),
		IdempotencyKey: e.IdempotencyKey,
	}
}

func toExpenseResponses(items []core.Expense) []expenseResponse {
	out := make([]expenseResponse, len(items))
	for i, e := range items {
		out[i] = toExpenseResponse(e)
	}
	return out
}

type categoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type summaryResponse struct {
	Total      float64         `json:"total"`
	Count      int             `json:"count"`
	ByCategory []categoryTotal `json:"by_category"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	out := summaryResponse{
		Total:      s.Total.Float(),
		Count:      s.Count,
		ByCategory: make([]categoryTotal, len(s.ByCategory)),
	}
	for i, c := range s.ByCategory {
		out.ByCategory[i] = categoryTotal{Category: c.Name, Total: c.Amount.Float()}
	}
	return out
}

type deleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// sanitizeInput removes control characters (except tab, newline and
// carriage return) and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
