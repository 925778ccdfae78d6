package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"expensetracker/internal/core"
)

func newPost(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestParseCreateExpense(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		ctype  string
		header string
		want   core.NewExpense
	}{
		{
			name:  "json body",
			body:  `{"amount":12.5,"category":"Food","description":"Lunch","date":"2024-01-01","idempotencyKey":"k1"}`,
			ctype: "application/json",
			want:  core.NewExpense{Amount: core.Money{Cents: 1250}, Category: "Food", Description: "Lunch", Date: "2024-01-01", IdempotencyKey: "k1"},
		},
		{
			name:  "amount as string with comma",
			body:  `{"amount":"3,99","category":"Food","description":"Coffee","date":"2024-01-02"}`,
			ctype: "application/json",
			want:  core.NewExpense{Amount: core.Money{Cents: 399}, Category: "Food", Description: "Coffee", Date: "2024-01-02"},
		},
		{
			name:   "header key used when body has none",
			body:   `{"amount":1,"category":"Misc","description":"Pen","date":"2024-01-03"}`,
			ctype:  "application/json",
			header: "hdr-1",
			want:   core.NewExpense{Amount: core.Money{Cents: 100}, Category: "Misc", Description: "Pen", Date: "2024-01-03", IdempotencyKey: "hdr-1"},
		},
		{
			name:   "body key wins over header",
			body:   `{"amount":1,"category":"Misc","description":"Pen","date":"2024-01-03","idempotencyKey":"body-1"}`,
			ctype:  "application/json",
			header: "hdr-1",
			want:   core.NewExpense{Amount: core.Money{Cents: 100}, Category: "Misc", Description: "Pen", Date: "2024-01-03", IdempotencyKey: "body-1"},
		},
		{
			name:  "null and negative amount read as missing",
			body:  `{"amount":-4,"category":null,"description":"  Tea \u0001 ","date":"2024-01-04"}`,
			ctype: "application/json",
			want:  core.NewExpense{Description: "Tea", Date: "2024-01-04"},
		},
		{
			name:   "date and key kept verbatim",
			body:   `{"amount":2,"category":" Food ","description":"Tea","date":" 2024-01-01\u0007 ","idempotencyKey":" k1 "}`,
			ctype:  "application/json",
			header: "ignored",
			want:   core.NewExpense{Amount: core.Money{Cents: 200}, Category: "Food", Description: "Tea", Date: " 2024-01-01\a ", IdempotencyKey: " k1 "},
		},
		{
			name:   "header key used as sent",
			body:   `{"amount":2,"category":"Food","description":"Tea","date":"01/02/2024"}`,
			ctype:  "application/json",
			header: "Key-ABC",
			want:   core.NewExpense{Amount: core.Money{Cents: 200}, Category: "Food", Description: "Tea", Date: "01/02/2024", IdempotencyKey: "Key-ABC"},
		},
		{
			name:  "form body",
			body:  url.Values{"amount": {"7.25"}, "category": {"Travel"}, "description": {"Bus"}, "date": {"2024-02-01"}}.Encode(),
			ctype: "application/x-www-form-urlencoded",
			want:  core.NewExpense{Amount: core.Money{Cents: 725}, Category: "Travel", Description: "Bus", Date: "2024-02-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newPost(tt.body, tt.ctype)
			if tt.header != "" {
				req.Header.Set(HeaderIdempotencyKey, tt.header)
			}
			got, err := ParseCreateExpense(req)
			if err != nil {
				t.Fatalf("ParseCreateExpense() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCreateExpense() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseCreateExpenseErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantField  bool
		wantReason string
		wantErr    error
	}{
		{name: "empty body", body: "  ", wantErr: errEmptyBody},
		{name: "malformed json", body: `{"amount":`, wantErr: errInvalidBody},
		{name: "json array", body: `[1,2]`, wantErr: errInvalidBody},
		{name: "non numeric amount", body: `{"amount":"lots"}`, wantField: true, wantReason: "amount must be a number"},
		{name: "amount out of range", body: `{"amount":1e30}`, wantField: true, wantReason: "amount out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCreateExpense(newPost(tt.body, "application/json"))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantField {
				var verr *core.ValidationError
				if !errors.As(err, &verr) || len(verr.Fields) != 1 || verr.Fields[0] != "amount" {
					t.Fatalf("expected amount validation error, got %v", err)
				}
				if verr.Reason != tt.wantReason {
					t.Errorf("reason = %q, want %q", verr.Reason, tt.wantReason)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseListQuery(t *testing.T) {
	q := ParseListQuery(url.Values{"category": {"Food"}, "sort": {"date_desc"}})
	if q.Category != "Food" || q.Sort != core.SortDateDesc {
		t.Errorf("ParseListQuery() = %+v", q)
	}

	q = ParseListQuery(url.Values{"sort": {"bogus"}})
	if q.Category != "" || q.Sort != core.SortAddedDesc {
		t.Errorf("ParseListQuery() default = %+v", q)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  hello  ", "hello"},
		{"a\x00b\x07c", "abc"},
		{"line1\nline2\ttab", "line1\nline2\ttab"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
