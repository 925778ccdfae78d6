// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"expensetracker/internal/core"
)

// HeaderIdempotencyKey is the header alternative to the idempotencyKey body
// field.
const HeaderIdempotencyKey = "Idempotency-Key"

var (
	errEmptyBody   = errors.New("request body is empty")
	errInvalidBody = errors.New("invalid request body")
)

// RequestBodyParser reads a request body once and exposes its fields
// whether it was sent as a JSON object or form-encoded.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]json.RawMessage
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as a JSON object or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.err = errEmptyBody
		return p.err
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]json.RawMessage)
		if err := json.Unmarshal(trimmed, &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errInvalidBody, err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errInvalidBody, p.err)
	}
	return p.err
}

// Get returns a field as sanitized text. See Raw for how values are read.
func (p *RequestBodyParser) Get(key string) string {
	return sanitizeInput(p.Raw(key))
}

// Raw returns a field exactly as submitted. JSON strings are unquoted, other
// JSON scalars keep their literal form, null and absent fields are empty.
func (p *RequestBodyParser) Raw(key string) string {
	if p.jsonData != nil {
		raw, ok := p.jsonData[key]
		if !ok {
			return ""
		}
		return rawText(raw)
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return ""
	}
	return string(raw)
}

// ParseCreateExpense builds a creation request from r. The body key wins
// over the Idempotency-Key header when both are present. Date and key are
// opaque to the service and kept verbatim.
func ParseCreateExpense(r *http.Request) (core.NewExpense, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.NewExpense{}, err
	}

	cents, err := parseAmount(p.Get("amount"))
	if err != nil {
		return core.NewExpense{}, err
	}

	key := p.Raw("idempotencyKey")
	if key == "" {
		key = r.Header.Get(HeaderIdempotencyKey)
	}

	return core.NewExpense{
		Amount:         core.Money{Cents: cents},
		Category:       p.Get("category"),
		Description:    p.Get("description"),
		Date:           p.Raw("date"),
		IdempotencyKey: key,
	}, nil
}

// parseAmount converts the submitted amount to cents. Absent, zero and
// negative amounts yield 0 so validation reports them as missing; text that
// is not a number and values too large to hold are validation errors of
// their own.
func parseAmount(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	cents, err := core.ParseDecimalToCents(s)
	switch {
	case err == nil:
		return cents, nil
	case errors.Is(err, core.ErrNonPositiveAmount):
		return 0, nil
	case errors.Is(err, core.ErrAmountOutOfRange):
		return 0, &core.ValidationError{Fields: []string{"amount"}, Reason: "amount out of range"}
	default:
		return 0, &core.ValidationError{Fields: []string{"amount"}, Reason: "amount must be a number"}
	}
}

// ParseListQuery reads the category filter and sort order from the query
// string. The category is matched exactly, so it is not trimmed.
func ParseListQuery(query url.Values) core.ListQuery {
	return core.ListQuery{
		Category: query.Get("category"),
		Sort:     core.ParseSortOrder(query.Get("sort")),
	}
}
