package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONResponseBuilder_Data(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Replayed().
		Header("X-Custom", "value").
		Data([]string{"a", "b"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if w.Header().Get(HeaderIdempotentReplayed) != "true" || w.Header().Get("X-Custom") != "value" {
		t.Errorf("headers not applied: %v", w.Header())
	}

	var body struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	if len(body.Data) != 2 || body.Data[0] != "a" {
		t.Errorf("data = %v", body.Data)
	}
}

func TestJSONResponseBuilder_EmptyBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(map[string]any{"bad": make(chan int)}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name     string
		builder  *JSONResponseBuilder
		wantCode int
		wantKind string
	}{
		{"BadRequest", BadRequestError("bad"), http.StatusBadRequest, "validation_error"},
		{"NotFound", NotFoundError("missing"), http.StatusNotFound, "not_found_error"},
		{"Conflict", ConflictError("dup"), http.StatusConflict, "conflict_error"},
		{"Internal", InternalServerError("oops"), http.StatusInternalServerError, "internal_error"},
		{"TooMany", TooManyRequestsError(), http.StatusTooManyRequests, "rate_limit_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantCode {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantCode)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["kind"] != tt.wantKind || body["error"] == "" {
				t.Errorf("body = %v", body)
			}
		})
	}
}
