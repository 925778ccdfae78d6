package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOptionsOrigins(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"*"}},
		{"*", []string{"*"}},
		{"https://a.example", []string{"https://a.example"}},
		{" https://a.example , https://b.example ,", []string{"https://a.example", "https://b.example"}},
	}
	for _, tt := range tests {
		got := Options(tt.in).AllowedOrigins
		if len(got) != len(tt.want) {
			t.Fatalf("Options(%q) origins = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("Options(%q) origins = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestPreflightAllowsIdempotencyKey(t *testing.T) {
	h := Middleware("https://app.example")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/expenses", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type,idempotency-key")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("Allow-Origin = %q", got)
	}
	if rr.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Fatal("Allow-Headers missing")
	}
}

func TestDisallowedOriginGetsNoCORSHeaders(t *testing.T) {
	h := Middleware("https://app.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/expenses", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("Allow-Origin = %q, want empty", got)
	}
}
