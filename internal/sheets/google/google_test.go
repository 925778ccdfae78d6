package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expensetracker/internal/core"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	t.Run("inline wins", func(t *testing.T) {
		got, err := loadCredentials(Config{CredentialsJSON: `{"a":1}`, CredentialsFile: "/nope"})
		if err != nil || string(got) != `{"a":1}` {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sa.json")
		if err := os.WriteFile(path, []byte(`{"b":2}`), 0o600); err != nil {
			t.Fatal(err)
		}
		got, err := loadCredentials(Config{CredentialsFile: path})
		if err != nil || string(got) != `{"b":2}` {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		_, err := loadCredentials(Config{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")})
		if err == nil || !strings.Contains(err.Error(), "read service account file") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("none", func(t *testing.T) {
		_, err := loadCredentials(Config{})
		if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestClientWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Expenses"}
	ctx := context.Background()

	if _, err := c.Append(ctx, core.Expense{ID: "a"}); err == nil {
		t.Error("Append should fail without a service")
	}
	if err := c.DeleteExpense(ctx, "a"); err == nil {
		t.Error("DeleteExpense should fail without a service")
	}
}

func TestAppendWritesRawValues(t *testing.T) {
	var (
		inputOption string
		appended    gsheet.ValueRange
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`{"range":"Expenses!A1:A1","values":[]}`))
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":append"):
			inputOption = r.URL.Query().Get("valueInputOption")
			if err := json.NewDecoder(r.Body).Decode(&appended); err != nil {
				t.Errorf("decode append body: %v", err)
			}
			_, _ = w.Write([]byte(`{"updates":{"updatedRange":"Expenses!A1:F2"}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	svc, err := gsheet.NewService(ctx,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	c := &Client{svc: svc, spreadsheetID: "sheet-1", sheetName: "Expenses"}

	ref, err := c.Append(ctx, core.Expense{ID: "abc", Description: "=HYPERLINK(\"x\")", Amount: core.Money{Cents: 100}})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "Expenses!A1:F2" {
		t.Errorf("ref = %q", ref)
	}
	if inputOption != "RAW" {
		t.Errorf("valueInputOption = %q, want RAW", inputOption)
	}
	if len(appended.Values) != 2 || appended.Values[1][2] != `=HYPERLINK("x")` {
		t.Errorf("appended values = %v", appended.Values)
	}
}
