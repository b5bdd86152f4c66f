package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
)

func TestExtractGID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://docs.google.com/spreadsheets/d/abc/edit#gid=123", "123"},
		{"https://docs.google.com/spreadsheets/d/abc/export?format=csv&gid=42", "42"},
		{"no gid here", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := ExtractGID(tc.input); got != tc.want {
			t.Errorf("ExtractGID(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestResolveDocID_Precedence(t *testing.T) {
	pasted := "https://docs.google.com/spreadsheets/d/FROM_URL-1/edit#gid=0"

	if got := ResolveDocID("explicit", pasted, "default"); got != "explicit" {
		t.Errorf("explicit should win, got %q", got)
	}
	if got := ResolveDocID("", pasted, "default"); got != "FROM_URL-1" {
		t.Errorf("pasted URL should win over default, got %q", got)
	}
	if got := ResolveDocID("", "not a url", "default"); got != "default" {
		t.Errorf("default should apply, got %q", got)
	}
}

func TestResolveGID(t *testing.T) {
	if got := ResolveGID("7", "x#gid=9"); got != "7" {
		t.Errorf("explicit gid should win, got %q", got)
	}
	if got := ResolveGID("", "x#gid=9"); got != "9" {
		t.Errorf("pasted gid should apply, got %q", got)
	}
}

func TestBuildExportURL(t *testing.T) {
	got := BuildExportURL("DOC", "123")
	want := "https://docs.google.com/spreadsheets/d/DOC/export?format=csv&gid=123"
	if got != want {
		t.Errorf("BuildExportURL = %q, want %q", got, want)
	}

	if got := BuildExportURL("DOC", ""); strings.Contains(got, "gid=") {
		t.Errorf("URL without gid should omit the parameter: %q", got)
	}
}

func TestLooksLikeDelimited(t *testing.T) {
	if !LooksLikeDelimited("a,b\nc,d\n") {
		t.Error("comma rows should look delimited")
	}
	if LooksLikeDelimited("just one line, even with commas") {
		t.Error("a single line is not delimited text")
	}
	if LooksLikeDelimited("line one\nline two") {
		t.Error("no delimiters at all")
	}
}

func fetchFrom(t *testing.T, handler http.HandlerFunc) (string, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := &Client{http: srv.Client(), base: srv.URL}
	return c.FetchCSV(context.Background(), "DOC", "1")
}

func TestFetchCSV_OK(t *testing.T) {
	text, err := fetchFrom(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte("a,b\nc,d\n"))
	})
	if err != nil {
		t.Fatalf("FetchCSV error: %v", err)
	}
	if text != "a,b\nc,d\n" {
		t.Errorf("text = %q", text)
	}
}

func TestFetchCSV_HTMLPayload(t *testing.T) {
	_, err := fetchFrom(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<!DOCTYPE html><html><body>sign in</body></html>"))
	})
	if !errors.Is(err, common.ErrHTMLPayload) {
		t.Errorf("err = %v, want ErrHTMLPayload", err)
	}
}

func TestFetchCSV_NonCSV(t *testing.T) {
	_, err := fetchFrom(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"not":"csv"}`))
	})
	if !errors.Is(err, common.ErrNotCSV) {
		t.Errorf("err = %v, want ErrNotCSV", err)
	}
}

func TestFetchCSV_HTTPError(t *testing.T) {
	_, err := fetchFrom(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("err = %v, want HTTP 403", err)
	}
}
