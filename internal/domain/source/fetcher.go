// Package source fetches the raw CSV text of a spreadsheet tab from the
// Google Sheets export endpoint, and owns the docID/gid resolution rules
// around it. It is the pipeline's only I/O boundary: no retries, no
// policy, just one context-aware GET and payload sanity checks.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
)

var (
	gidParamRe   = regexp.MustCompile(`[?&#]gid=([0-9]+)`)
	docIDPathRe  = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	htmlopenerRe = regexp.MustCompile(`(?i)^\s*(<!doctype html|<html)`)
	csvCTRe      = regexp.MustCompile(`(^|;)\s*text/csv(;|$)`)
)

// ExtractGID pulls a gid= parameter out of any pasted string (typically a
// spreadsheet edit URL); "" when absent.
func ExtractGID(s string) string {
	m := gidParamRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractDocID pulls the document ID out of a pasted spreadsheet URL; ""
// when absent.
func ExtractDocID(s string) string {
	m := docIDPathRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// ResolveDocID applies the precedence rules: an explicit ID wins, then an
// ID detected in a pasted URL, then the configured default.
func ResolveDocID(explicit, pasted, fallback string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if v := ExtractDocID(pasted); v != "" {
		return v
	}
	return fallback
}

// ResolveGID applies the gid precedence: explicit input, then a gid=
// parameter in a pasted URL.
func ResolveGID(explicit, pasted string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	return ExtractGID(pasted)
}

const defaultBaseURL = "https://docs.google.com"

// BuildExportURL assembles the CSV export URL for one tab. Without a gid
// Google exports the default tab.
func BuildExportURL(docID, gid string) string {
	return buildExportURL(defaultBaseURL, docID, gid)
}

func buildExportURL(base, docID, gid string) string {
	u := base + "/spreadsheets/d/" + url.PathEscape(docID) + "/export?format=csv"
	if gid == "" {
		return u
	}
	return u + "&gid=" + url.QueryEscape(gid)
}

// LooksLikeDelimited reports whether text plausibly is CSV/TSV: at least
// two lines in the leading sample, one containing a comma or tab.
func LooksLikeDelimited(text string) bool {
	sample := text
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	lines := 0
	delimited := false
	for _, line := range strings.FieldsFunc(sample, func(r rune) bool { return r == '\n' || r == '\r' }) {
		lines++
		if strings.ContainsAny(line, ",\t") {
			delimited = true
		}
	}
	return lines >= 2 && delimited
}

// Fetcher obtains the raw CSV text for one spreadsheet tab.
type Fetcher interface {
	FetchCSV(ctx context.Context, docID, gid string) (string, error)
}

// Client is the HTTP Fetcher against the Google export endpoint.
type Client struct {
	http *http.Client
	base string
}

// NewClient builds a Client; a nil httpClient gets a sane default timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{http: httpClient, base: defaultBaseURL}
}

// FetchCSV GETs one tab's CSV export and validates the payload shape. An
// HTML payload means the document is private or the endpoint redirected to
// a login page; that is reported distinctly so the caller can explain it.
func (c *Client) FetchCSV(ctx context.Context, docID, gid string) (string, error) {
	exportURL := buildExportURL(c.base, docID, gid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch csv: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read csv body: %w", err)
	}

	text := string(body)
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))

	if csvCTRe.MatchString(contentType) || LooksLikeDelimited(text) {
		return text, nil
	}
	if htmlopenerRe.MatchString(text) || strings.Contains(strings.ToLower(text), "<html") {
		return "", fmt.Errorf("content-type %q: %w", contentType, common.ErrHTMLPayload)
	}
	return "", fmt.Errorf("content-type %q: %w", contentType, common.ErrNotCSV)
}

// SampleLoader serves a local sample CSV for the manual fallback path; it
// ignores docID/gid entirely.
type SampleLoader struct {
	Path string
}

// FetchCSV reads the sample file.
func (s SampleLoader) FetchCSV(_ context.Context, _, _ string) (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("load sample data: %w", err)
	}
	return string(data), nil
}
