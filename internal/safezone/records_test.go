package safezone

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/crimson-sun/szaudit/internal/model"
)

func TestFormatWindowTime(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 123_000_000, time.UTC)
	if got := FormatWindowTime(ts); got != "2024-01-02T03:04:05.123Z" {
		t.Fatalf("unexpected format: %q", got)
	}
	// Non-UTC inputs are normalized.
	loc := time.FixedZone("plus2", 2*3600)
	if got := FormatWindowTime(ts.In(loc)); got != "2024-01-02T03:04:05.123Z" {
		t.Fatalf("expected UTC normalization, got %q", got)
	}
	// Whole seconds keep the fractional field.
	whole := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := FormatWindowTime(whole); got != "2024-01-02T03:04:05.000Z" {
		t.Fatalf("expected zero millis kept, got %q", got)
	}
}

func TestFetchRecords_PathAndWindow(t *testing.T) {
	var gotPath, gotFrom, gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		fmt.Fprint(w, `<records><record id="R1"/></records>`)
	}))
	defer srv.Close()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	recs, err := testClient(srv, model.Account{CustomerName: "acme"}).
		FetchRecords(context.Background(), "Z1", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/audit/Z1/records" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotFrom != "2024-01-01T00:00:00.000Z" || gotTo != "2024-01-02T00:00:00.000Z" {
		t.Fatalf("unexpected window: from=%q to=%q", gotFrom, gotTo)
	}
	if len(recs) != 1 || recs[0].AttrValue("id") != "R1" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestFetchRecords_NamespacedDocumentOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<records xmlns=%q><record id="R1"/><record id="R2"/><record id="R3"/></records>`, AuditNS)
	}))
	defer srv.Close()

	recs, err := testClient(srv, model.Account{CustomerName: "acme"}).
		FetchRecords(context.Background(), "Z1", time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i, want := range []string{"R1", "R2", "R3"} {
		if got := recs[i].AttrValue("id"); got != want {
			t.Fatalf("record %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestFetchRecords_ZoneIDEscaped(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, `<records/>`)
	}))
	defer srv.Close()

	_, err := testClient(srv, model.Account{CustomerName: "acme"}).
		FetchRecords(context.Background(), "zone/1", time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/api/audit/zone%2F1/records" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
}

func TestFetchRecords_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<records/>`)
	}))
	defer srv.Close()

	recs, err := testClient(srv, model.Account{CustomerName: "acme"}).
		FetchRecords(context.Background(), "Z1", time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no records, got %d", len(recs))
	}
}
