// Diagnostic tool for the data.stad.gent portal and the local cache.
//
// Probes each dataset endpoint the caches consume, reports HTTP status,
// response time and record count, and compares against the row counts in
// the local SQLite cache. Useful when a refresh run keeps failing and the
// logs alone do not say whether the portal or the cache is at fault.
//
// Usage:
//
//	go run scripts/diagnose_portal.go [db-path]
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	_ "modernc.org/sqlite"
)

// DatasetDiagnostic is the probe result for one portal dataset.
type DatasetDiagnostic struct {
	Dataset       string `json:"dataset"`
	URL           string `json:"url"`
	Status        string `json:"status"` // "OK", "HTTP_ERROR", "PARSE_ERROR", "EMPTY", "TIMEOUT"
	HTTPCode      int    `json:"http_code"`
	RecordCount   int    `json:"record_count"`
	CachedRows    int64  `json:"cached_rows"`
	ErrorMessage  string `json:"error_message,omitempty"`
	ResponseTime  int64  `json:"response_time_ms"`
	ContentLength int64  `json:"content_length"`
}

type dataset struct {
	name  string
	url   string
	table string
}

const portalBase = "https://data.stad.gent/api/explore/v2.1/catalog/datasets"

var datasets = []dataset{
	{
		name:  "articles",
		url:   portalBase + "/recente-nieuwsberichten-van-stadgent/records?order_by=publicatiedatum%20DESC&limit=20",
		table: "articles",
	},
	{
		name:  "carparks",
		url:   portalBase + "/bezetting-parkeergarages-real-time/records?limit=20",
		table: "carparks",
	},
	{
		name:  "studylocations",
		url:   portalBase + "/bloklocaties-gent/records?limit=100",
		table: "studylocations",
	},
}

func main() {
	dbPath := "gentcache.db"
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}

	database, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", dbPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "open cache database: %v\n", err)
		database = nil
	}
	if database != nil {
		defer database.Close()
	}

	client := &http.Client{Timeout: 30 * time.Second}
	results := make([]DatasetDiagnostic, 0, len(datasets))
	failures := 0

	for _, ds := range datasets {
		diag := probeDataset(client, ds)
		diag.CachedRows = countCachedRows(database, ds.table)
		if diag.Status != "OK" {
			failures++
		}
		results = append(results, diag)
	}

	printReport(results)

	if failures > 0 {
		os.Exit(1)
	}
}

func probeDataset(client *http.Client, ds dataset) DatasetDiagnostic {
	diag := DatasetDiagnostic{Dataset: ds.name, URL: ds.url, CachedRows: -1}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ds.url, nil)
	if err != nil {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}
	req.Header.Set("User-Agent", "gentcache-diagnose/1.0")

	start := time.Now()
	resp, err := client.Do(req)
	diag.ResponseTime = time.Since(start).Milliseconds()
	if err != nil {
		diag.Status = "TIMEOUT"
		diag.ErrorMessage = err.Error()
		return diag
	}
	defer resp.Body.Close()

	diag.HTTPCode = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		return diag
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}
	diag.ContentLength = int64(len(body))

	var envelope struct {
		TotalCount int               `json:"total_count"`
		Results    []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		diag.Status = "PARSE_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	diag.RecordCount = len(envelope.Results)
	if diag.RecordCount == 0 {
		diag.Status = "EMPTY"
		return diag
	}

	diag.Status = "OK"
	return diag
}

func countCachedRows(database *sql.DB, table string) int64 {
	if database == nil {
		return -1
	}

	var count int64
	// table names come from the static dataset list above
	if err := database.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		return -1
	}
	return count
}

func printReport(results []DatasetDiagnostic) {
	fmt.Printf("%-16s %-12s %6s %8s %8s %10s\n", "DATASET", "STATUS", "HTTP", "RECORDS", "CACHED", "TIME(ms)")
	for _, r := range results {
		cached := "n/a"
		if r.CachedRows >= 0 {
			cached = fmt.Sprintf("%d", r.CachedRows)
		}
		fmt.Printf("%-16s %-12s %6d %8d %8s %10d\n",
			r.Dataset, r.Status, r.HTTPCode, r.RecordCount, cached, r.ResponseTime)
		if r.ErrorMessage != "" {
			fmt.Printf("  error: %s\n", r.ErrorMessage)
		}
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err == nil {
		fmt.Printf("\n%s\n", out)
	}
}
