// Package report writes the results table and the run summary.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/x1thexxx-lgtm/goserials/pkg/collector"
)

// WriteCSV writes the results table: a header row followed by one record per
// target in processing order. The file is created fresh on every run.
func WriteCSV(path string, rows []collector.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Server Address", "Serial Number"}); err != nil {
		f.Close()
		return fmt.Errorf("write results header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Target, row.Serial}); err != nil {
			f.Close()
			return fmt.Errorf("write result for %s: %w", row.Target, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush results: %w", err)
	}
	return f.Close()
}

// Summary is the machine-readable digest of one run.
type Summary struct {
	RunID        string `json:"run_id"`
	Timestamp    string `json:"timestamp"`
	Targets      int    `json:"targets"`
	OK           int    `json:"ok"`
	Connectivity int    `json:"connectivity_errors"`
	Auth         int    `json:"auth_errors"`
	Parse        int    `json:"parse_errors"`
	HTTP         int    `json:"http_errors"`
}

// WriteSummary drops a summary.json next to the results table.
func WriteSummary(path string, rep collector.Report) error {
	summary := Summary{
		RunID:        rep.RunID,
		Timestamp:    rep.StartedAt.Format(time.RFC3339),
		Targets:      len(rep.Rows),
		OK:           rep.OK,
		Connectivity: rep.Connectivity,
		Auth:         rep.Auth,
		Parse:        rep.Parse,
		HTTP:         rep.HTTP,
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary file: %w", err)
	}
	return nil
}
