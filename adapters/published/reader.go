// Package published reads datasets exported through a spreadsheet's
// "publish to web" CSV link. No credentials are involved.
package published

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"placementdash/domain/sheet"
	"placementdash/internal"
	"placementdash/ports"
)

// CSVReader fetches a published CSV export over HTTP
type CSVReader struct {
	httpClient *http.Client
	logger     *internal.Logger
}

// NewCSVReader creates a reader. A nil client gets one with timeout.
func NewCSVReader(client *http.Client, timeout time.Duration, logger *internal.Logger) *CSVReader {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &CSVReader{httpClient: client, logger: logger}
}

var _ ports.RowSource = (*CSVReader)(nil)

// FetchRows downloads ds.PublishedURL and tokenizes the body. Any non-2xx
// status is an error; a 2xx body is returned as rows even if it is not CSV.
func (r *CSVReader) FetchRows(ctx context.Context, ds ports.Dataset) ([][]string, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ds.PublishedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("failed to fetch published CSV: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	rows := sheet.ParseCSV(string(body))
	r.logger.Debug("[CSVReader] %s fetched in %.2fms (%d rows)",
		ds.Name, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}
