// Package sheets reads datasets through the authenticated Google Sheets v4
// API using the process's service account.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"placementdash/internal"
	"placementdash/internal/credentials"
	"placementdash/ports"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Reader fetches a value range from a spreadsheet
type Reader struct {
	creds      *credentials.Handle
	logger     *internal.Logger
	newService func(ctx context.Context) (*sheetsapi.Service, error)

	once   sync.Once
	svc    *sheetsapi.Service
	svcErr error
}

// NewReader creates a reader that authenticates with creds. The API client
// is built on first use.
func NewReader(creds *credentials.Handle, logger *internal.Logger) *Reader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	r := &Reader{creds: creds, logger: logger}
	r.newService = func(ctx context.Context) (*sheetsapi.Service, error) {
		return sheetsapi.NewService(ctx,
			option.WithCredentialsJSON(creds.JSON),
			option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope),
		)
	}
	return r
}

var _ ports.RowSource = (*Reader)(nil)

// FetchRows reads ds.Range of ds.SpreadsheetID. Missing cells become "".
func (r *Reader) FetchRows(ctx context.Context, ds ports.Dataset) ([][]string, error) {
	if r.creds != nil && r.creds.Err != nil {
		return nil, r.creds.Err
	}

	svc, err := r.service()
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets client: %w", err)
	}

	startTime := time.Now()
	resp, err := svc.Spreadsheets.Values.Get(ds.SpreadsheetID, ds.Range).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	rows := ValuesToRows(resp.Values)
	r.logger.Debug("[SheetsReader] %s range %s read in %.2fms (%d rows)",
		ds.Name, ds.Range, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *Reader) service() (*sheetsapi.Service, error) {
	r.once.Do(func() {
		r.svc, r.svcErr = r.newService(context.Background())
	})
	return r.svc, r.svcErr
}

// ValuesToRows converts the API's loosely typed grid to trimmed strings.
func ValuesToRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok {
				cells[j] = strings.TrimSpace(s)
			} else {
				cells[j] = strings.TrimSpace(fmt.Sprint(v))
			}
		}
		rows[i] = cells
	}
	return rows
}
