package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"placementdash/internal"
	"placementdash/internal/errors"
	"placementdash/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Open prepares a connection pool without dialing; connection problems
// surface on the first fetch.
func Open(databaseURL string) (*sqlx.DB, error) {
	if databaseURL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

// tableSource reads a whole table as rows, column names first
type tableSource struct {
	db     *sqlx.DB
	logger *internal.Logger
}

// NewTableSource creates a read-only row source over db
func NewTableSource(db *sqlx.DB, logger *internal.Logger) ports.RowSource {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &tableSource{db: db, logger: logger}
}

// FetchRows selects every row of ds.Table
func (s *tableSource) FetchRows(ctx context.Context, ds ports.Dataset) ([][]string, error) {
	query := "SELECT * FROM " + QuoteTable(ds.Table)

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", ds.Table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	out := [][]string{columns}

	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = CellString(v)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	s.logger.Debug("[TableSource] %s read from %s (%d rows)", ds.Name, ds.Table, len(out)-1)
	return out, nil
}

// QuoteTable quotes an optionally schema-qualified table name.
func QuoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(strings.TrimSpace(p))
	}
	return strings.Join(parts, ".")
}

// CellString renders a scanned driver value the way a spreadsheet cell
// would display it.
func CellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return strings.TrimSpace(string(val))
	case string:
		return strings.TrimSpace(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
