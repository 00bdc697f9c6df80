package excel

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"placementdash/domain/sheet"
	"placementdash/internal"
	"placementdash/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader reads datasets from local Excel or CSV files
type DataReader struct {
	logger *internal.Logger
}

// NewDataReader creates a new local file reader
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DataReader{logger: logger}
}

var _ ports.RowSource = (*DataReader)(nil)

// FetchRows reads ds.File from disk on every call. For workbooks, ds.Range
// selects the sheet by name (anything after "!" is ignored); when it names
// no sheet the first sheet is used.
func (r *DataReader) FetchRows(ctx context.Context, ds ports.Dataset) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fileType, ok := DetectFileType(ds.File)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", ds.File)
	}
	if _, err := os.Stat(ds.File); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(string(fileType)), ds.File)
	}

	r.logger.Debug("[DataReader] Reading %s file for %s: %s", fileType, ds.Name, ds.File)

	switch fileType {
	case FileTypeCSV:
		return r.readCSV(ds.File)
	default:
		return r.readExcel(ds.File, ds.Range)
	}
}

func (r *DataReader) readExcel(path, rng string) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := pickSheet(f.GetSheetList(), rng)
	if sheetName == "" {
		return nil, fmt.Errorf("Excel file has no sheets: %s", path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	for i, row := range rows {
		for j, cell := range row {
			rows[i][j] = strings.TrimSpace(cell)
		}
	}

	r.logger.Debug("[DataReader] Sheet %s read in %.2fms (%d rows)",
		sheetName, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSV(path string) ([][]string, error) {
	startTime := time.Now()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	rows := sheet.ParseCSV(string(data))
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func pickSheet(sheets []string, rng string) string {
	if len(sheets) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(rng, "!")
	name = strings.Trim(strings.TrimSpace(name), "'")
	for _, s := range sheets {
		if s == name {
			return s
		}
	}
	return sheets[0]
}
