package excel

import (
	"path/filepath"
	"strings"
)

// FileType identifies how a local dataset file is decoded
type FileType string

const (
	FileTypeXLSX FileType = "xlsx"
	FileTypeCSV  FileType = "csv"
)

// DetectFileType maps a path's extension to a FileType; ok is false for
// anything the reader cannot decode.
func DetectFileType(path string) (FileType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FileTypeXLSX, true
	case ".csv":
		return FileTypeCSV, true
	}
	return "", false
}
