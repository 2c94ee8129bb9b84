package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrPasswordProtected marks workbooks the pipeline cannot open. The job
// fails cleanly instead of crashing mid-parse.
var ErrPasswordProtected = errors.New("spreadsheet is password protected")

var ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx or .csv")

// Sheet is the raw grid of one parsed spreadsheet: the header row plus every
// data row, all cells as strings. HeaderRow is the 1-based physical position
// of the header in the file, so row-log entries can cite real row numbers
// even when leading blank rows were stripped.
type Sheet struct {
	Headers   []string
	HeaderRow int
	Rows      [][]string
}

// ParseSpreadsheet reads the whole file into memory. The format is picked by
// extension; the first non-empty row is treated as the header.
func ParseSpreadsheet(fileName string, content io.Reader) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		return parseXlsx(content)
	case ".csv":
		return parseCsv(content)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func parseXlsx(content io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(content)
	if err != nil {
		if isPasswordError(err) {
			return nil, ErrPasswordProtected
		}
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %s: %v", sheetName, err)
	}
	return buildSheet(rows)
}

func parseCsv(content io.Reader) (*Sheet, error) {
	reader := csv.NewReader(content)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %v", err)
		}
		rows = append(rows, record)
	}
	return buildSheet(rows)
}

func buildSheet(rows [][]string) (*Sheet, error) {
	for i, row := range rows {
		if !emptyRow(row) {
			return &Sheet{Headers: row, HeaderRow: i + 1, Rows: rows[i+1:]}, nil
		}
	}
	return nil, errors.New("file contains no data")
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func isPasswordError(err error) bool {
	if errors.Is(err, excelize.ErrWorkbookPassword) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "password")
}

// CellAt returns the trimmed cell at the mapped column, or "" when the
// mapping is absent or the row is too short. Spreadsheet rows routinely
// come back ragged.
func CellAt(row []string, col *int) string {
	if col == nil || *col < 0 || *col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[*col])
}
