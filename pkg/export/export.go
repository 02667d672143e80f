// Package export renders report rows as CSV or XLSX. Columns and headers
// come from the rows' `csv` struct tags.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
)

// Content types for HTTP responses.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// CSV writes rows (a slice of tagged structs) with a header line.
func CSV(w io.Writer, rows interface{}) error {
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("export: csv: %w", err)
	}
	return nil
}

// Table flattens rows into a header line followed by one record per row.
func Table(rows interface{}) ([][]string, error) {
	var buf bytes.Buffer
	if err := CSV(&buf, rows); err != nil {
		return nil, err
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("export: table: %w", err)
	}
	return records, nil
}

// Sheet is one worksheet of a workbook.
type Sheet struct {
	Name string
	Rows interface{}
}

// XLSX writes a workbook with one worksheet per sheet, in order. Numeric
// cells are stored as numbers.
func XLSX(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("export: xlsx: no sheets")
	}

	f := excelize.NewFile()
	for i, sh := range sheets {
		records, err := Table(sh.Rows)
		if err != nil {
			return err
		}

		if i == 0 {
			f.SetSheetName("Sheet1", sh.Name)
		} else {
			f.NewSheet(sh.Name)
		}
		for r, record := range records {
			for c, cell := range record {
				axis := column(c) + strconv.Itoa(r+1)
				if n, err := strconv.ParseFloat(cell, 64); err == nil && r > 0 {
					f.SetCellValue(sh.Name, axis, n)
					continue
				}
				f.SetCellValue(sh.Name, axis, cell)
			}
		}
	}
	f.SetActiveSheet(1)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: xlsx: %w", err)
	}
	return nil
}

// column converts a zero-based index to a spreadsheet column name: 0 is A,
// 26 is AA.
func column(i int) string {
	name := ""
	for i >= 0 {
		name = string(rune('A'+i%26)) + name
		i = i/26 - 1
	}
	return name
}
