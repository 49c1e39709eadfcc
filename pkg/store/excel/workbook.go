package excel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/de-tools/service-atlas/pkg/models/store"
)

// Workbook reads service sheets from an .xlsx file.
type Workbook struct {
	file *excelize.File
}

func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{file: f}, nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// SheetName returns name, or the first sheet when name is empty.
func (w *Workbook) SheetName(name string) (string, error) {
	if name != "" {
		if idx, err := w.file.GetSheetIndex(name); err != nil || idx < 0 {
			return "", fmt.Errorf("sheet %q not found", name)
		}
		return name, nil
	}
	sheets := w.file.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	return sheets[0], nil
}

// Header returns the trimmed column names of the first row.
func (w *Workbook) Header(sheet string) ([]string, error) {
	rows, err := w.file.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", sheet, err)
	}
	for i := range cols {
		cols[i] = strings.TrimSpace(cols[i])
	}
	return cols, nil
}

// Read returns every non-empty data row of sheet. Numeric cells become
// float64, except in dateColumns where Excel serial numbers become UTC
// timestamps. Text cells stay strings even when they look numeric, and
// empty cells are nil.
func (w *Workbook) Read(sheet string, dateColumns ...string) (store.RowSet, error) {
	header, err := w.Header(sheet)
	if err != nil {
		return store.RowSet{}, err
	}
	isDate := make([]bool, len(header))
	for i, col := range header {
		for _, d := range dateColumns {
			if col == d {
				isDate[i] = true
			}
		}
	}

	rows, err := w.file.Rows(sheet)
	if err != nil {
		return store.RowSet{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	set := store.EmptyRowSet(header)
	rowNum := 0
	for rows.Next() {
		rowNum++
		if rowNum == 1 {
			continue
		}
		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return store.RowSet{}, fmt.Errorf("read row %d of %s: %w", rowNum, sheet, err)
		}

		values := make([]any, len(header))
		empty := true
		for i := 0; i < len(header) && i < len(cells); i++ {
			v, err := w.cellValue(sheet, i+1, rowNum, cells[i], isDate[i])
			if err != nil {
				return store.RowSet{}, err
			}
			if v != nil {
				empty = false
			}
			values[i] = v
		}
		if !empty {
			set.Rows = append(set.Rows, values)
		}
	}
	return set, nil
}

func (w *Workbook) cellValue(sheet string, col, row int, raw string, date bool) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, nil
	}

	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	typ, err := w.file.GetCellType(sheet, axis)
	if err != nil {
		return nil, fmt.Errorf("cell type of %s: %w", axis, err)
	}
	if typ == excelize.CellTypeSharedString || typ == excelize.CellTypeInlineString {
		return raw, nil
	}
	if date {
		ts, err := excelize.ExcelDateToTime(num, false)
		if err != nil {
			return raw, nil
		}
		return ts.UTC().Round(time.Second), nil
	}
	return num, nil
}
