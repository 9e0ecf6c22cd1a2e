package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Column names in the NYC Open Data air-quality export.
const (
	ColumnName      = "Name"
	ColumnStartDate = "Start_Date"
	ColumnValue     = "Data Value"
	ColumnPlace     = "Geo Place Name"
)

// Row is one raw record keyed by header name.
type Row map[string]string

// ReadRows reads a CSV document with a header row. Records that fail to
// parse are skipped. On a read error the rows decoded so far are returned
// along with the error.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	skipped := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			skipped++
			continue
		}
		if err != nil {
			return rows, fmt.Errorf("read record %d: %w", len(rows)+skipped+1, err)
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
