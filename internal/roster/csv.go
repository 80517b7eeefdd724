package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ReadCSV decodes a draft-results CSV upload into a Table.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, &MalformedRosterError{Reason: "draft file is empty"}
		}
		return Table{}, fmt.Errorf("failed to read draft header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	table := Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read draft row: %w", err)
		}
		if isBlank(record) {
			continue
		}
		if len(record) != len(header) {
			return Table{}, &MalformedRosterError{
				Reason: fmt.Sprintf("row %d has %d cells, header has %d", len(table.Rows)+1, len(record), len(header)),
			}
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
