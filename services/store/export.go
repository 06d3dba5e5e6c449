package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	scrapeerrors "sjsage522/rentalscraper/pkg/errors"
)

// ExportCSV writes a header with the table's column names followed by every row.
// It returns the number of data rows written.
func (s *SQLStore) ExportCSV(ctx context.Context, table Table, w io.Writer) (int, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT * FROM `+table.quoted()+` ORDER BY id`)
	if err != nil {
		return 0, scrapeerrors.NewStorage("store", fmt.Sprintf("failed to query %s", table), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, scrapeerrors.NewStorage("store", "failed to read columns", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return 0, err
	}

	count := 0
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return count, scrapeerrors.NewStorage("store", "failed to scan row", err)
		}

		record := make([]string, len(values))
		for i, v := range values {
			record[i] = formatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, scrapeerrors.NewStorage("store", "failed to iterate rows", err)
	}

	writer.Flush()
	return count, writer.Error()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
