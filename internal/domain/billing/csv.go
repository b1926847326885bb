package billing

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
)

// ExportCSV renders an invoice statement as CSV: one row per session plus
// a trailing total row. It returns the file contents and a suggested
// filename.
func (s *Service) ExportCSV(ctx context.Context, id int64) ([]byte, string, error) {
	st, err := s.Statement(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{{"date", "time", "hours", "rate", "subtotal"}}
	for _, line := range st.Lines {
		records = append(records, []string{
			line.Date,
			line.TimeRange,
			strconv.FormatFloat(line.Hours, 'f', -1, 64),
			strconv.FormatInt(line.Rate, 10),
			strconv.FormatInt(line.Subtotal, 10),
		})
	}
	records = append(records, []string{"total", "", "", "", strconv.FormatInt(st.Invoice.TotalAmount, 10)})

	if err := w.WriteAll(records); err != nil {
		return nil, "", fmt.Errorf("writing csv: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_invoice.csv", st.StudentName, st.Invoice.CreatedAt.Format("20060102"))
	return buf.Bytes(), filename, nil
}
