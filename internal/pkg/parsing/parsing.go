package parsing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

//ValidationError is returned when a file is missing columns that the pipeline cannot run without
type ValidationError struct {
	File           string
	MissingColumns []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("file %s is missing required columns: %s", e.File, strings.Join(e.MissingColumns, ", "))
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02",
}

//ParseTimestamp normalizes a feed timestamp to a UTC instant
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

type header map[string]int

func readHeader(r *csv.Reader, file string, required []string) (header, error) {
	record, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", file, err)
	}

	cols := header{}
	for i, name := range record {
		cols[strings.TrimSpace(name)] = i
	}

	missing := []string{}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, &ValidationError{File: file, MissingColumns: missing}
	}

	return cols, nil
}

func (h header) get(record []string, column string) string {
	idx, ok := h[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func openCSV(path string) (*os.File, *csv.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return f, r, nil
}

func forEachRecord(r *csv.Reader, fn func(record []string)) error {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fn(record)
	}
}
