// Package export writes analysis rows as CSV or JSON.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CirclesUBI/circles-analysis/pkg/analysis"
)

// ErrUnsupportedFormat is returned for a format tag other than csv or json.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an export format tag.
type Format string

const (
	// CSV writes a header row followed by one line per row, every field quoted.
	CSV Format = "csv"

	// JSON writes an array of objects with keys in column order.
	JSON Format = "json"
)

// ParseFormat validates a format tag.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case CSV:
		return CSV, nil
	case JSON:
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Write encodes the result rows to w.
func Write(w io.Writer, format Format, res *analysis.Result) error {
	switch format {
	case CSV:
		return writeCSV(w, res.Columns, res.Rows)
	case JSON:
		return writeJSON(w, res.Columns, res.Rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// WriteFile encodes the result rows to path, replacing any existing file.
func WriteFile(path string, format Format, res *analysis.Result) error {
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(f, format, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// encoding/csv only quotes when needed, so quoting is done here.
func writeCSV(w io.Writer, columns []string, rows []analysis.Row) error {
	bw := bufio.NewWriter(w)

	writeLine := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(f, `"`, `""`))
			bw.WriteByte('"')
		}
		bw.WriteByte('\n')
	}

	writeLine(columns)
	fields := make([]string, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			fields[i] = row[c]
		}
		writeLine(fields)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, columns []string, rows []analysis.Row) error {
	bw := bufio.NewWriter(w)

	bw.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteByte('{')
		for j, c := range columns {
			if j > 0 {
				bw.WriteByte(',')
			}
			key, _ := json.Marshal(c)
			value, _ := json.Marshal(row[c])
			bw.Write(key)
			bw.WriteByte(':')
			bw.Write(value)
		}
		bw.WriteByte('}')
	}
	bw.WriteByte(']')

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}
