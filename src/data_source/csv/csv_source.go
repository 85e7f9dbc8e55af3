package csv

import (
	"bufio"
	"bytes"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"biometric-insights/src/logger"
	"biometric-insights/src/models"
)

// candidateDelimiters are tried in order; ties go to the earlier one.
var candidateDelimiters = []rune{',', ';', '\t'}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type CSVReader struct {
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewCSVReader(log *logger.Logger) *CSVReader {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CSVReader{Logger: log}
}

func (r *CSVReader) Name() string {
	return "csv"
}

// -----------------------------------------------------------------------------

// SniffDelimiter picks the candidate that splits the header line into the
// most fields, ignoring separators inside quotes.
func SniffDelimiter(header string) rune {
	best, bestCount := candidateDelimiters[0], -1
	for _, d := range candidateDelimiters {
		count := 0
		quoted := false
		for _, c := range header {
			switch {
			case c == '"':
				quoted = !quoted
			case c == d && !quoted:
				count++
			}
		}
		if count > bestCount {
			best, bestCount = d, count
		}
	}
	return best
}

// -----------------------------------------------------------------------------

// ReadTable reads one export. Short records are padded to the header width.
func (r *CSVReader) ReadTable(source models.SourceKey, path string) (*models.MRawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return r.Parse(source, path, data)
}

// Parse reads an export already held in memory.
func (r *CSVReader) Parse(source models.SourceKey, path string, data []byte) (*models.MRawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	// 1. Sniff the delimiter from the header line
	firstLine, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	delim := SniffDelimiter(string(firstLine))

	cr := stdcsv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	// 2. Header
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", path)
		}
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	// 3. Records
	var rows [][]string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var perr *stdcsv.ParseError
			if !errors.As(err, &perr) {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			r.Logger.Warning("Skipping malformed record %d in %s: %v", line, path, err)
			continue
		}
		if len(rec) < len(header) {
			padded := make([]string, len(header))
			copy(padded, rec)
			rec = padded
		}
		rows = append(rows, rec)
	}

	r.Logger.Debug("Read %d %s records from %s (delimiter %q)", len(rows), source, path, delim)
	return models.NewRawTable(source, path, header, rows), nil
}
