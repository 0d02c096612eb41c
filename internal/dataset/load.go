package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	apperrors "tradecharts/internal/errors"
)

// LoadOptions controls how an extract is read.
type LoadOptions struct {
	// Sheet names the XLSX worksheet; empty selects the first sheet.
	Sheet string
	// Encoding of CSV input: "utf-8" (default) or "latin1".
	Encoding string
	Logger   *slog.Logger
}

func (o LoadOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// cancelCheckInterval is how many rows are read between context checks.
const cancelCheckInterval = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extensions accepted by Load.
var (
	CSVExtensions   = []string{".csv", ".txt"}
	ExcelExtensions = []string{".xlsx", ".xlsm"}
)

// Supported reports whether Load can read a file with this name.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(CSVExtensions, ext) || slices.Contains(ExcelExtensions, ext)
}

// Load reads a trade extract, choosing the reader by file extension.
func Load(ctx context.Context, path string, opts LoadOptions) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return nil, fmt.Errorf("%w: input extension %q", apperrors.ErrUnsupportedFormat, ext)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewNotFoundError(path).WithContext("cause", err.Error())
	}
	defer file.Close()

	var table *Table
	if slices.Contains(ExcelExtensions, ext) {
		table, err = LoadXLSX(ctx, file, opts)
	} else {
		table, err = LoadCSV(ctx, file, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	opts.logger().InfoContext(ctx, "trade extract loaded",
		"path", path,
		"rows", table.Len(),
		"columns", len(table.order),
	)
	return table, nil
}

// LoadCSV reads a CSV extract with a header row.
func LoadCSV(ctx context.Context, r io.Reader, opts LoadOptions) (*Table, error) {
	switch strings.ToLower(opts.Encoding) {
	case "", "utf-8", "utf8":
		br := bufio.NewReader(r)
		if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = br.Discard(len(utf8BOM))
		}
		r = br
	case "latin1", "iso-8859-1":
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported encoding %q", opts.Encoding), apperrors.ErrUnsupportedFormat)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewParsingError("empty CSV input", nil)
	}
	if err != nil {
		return nil, apperrors.NewParsingError("read CSV header", err)
	}

	var rows [][]string
	for {
		if len(rows)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("context cancelled during CSV load: %w", err)
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("read CSV record", err)
		}
		rows = append(rows, record)
	}

	return FromRecords(header, rows, opts.logger())
}

// LoadXLSX reads the named (or first) worksheet of a workbook. The first row
// is the header. Cells are read unformatted so numbers keep full precision.
func LoadXLSX(ctx context.Context, r io.Reader, opts LoadOptions) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("open workbook", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewParsingError("workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled during workbook load: %w", err)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", sheet)).WithContext("cause", err.Error())
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("sheet %q is empty", sheet), nil)
	}

	opts.logger().DebugContext(ctx, "worksheet read", "sheet", sheet, "rows", len(rows)-1)
	return FromRecords(rows[0], rows[1:], opts.logger())
}

// FromRecords builds a table from a header and string rows. Header names are
// trimmed; duplicates get a ".N" suffix. Short rows are padded with blanks and
// cells beyond the header are dropped.
func FromRecords(header []string, rows [][]string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := trimCell(h)
		if n := seen[name]; n > 0 {
			name = name + "." + strconv.Itoa(n)
		}
		seen[trimCell(h)]++
		names[i] = name
	}

	columns := make([][]string, len(names))
	for i := range columns {
		columns[i] = make([]string, len(rows))
	}

	ragged := 0
	for r, row := range rows {
		if len(row) != len(names) {
			ragged++
		}
		for c := range names {
			if c < len(row) {
				columns[c][r] = row[c]
			}
		}
	}
	if ragged > 0 {
		logger.Warn("rows with unexpected field count", "count", ragged, "expected", len(names))
	}

	table := NewTable(len(rows))
	for i, name := range names {
		if err := table.AddText(name, columns[i]); err != nil {
			return nil, err
		}
	}
	return table, nil
}

func trimCell(s string) string {
	return strings.TrimSpace(s)
}
