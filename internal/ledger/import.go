package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"TreasuryDash/internal/cashflow"
	"TreasuryDash/internal/logger"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrMissingColumn       = errors.New("missing required column")
	ErrNoRows              = errors.New("file has no data rows")
)

type column int

const (
	colCounterparty column = iota
	colCounterpartyID
	colDocumentRef
	colEmission
	colDue
	colBalance
	colOrigin
	columnCount
)

var columnNames = [columnCount]string{"counterparty", "counterparty_id", "document_ref", "emission_date", "due_date", "balance", "origin"}

// headerAliases maps normalized header text to a column. The Spanish names
// are the ERP's analysis-by-account export headers.
var headerAliases = map[string]column{
	"auxiliar":          colCounterparty,
	"counterparty":      colCounterparty,
	"counterparty_name": colCounterparty,
	"cliente":           colCounterparty,
	"proveedor":         colCounterparty,
	"idauxiliar":        colCounterpartyID,
	"rut":               colCounterpartyID,
	"counterparty_id":   colCounterpartyID,
	"documento":         colDocumentRef,
	"document_ref":      colDocumentRef,
	"document":          colDocumentRef,
	"emision":           colEmission,
	"emisión":           colEmission,
	"emission_date":     colEmission,
	"vencimiento":       colDue,
	"due_date":          colDue,
	"saldo":             colBalance,
	"balance":           colBalance,
	"origen":            colOrigin,
	"origin":            colOrigin,
	"origin_tag":        colOrigin,
}

var requiredColumns = []column{colCounterparty, colBalance}

// Import is the result of reading a tabular ledger export.
type Import struct {
	Documents   []cashflow.LedgerDocument
	SkippedRows int
}

// LoadDocuments reads ledger documents from a .csv, .xlsx or .xls export.
// The first row holds the headers; rows whose balance cannot be read are
// skipped and counted.
func LoadDocuments(path string) (Import, error) {
	const op = "ledger.LoadDocuments"

	rows, err := readRows(path)
	if err != nil {
		return Import{}, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	imp, err := documentsFromRows(rows)
	if err != nil {
		return Import{}, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	logger.WithComponent("ledger").Info().
		Str("path", path).
		Int("documents", len(imp.Documents)).
		Int("skipped", imp.SkippedRows).
		Msg("Ledger export imported")
	return imp, nil
}

func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	case ".xls":
		return readXLS(path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, filepath.Ext(path))
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	xl, err := excelize.OpenReader(f)
	if err != nil {
		return nil, err
	}
	defer xl.Close()

	return xl.GetRows(xl.GetSheetName(0))
}

// maxXLSRows caps how many rows are pulled from a legacy workbook.
const maxXLSRows = 1 << 20

// readXLS reads the first worksheet of a BIFF8 workbook. Rows the file does
// not define come back empty and are skipped as blank.
func readXLS(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	book, err := xls.OpenReader(f, "utf-8")
	if err != nil {
		return nil, err
	}
	if book == nil || book.NumSheets() == 0 {
		return nil, fmt.Errorf("no sheets found")
	}

	sheet := book.GetSheet(0)
	if sheet.MaxRow == 0 {
		return nil, nil
	}
	rows := book.ReadAllCells(maxXLSRows)
	if len(rows) > int(sheet.MaxRow)+1 {
		rows = rows[:int(sheet.MaxRow)+1]
	}
	return rows, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.NewReplacer(" ", "_", "-", "_", ".", "").Replace(h)
}

func documentsFromRows(rows [][]string) (Import, error) {
	if len(rows) < 2 {
		return Import{}, ErrNoRows
	}

	var index [columnCount]int
	for i := range index {
		index[i] = -1
	}
	for i, h := range rows[0] {
		if c, ok := headerAliases[normalizeHeader(h)]; ok && index[c] < 0 {
			index[c] = i
		}
	}
	for _, c := range requiredColumns {
		if index[c] < 0 {
			return Import{}, fmt.Errorf("%w: %s", ErrMissingColumn, columnNames[c])
		}
	}

	cell := func(row []string, c column) string {
		i := index[c]
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	log := logger.WithComponent("ledger")
	imp := Import{Documents: make([]cashflow.LedgerDocument, 0, len(rows)-1)}
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		raw := RawDocument{
			CounterpartyName: cell(row, colCounterparty),
			CounterpartyID:   cell(row, colCounterpartyID),
			DocumentRef:      cell(row, colDocumentRef),
			EmissionDate:     cell(row, colEmission),
			DueDate:          cell(row, colDue),
			Balance:          rawAmount(cell(row, colBalance)),
			OriginTag:        cell(row, colOrigin),
		}
		doc, err := raw.Document()
		if err != nil {
			imp.SkippedRows++
			log.Debug().Err(err).Int("row", n+2).Msg("Skipping ledger row")
			continue
		}
		imp.Documents = append(imp.Documents, doc)
	}
	return imp, nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
