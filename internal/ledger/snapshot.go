package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"TreasuryDash/internal/cashflow"
	"TreasuryDash/internal/logger"
)

// RawDocument is a ledger row as exported by the ERP: dates and amounts
// may come as strings in several formats.
type RawDocument struct {
	CounterpartyName string    `json:"counterpartyName"`
	CounterpartyID   string    `json:"counterpartyId"`
	DocumentRef      string    `json:"documentRef"`
	EmissionDate     string    `json:"emissionDate"`
	DueDate          string    `json:"dueDate"`
	Balance          rawAmount `json:"balance"`
	OriginTag        string    `json:"originTag"`
}

// rawAmount keeps a JSON number or string verbatim for ParseAmount.
type rawAmount string

func (a *rawAmount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		*a = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	*a = rawAmount(s)
	return nil
}

// Document converts r into a typed ledger document. Unreadable dates become
// null dates; an unreadable balance is an error.
func (r RawDocument) Document() (cashflow.LedgerDocument, error) {
	balance, err := cashflow.ParseAmount(string(r.Balance))
	if err != nil {
		return cashflow.LedgerDocument{}, err
	}
	return cashflow.LedgerDocument{
		CounterpartyName: strings.TrimSpace(r.CounterpartyName),
		CounterpartyID:   strings.TrimSpace(r.CounterpartyID),
		DocumentRef:      strings.TrimSpace(r.DocumentRef),
		EmissionDate:     cashflow.ParseDate(r.EmissionDate),
		DueDate:          cashflow.ParseDate(r.DueDate),
		Balance:          balance,
		OriginTag:        normalizeOrigin(r.OriginTag),
	}, nil
}

func normalizeOrigin(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return ""
	case "nacional", "domestic", "local":
		return cashflow.OriginDomestic
	case "internacional", "international", "extranjero", "foreign":
		return cashflow.OriginInternational
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

type rawSnapshot struct {
	AsOf        string        `json:"asOf"`
	Balances    []BankBalance `json:"balances"`
	Receivables []RawDocument `json:"receivables"`
	Payables    []RawDocument `json:"payables"`
}

// Snapshot is one fetch of the ERP and bank balances. It is immutable for
// the duration of a projection run.
type Snapshot struct {
	AsOf        cashflow.NullDate         `json:"asOf"`
	Balances    []BankBalance             `json:"balances"`
	Receivables []cashflow.LedgerDocument `json:"receivables"`
	Payables    []cashflow.LedgerDocument `json:"payables"`
	// SkippedRows counts rows dropped because their balance was unreadable.
	SkippedRows int `json:"skippedRows"`
}

// ParseSnapshot decodes a snapshot file body.
func ParseSnapshot(data []byte) (Snapshot, error) {
	const op = "ledger.ParseSnapshot"

	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}

	s := Snapshot{
		AsOf:     cashflow.ParseDate(raw.AsOf),
		Balances: raw.Balances,
	}
	if s.Balances == nil {
		s.Balances = []BankBalance{}
	}
	log := logger.WithComponent("ledger")
	convert := func(kind string, rows []RawDocument) []cashflow.LedgerDocument {
		docs := make([]cashflow.LedgerDocument, 0, len(rows))
		for i, row := range rows {
			doc, err := row.Document()
			if err != nil {
				s.SkippedRows++
				log.Warn().Err(err).Str("kind", kind).Int("row", i).Str("document", row.DocumentRef).Msg("Skipping ledger row")
				continue
			}
			docs = append(docs, doc)
		}
		return docs
	}
	s.Receivables = convert("receivable", raw.Receivables)
	s.Payables = convert("payable", raw.Payables)
	return s, nil
}

// LoadSnapshot reads a JSON snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	const op = "ledger.LoadSnapshot"

	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	s, err := ParseSnapshot(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	logger.WithComponent("ledger").Info().
		Str("path", path).
		Str("as_of", s.AsOf.String()).
		Int("receivables", len(s.Receivables)).
		Int("payables", len(s.Payables)).
		Int("balances", len(s.Balances)).
		Int("skipped", s.SkippedRows).
		Msg("Ledger snapshot loaded")
	return s, nil
}
