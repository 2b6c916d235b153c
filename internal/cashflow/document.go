package cashflow

import (
	"github.com/shopspring/decimal"
)

// Origin tags of payables.
const (
	OriginDomestic      = "domestic"
	OriginInternational = "international"
)

// LedgerDocument is one open receivable or payable as read from the ERP
// snapshot. Balance keeps the source sign.
type LedgerDocument struct {
	CounterpartyName string          `json:"counterpartyName"`
	CounterpartyID   string          `json:"counterpartyId"`
	DocumentRef      string          `json:"documentRef"`
	EmissionDate     NullDate        `json:"emissionDate"`
	DueDate          NullDate        `json:"dueDate"`
	Balance          decimal.Decimal `json:"balance"`
	OriginTag        string          `json:"originTag,omitempty"`
}

// SignConvention tells the normalizer how the source signs payable balances.
type SignConvention int

const (
	// CreditNegative: payables arrive with negative balances (ERP
	// analysis-by-account reports).
	CreditNegative SignConvention = iota
	// CreditPositive: payables arrive already as positive magnitudes.
	CreditPositive
)

// NormalizedReceivable is a receivable with a positive balance, its resolved
// payment term and the Friday it is expected to be collected.
type NormalizedReceivable struct {
	LedgerDocument
	PaymentTermDays         int      `json:"paymentTermDays"`
	ProjectedCollectionDate NullDate `json:"projectedCollectionDate"`
}

// NormalizedPayable is a payable with a positive balance and its due date
// moved off weekends.
type NormalizedPayable struct {
	LedgerDocument
	AdjustedDueDate NullDate `json:"adjustedDueDate"`
}

// Skipped records a document the normalizer left out.
type Skipped struct {
	DocumentRef      string `json:"documentRef"`
	CounterpartyName string `json:"counterpartyName"`
	Reason           string `json:"reason"`
}

const reasonNonPositive = "non-positive balance"

// NormalizeReceivables keeps receivables with a positive balance and projects
// their collection date: emission date plus the counterparty's payment term,
// or the document's own due date when there is no emission date, pushed
// through ForceToFridayCycle. Documents whose dates cannot be read keep a null
// collection date; they still count for totals.
func NormalizeReceivables(docs []LedgerDocument, cfg Config) ([]NormalizedReceivable, []Skipped) {
	out := make([]NormalizedReceivable, 0, len(docs))
	var skipped []Skipped
	for _, doc := range docs {
		if !doc.Balance.IsPositive() {
			skipped = append(skipped, skip(doc, reasonNonPositive))
			continue
		}

		days := cfg.PaymentTermDays(doc.CounterpartyName)
		candidate := doc.DueDate
		if doc.EmissionDate.Valid {
			candidate = doc.EmissionDate.AddDays(days)
		}

		out = append(out, NormalizedReceivable{
			LedgerDocument:          doc,
			PaymentTermDays:         days,
			ProjectedCollectionDate: ForceToFridayCycle(candidate),
		})
	}
	return out, skipped
}

// NormalizePayables keeps payables with an exposure under the given sign
// convention, stores the balance as a positive magnitude and moves weekend due
// dates back to Friday.
func NormalizePayables(docs []LedgerDocument, sign SignConvention) ([]NormalizedPayable, []Skipped) {
	out := make([]NormalizedPayable, 0, len(docs))
	var skipped []Skipped
	for _, doc := range docs {
		magnitude := doc.Balance
		if sign == CreditNegative {
			magnitude = doc.Balance.Neg()
		}
		if !magnitude.IsPositive() {
			skipped = append(skipped, skip(doc, reasonNonPositive))
			continue
		}

		normalized := doc
		normalized.Balance = magnitude
		out = append(out, NormalizedPayable{
			LedgerDocument:  normalized,
			AdjustedDueDate: ShiftWeekendBackToFriday(doc.DueDate),
		})
	}
	return out, skipped
}

func skip(doc LedgerDocument, reason string) Skipped {
	return Skipped{DocumentRef: doc.DocumentRef, CounterpartyName: doc.CounterpartyName, Reason: reason}
}
