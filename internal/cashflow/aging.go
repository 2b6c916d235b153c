package cashflow

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// AgingBucket is one of the five credit-risk tranches.
type AgingBucket int

const (
	BucketCurrent AgingBucket = iota
	Bucket1To30
	Bucket31To60
	Bucket61To90
	BucketOver90
	bucketCount
)

var bucketLabels = [bucketCount]string{"vigente", "1-30", "31-60", "61-90", ">90"}

// AgingBuckets lists the buckets in report order.
func AgingBuckets() []AgingBucket {
	return []AgingBucket{BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, BucketOver90}
}

func (b AgingBucket) String() string {
	if b < 0 || b >= bucketCount {
		return "unknown"
	}
	return bucketLabels[b]
}

// ClassifyAging buckets an elapsed-day count. Zero and negative counts are
// current.
func ClassifyAging(days int) AgingBucket {
	switch {
	case days <= 0:
		return BucketCurrent
	case days <= 30:
		return Bucket1To30
	case days <= 60:
		return Bucket31To60
	case days <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// AgingReport sums balances per bucket. Total and Count are accumulated in
// the same pass that fills the buckets.
type AgingReport struct {
	AsOf     time.Time
	Amounts  [bucketCount]decimal.Decimal
	Counts   [bucketCount]int
	Total    decimal.Decimal
	Count    int
	Excluded int // documents without the reference date
}

func newAgingReport(asOf time.Time) AgingReport {
	r := AgingReport{AsOf: DateOf(asOf), Total: decimal.Zero}
	for i := range r.Amounts {
		r.Amounts[i] = decimal.Zero
	}
	return r
}

func (r *AgingReport) add(days int, amount decimal.Decimal) {
	b := ClassifyAging(days)
	r.Amounts[b] = r.Amounts[b].Add(amount)
	r.Counts[b]++
	r.Total = r.Total.Add(amount)
	r.Count++
}

// Amount returns the summed balance of bucket b.
func (r AgingReport) Amount(b AgingBucket) decimal.Decimal {
	return r.Amounts[b]
}

// AgeReceivables classifies receivables by days elapsed since emission.
// Receivables without an emission date are counted in Excluded only.
func AgeReceivables(recs []NormalizedReceivable, asOf time.Time) AgingReport {
	r := newAgingReport(asOf)
	for _, rec := range recs {
		if !rec.EmissionDate.Valid {
			r.Excluded++
			continue
		}
		r.add(DaysBetween(rec.EmissionDate.Time, r.AsOf), rec.Balance)
	}
	return r
}

// AgePayables classifies payables by days overdue against their original
// due date. Payables without a due date are counted in Excluded only.
func AgePayables(pays []NormalizedPayable, asOf time.Time) AgingReport {
	r := newAgingReport(asOf)
	for _, p := range pays {
		if !p.DueDate.Valid {
			r.Excluded++
			continue
		}
		r.add(DaysBetween(p.DueDate.Time, r.AsOf), p.Balance)
	}
	return r
}

// MarshalJSON writes the buckets under their labels, in report order,
// followed by total, count and excluded.
func (r AgingReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	buf.WriteString(`"asOf":"` + r.AsOf.Format(DateFormat) + `",`)
	for _, b := range AgingBuckets() {
		label, _ := json.Marshal(b.String())
		buf.Write(label)
		buf.WriteString(`:"` + r.Amounts[b].String() + `",`)
	}
	buf.WriteString(`"total":"` + r.Total.String() + `",`)
	counts := make(map[string]int, bucketCount)
	for _, b := range AgingBuckets() {
		counts[b.String()] = r.Counts[b]
	}
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"counts":`)
	buf.Write(countsJSON)
	buf.WriteString(`,"count":`)
	buf.WriteString(strconv.Itoa(r.Count))
	buf.WriteString(`,"excluded":`)
	buf.WriteString(strconv.Itoa(r.Excluded))
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
