package export

import (
	"fmt"
	"io"

	"TreasuryDash/internal/cashflow"
	"TreasuryDash/internal/dashboard"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the cash-flow workbook.
const (
	SheetProjection = "Projection"
	SheetSummary    = "Summary"
	SheetAging      = "Aging"
	SheetWeeks      = "Weeks"
	SheetOutlook    = "Outlook"
)

// Report is what goes into the workbook. Weeks and Outlook are optional.
type Report struct {
	Projection      cashflow.Projection
	Summary         cashflow.Summary
	ReceivableAging cashflow.AgingReport
	PayableAging    cashflow.AgingReport
	Weeks           []cashflow.WeekBucket
	Outlook         []cashflow.MonthOutlook
}

// FromDashboard exports the 30-day view of d.
func FromDashboard(d dashboard.Dashboard) Report {
	return Report{
		Projection:      d.Monthly.Projection,
		Summary:         d.Monthly.Summary,
		ReceivableAging: d.ReceivableAging,
		PayableAging:    d.PayableAging,
		Weeks:           d.Monthly.Weeks,
		Outlook:         d.AnnualOutlook,
	}
}

type sheetWriter struct {
	f      *excelize.File
	sheet  string
	header int
	money  int
	err    error
}

func (s *sheetWriter) row(r int, values ...interface{}) {
	if s.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, r)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetSheetRow(s.sheet, cell, &values)
}

func (s *sheetWriter) headers(r int, names ...string) {
	values := make([]interface{}, len(names))
	for i, n := range names {
		values[i] = n
	}
	s.row(r, values...)
	if s.err != nil || len(names) == 0 {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, r)
	last, _ := excelize.CoordinatesToCellName(len(names), r)
	s.err = s.f.SetCellStyle(s.sheet, first, last, s.header)
}

// moneyColumns applies the amount format to columns [from, to] of rows
// [firstRow, lastRow].
func (s *sheetWriter) moneyColumns(from, to, firstRow, lastRow int) {
	if s.err != nil || lastRow < firstRow {
		return
	}
	first, _ := excelize.CoordinatesToCellName(from, firstRow)
	last, _ := excelize.CoordinatesToCellName(to, lastRow)
	s.err = s.f.SetCellStyle(s.sheet, first, last, s.money)
}

type sheetSpec struct {
	name  string
	write func(*sheetWriter, Report)
}

func amount(d decimal.Decimal) float64 { return d.InexactFloat64() }

// Render builds the workbook. The caller closes it.
func Render(rep Report) (*excelize.File, error) {
	const op = "export.Render"

	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: header style: %w", op, err)
	}
	numFmt := "#,##0"
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: money style: %w", op, err)
	}

	sheets := []sheetSpec{
		{SheetProjection, writeProjection},
		{SheetSummary, writeSummary},
		{SheetAging, writeAging},
	}
	if len(rep.Weeks) > 0 {
		sheets = append(sheets, sheetSpec{SheetWeeks, writeWeeks})
	}
	if len(rep.Outlook) > 0 {
		sheets = append(sheets, sheetSpec{SheetOutlook, writeOutlook})
	}

	for i, sh := range sheets {
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), sh.name)
		} else {
			_, err = f.NewSheet(sh.name)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: sheet %s: %w", op, sh.name, err)
		}
		w := &sheetWriter{f: f, sheet: sh.name, header: header, money: money}
		sh.write(w, rep)
		if w.err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: sheet %s: %w", op, sh.name, w.err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeProjection(w *sheetWriter, rep Report) {
	w.headers(1, "Date", "Inflows", "Payables", "Recurring", "Total outflows", "Net flow", "Running balance")
	for i, e := range rep.Projection.Days {
		w.row(i+2, e.Date.String(),
			amount(e.Inflows), amount(e.OutflowsFromPayables), amount(e.OutflowsFromRecurring),
			amount(e.TotalOutflows), amount(e.NetFlow), amount(e.RunningBalance))
	}
	w.moneyColumns(2, 7, 2, len(rep.Projection.Days)+1)
}

func writeSummary(w *sheetWriter, rep Report) {
	s := rep.Summary
	critical, criticalNet := "", 0.0
	if s.CriticalDay != nil {
		critical, criticalNet = s.CriticalDay.Date.String(), amount(s.CriticalDay.NetFlow)
	}
	w.headers(1, "Indicator", "Value")
	rows := [][]interface{}{
		{"Start", s.Start.String()},
		{"Horizon (days)", s.HorizonDays},
		{"Opening balance", amount(s.OpeningBalance)},
		{"Total inflows", amount(s.TotalInflows)},
		{"Total outflows", amount(s.TotalOutflows)},
		{"Net flow", amount(s.FlowNet)},
		{"Closing balance", amount(s.ClosingBalance)},
		{"Critical day", critical},
		{"Critical day net flow", criticalNet},
		{"High payment alert", s.HighPaymentAlert},
		{"Low balance days", len(s.LowBalanceDays)},
	}
	for i, r := range rows {
		w.row(i+2, r...)
	}

	r := len(rows) + 3
	w.headers(r, "Top inflows", "Date", "Document", "Amount")
	for i, d := range s.TopInflows {
		w.row(r+1+i, d.Counterparty, d.Date.String(), d.DocumentRef, amount(d.Amount))
	}
	w.moneyColumns(4, 4, r+1, r+len(s.TopInflows))

	r += len(s.TopInflows) + 2
	w.headers(r, "Top outflows", "Date", "Document", "Amount")
	for i, d := range s.TopOutflows {
		w.row(r+1+i, d.Counterparty, d.Date.String(), d.DocumentRef, amount(d.Amount))
	}
	w.moneyColumns(4, 4, r+1, r+len(s.TopOutflows))
}

func writeAging(w *sheetWriter, rep Report) {
	w.headers(1, "Bucket", "Receivables", "Receivable docs", "Payables", "Payable docs")
	buckets := cashflow.AgingBuckets()
	for i, b := range buckets {
		w.row(i+2, b.String(),
			amount(rep.ReceivableAging.Amount(b)), rep.ReceivableAging.Counts[b],
			amount(rep.PayableAging.Amount(b)), rep.PayableAging.Counts[b])
	}
	total := len(buckets) + 2
	w.row(total, "Total",
		amount(rep.ReceivableAging.Total), rep.ReceivableAging.Count,
		amount(rep.PayableAging.Total), rep.PayableAging.Count)
	w.moneyColumns(2, 2, 2, total)
	w.moneyColumns(4, 4, 2, total)
}

func writeWeeks(w *sheetWriter, rep Report) {
	w.headers(1, "Week", "From", "To", "Inflows", "Outflows", "Net flow", "Running balance")
	for i, wk := range rep.Weeks {
		w.row(i+2, wk.Week, wk.From.String(), wk.To.String(),
			amount(wk.Inflows), amount(wk.Outflows), amount(wk.NetFlow), amount(wk.RunningBalance))
	}
	w.moneyColumns(4, 7, 2, len(rep.Weeks)+1)
}

func writeOutlook(w *sheetWriter, rep Report) {
	w.headers(1, "Month", "Inflows", "Outflows", "Net flow", "Running balance", "Estimated")
	for i, m := range rep.Outlook {
		w.row(i+2, fmt.Sprintf("%04d-%02d", m.Year, int(m.Month)),
			amount(m.Inflows), amount(m.Outflows), amount(m.NetFlow), amount(m.RunningBalance), m.Estimated)
	}
	w.moneyColumns(2, 5, 2, len(rep.Outlook)+1)
}

// Write renders rep and streams the workbook to out.
func Write(out io.Writer, rep Report) error {
	f, err := Render(rep)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("export.Write: %w", err)
	}
	return nil
}

// Save renders rep into path.
func Save(path string, rep Report) error {
	f, err := Render(rep)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export.Save: %s: %w", path, err)
	}
	return nil
}
