package cash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"TreasuryDash/api"
	"TreasuryDash/api/constants"
	"TreasuryDash/internal/cashflow"
	"TreasuryDash/internal/config"
	"TreasuryDash/internal/dashboard"
	"TreasuryDash/internal/export"
	"TreasuryDash/internal/ledger"
	"TreasuryDash/internal/logger"
	"TreasuryDash/internal/treasury"

	"github.com/shopspring/decimal"
)

// Handler serves the cash-flow endpoints over a shared Env.
type Handler struct {
	env *treasury.Env
}

func NewHandler(env *treasury.Env) *Handler {
	return &Handler{env: env}
}

// projectionQuery is the parsed ?horizon=&start=&opening= triple.
type projectionQuery struct {
	Horizon int
	Start   time.Time
	Opening *decimal.Decimal
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(constants.DateFormat, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf(constants.ErrInvalidDate, name)
	}
	return t, nil
}

func parseProjectionQuery(r *http.Request, defaultHorizon int) (projectionQuery, error) {
	q := projectionQuery{Horizon: defaultHorizon}
	values := r.URL.Query()

	if raw := values.Get(constants.QueryHorizon); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > config.MaxHorizonDays {
			return q, fmt.Errorf(constants.ErrInvalidHorizon, config.MaxHorizonDays)
		}
		q.Horizon = n
	}

	start, err := parseDateParam(r, constants.QueryStart)
	if err != nil {
		return q, err
	}
	q.Start = start

	if raw := values.Get(constants.QueryOpening); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return q, fmt.Errorf(constants.ErrInvalidAmount, constants.QueryOpening)
		}
		q.Opening = &d
	}
	return q, nil
}

func (h *Handler) loadSnapshot(ctx context.Context, w http.ResponseWriter) (ledger.Snapshot, bool) {
	snapshot, err := h.env.LoadSnapshot(ctx)
	if err != nil {
		logger.WithComponent("cash-api").Error().Err(err).Msg("Loading ledger snapshot failed")
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrSnapshotLoad)
		return ledger.Snapshot{}, false
	}
	return snapshot, true
}

// project runs one projection for q over snapshot with the current config.
func (h *Handler) project(snapshot ledger.Snapshot, cfg cashflow.Config, q projectionQuery) (cashflow.Projection, dashboard.Normalized) {
	start := h.env.StartFor(q.Start, snapshot)
	opening := h.env.OpeningBalance(snapshot).Total
	if q.Opening != nil {
		opening = *q.Opening
	}
	norm := dashboard.Normalize(snapshot, cfg, h.env.Sign)
	p := cashflow.Project(cashflow.ProjectionInput{
		Start:          start,
		HorizonDays:    q.Horizon,
		OpeningBalance: opening,
		Receivables:    norm.Receivables,
		Payables:       norm.Payables,
	}, cfg)
	return p, norm
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	api.RespondWithResult(w, true, "")
}

func (h *Handler) Projection(w http.ResponseWriter, r *http.Request) {
	q, err := parseProjectionQuery(r, config.DefaultHorizonDays)
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	snapshot, ok := h.loadSnapshot(r.Context(), w)
	if !ok {
		return
	}
	p, _ := h.project(snapshot, h.env.Store.Current(), q)
	api.RespondWithJSON(w, http.StatusOK, p)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	q, err := parseProjectionQuery(r, config.DefaultHorizonDays)
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	snapshot, ok := h.loadSnapshot(r.Context(), w)
	if !ok {
		return
	}
	cfg := h.env.Store.Current()
	p, _ := h.project(snapshot, cfg, q)
	api.RespondWithJSON(w, http.StatusOK, cashflow.Summarize(p, cfg, cashflow.DefaultSummaryOptions()))
}

type agingResponse struct {
	AsOf        cashflow.NullDate    `json:"asOf"`
	Receivables cashflow.AgingReport `json:"receivables"`
	Payables    cashflow.AgingReport `json:"payables"`
}

func (h *Handler) Aging(w http.ResponseWriter, r *http.Request) {
	asOf, err := parseDateParam(r, constants.QueryAsOf)
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	snapshot, ok := h.loadSnapshot(r.Context(), w)
	if !ok {
		return
	}
	asOf = h.env.StartFor(asOf, snapshot)
	norm := dashboard.Normalize(snapshot, h.env.Store.Current(), h.env.Sign)
	api.RespondWithJSON(w, http.StatusOK, agingResponse{
		AsOf:        cashflow.Some(asOf),
		Receivables: cashflow.AgeReceivables(norm.Receivables, asOf),
		Payables:    cashflow.AgePayables(norm.Payables, asOf),
	})
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.env.BuildDashboard(r.Context())
	if err != nil {
		logger.WithComponent("cash-api").Error().Err(err).Msg("Building dashboard failed")
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrSnapshotLoad)
		return
	}
	api.RespondWithJSON(w, http.StatusOK, d)
}

type configResponse struct {
	Config         cashflow.ConfigFile `json:"config"`
	UsedDefaults   bool                `json:"usedDefaults"`
	DefaultsReason string              `json:"defaultsReason,omitempty"`
	Warnings       []string            `json:"warnings,omitempty"`
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.env.Store.Current()
	api.RespondWithJSON(w, http.StatusOK, configResponse{
		Config:         cfg.File(),
		UsedDefaults:   cfg.UsedDefaults(),
		DefaultsReason: cfg.DefaultsReason(),
	})
}

func (h *Handler) PutConfig(w http.ResponseWriter, r *http.Request) {
	var f cashflow.ConfigFile
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
		return
	}
	cfg, warnings, err := h.env.Store.Replace(f)
	if err != nil {
		logger.WithComponent("cash-api").Error().Err(err).Msg("Saving configuration failed")
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrConfigSave)
		return
	}
	logger.Audit(fmt.Sprintf("Cash-flow configuration replaced (%d warnings)", len(warnings)))
	api.RespondWithJSON(w, http.StatusOK, configResponse{Config: cfg.File(), Warnings: warnings})
}

func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	api.RespondWithPayload(w, true, "", h.env.Alerts.GetNotifications())
}

func (h *Handler) ClearAlerts(w http.ResponseWriter, r *http.Request) {
	h.env.Alerts.ClearNotifications()
	api.RespondWithResult(w, true, "")
}

// Export streams the workbook. Without ?horizon= it exports the dashboard's
// 30-day view with the annual outlook; with it, that horizon only.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var rep export.Report
	if r.URL.Query().Get(constants.QueryHorizon) == "" && r.URL.Query().Get(constants.QueryStart) == "" {
		d, err := h.env.BuildDashboard(r.Context())
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrSnapshotLoad)
			return
		}
		rep = export.FromDashboard(d)
	} else {
		q, err := parseProjectionQuery(r, dashboard.MonthlyHorizon)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		snapshot, ok := h.loadSnapshot(r.Context(), w)
		if !ok {
			return
		}
		cfg := h.env.Store.Current()
		p, norm := h.project(snapshot, cfg, q)
		asOf := p.Start.Time
		rep = export.Report{
			Projection:      p,
			Summary:         cashflow.Summarize(p, cfg, cashflow.DefaultSummaryOptions()),
			ReceivableAging: cashflow.AgeReceivables(norm.Receivables, asOf),
			PayableAging:    cashflow.AgePayables(norm.Payables, asOf),
			Weeks:           cashflow.WeeklyRollup(p),
		}
	}

	f, err := export.Render(rep)
	if err != nil {
		logger.WithComponent("cash-api").Error().Err(err).Msg("Rendering workbook failed")
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrExportFailed)
		return
	}
	defer f.Close()

	w.Header().Set(constants.ContentTypeText, constants.ContentTypeXLSX)
	w.Header().Set(constants.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", config.WorkbookFileName))
	if _, err := f.WriteTo(w); err != nil {
		logger.WithComponent("cash-api").Error().Err(err).Msg("Streaming workbook failed")
	}
}

func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if h.env.SSE == nil {
		api.RespondWithError(w, http.StatusServiceUnavailable, constants.ErrStreamUnsupported)
		return
	}
	h.env.SSE.HandleSSE(w, r)
}
