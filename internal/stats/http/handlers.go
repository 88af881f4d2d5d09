package statshttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/praxis-pm/praxis/internal/ledger"
	"github.com/praxis-pm/praxis/internal/platform/httpx"
	"github.com/praxis-pm/praxis/internal/stats"
	"github.com/praxis-pm/praxis/internal/stats/export"
)

const requestTimeout = 10 * time.Second

// DashboardService defines the aggregated dashboard contract used by the handler.
type DashboardService interface {
	Dashboard(ctx context.Context, f stats.Filter) (stats.Dashboard, ledger.Range, error)
}

// Handler coordinates HTTP requests for the practice dashboard.
type Handler struct {
	logger    *slog.Logger
	service   DashboardService
	validator *validator.Validate
	csvPool   sync.Pool
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService) *Handler {
	h := &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// MountRoutes registers dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "export rate limit exceeded")
		}),
	)

	r.Get("/", h.handleDashboard)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/export.csv", h.handleCSV)
		gr.Get("/export.pdf", h.handlePDF)
	})
}

type rangeVM struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type dashboardResponse struct {
	Range rangeVM `json:"range"`
	stats.Dashboard
}

type dashboardQuery struct {
	Range   string `validate:"required,oneof=week month quarter year"`
	Refresh string `validate:"omitempty,oneof=true false 1 0"`
}

func (h *Handler) parseQuery(r *http.Request) (stats.Filter, error) {
	values := r.URL.Query()
	q := dashboardQuery{
		Range:   strings.TrimSpace(values.Get("range")),
		Refresh: strings.TrimSpace(values.Get("refresh")),
	}
	if q.Range == "" {
		q.Range = string(ledger.RangeMonth)
	}
	if err := h.validator.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return stats.Filter{}, fmt.Errorf("%w: invalid %s", httpx.ErrValidation, strings.ToLower(fieldErrs[0].Field()))
		}
		return stats.Filter{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	tag, err := ledger.ParseRangeTag(q.Range)
	if err != nil {
		return stats.Filter{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return stats.Filter{
		Tag:     tag,
		Refresh: q.Refresh == "true" || q.Refresh == "1",
	}, nil
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dash, rng, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.logError("load dashboard", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboardResponse{
		Range:     rangeVM{Start: rng.Start.Format(time.RFC3339), End: rng.End.Format(time.RFC3339)},
		Dashboard: dash,
	})
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dash, rng, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.logError("load dashboard", err)
		httpx.RespondError(w, err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	sections := []func() error{
		func() error { return export.WriteTotalsCSV(buf, dash, rng) },
		func() error { return export.WriteSeriesCSV(buf, "Income Over Time", dash.IncomeOverTime) },
		func() error { return export.WriteSeriesCSV(buf, "Sessions Over Time", dash.SessionsOverTime) },
		func() error { return export.WriteSeriesCSV(buf, "Sessions By Hour", dash.SessionsByHour) },
		func() error { return export.WriteSeriesCSV(buf, "Sessions By Weekday", dash.SessionsByWeekday) },
		func() error { return export.WriteStatusCSV(buf, "Sessions By Status", dash.SessionsByStatus) },
		func() error { return export.WriteStatusCSV(buf, "Payments By Status", dash.PaymentsByStatus) },
		func() error { return export.WriteTopPatientsCSV(buf, dash.TopPatients) },
	}
	for i, write := range sections {
		if i > 0 {
			buf.WriteString("\n")
		}
		if err := write(); err != nil {
			h.logError("write dashboard csv", err)
			httpx.RespondError(w, err)
			return
		}
	}

	filename := fmt.Sprintf("dashboard-%s-%s.csv", filter.Tag, rng.End.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dash, rng, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.logError("load dashboard", err)
		httpx.RespondError(w, err)
		return
	}

	data, err := export.BuildDashboardPDF(dash, filter.Tag, rng)
	if err != nil {
		h.logError("render pdf", err)
		httpx.RespondError(w, err)
		return
	}

	filename := fmt.Sprintf("dashboard-%s-%s.pdf", filter.Tag, rng.End.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		h.logError("stream pdf", err)
	}
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
