package ledgerhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/praxis-pm/praxis/internal/ledger"
	"github.com/praxis-pm/praxis/internal/ledger/export"
	"github.com/praxis-pm/praxis/internal/platform/httpx"
)

const requestTimeout = 5 * time.Second

// LedgerService defines the reconciled-ledger contract used by the handler.
type LedgerService interface {
	Fetch(ctx context.Context, q ledger.Query) (*ledger.Result, error)
	FetchAll(ctx context.Context, q ledger.Query) ([]ledger.Item, ledger.Range, error)
}

// Handler coordinates HTTP requests for the billing ledger.
type Handler struct {
	logger    *slog.Logger
	service   LedgerService
	validator *validator.Validate
	csvPool   sync.Pool
}

// NewHandler constructs the ledger HTTP handler.
func NewHandler(logger *slog.Logger, service LedgerService) *Handler {
	h := &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
	h.csvPool.New = func() interface{} { return new(bytes.Buffer) }
	return h
}

// MountRoutes registers ledger endpoints onto the router.
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

	r.Get("/", h.handleList)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/export.csv", h.handleCSV)
		gr.Get("/export.xlsx", h.handleXLSX)
	})
}

type listQuery struct {
	Range   string `validate:"required,oneof=week month quarter year"`
	From    string `validate:"omitempty,datetime=2006-01-02"`
	To      string `validate:"omitempty,datetime=2006-01-02"`
	Status  string `validate:"required,oneof=all pending paid overdue"`
	Search  string `validate:"omitempty,max=120"`
	Sort    string `validate:"required,oneof=date-desc date-asc price-desc price-asc"`
	Mode    string `validate:"required,oneof=page batch"`
	Page    int    `validate:"min=1"`
	PerPage int    `validate:"min=1,max=100"`
	Visible int    `validate:"min=1,max=500"`
}

func (h *Handler) parseQuery(r *http.Request) (ledger.Query, error) {
	values := r.URL.Query()
	q := listQuery{
		Range:   strings.TrimSpace(values.Get("range")),
		From:    strings.TrimSpace(values.Get("from")),
		To:      strings.TrimSpace(values.Get("to")),
		Status:  strings.TrimSpace(values.Get("status")),
		Search:  strings.TrimSpace(values.Get("q")),
		Sort:    strings.TrimSpace(values.Get("sort")),
		Mode:    strings.TrimSpace(values.Get("mode")),
		Page:    1,
		PerPage: ledger.DefaultBatchSize,
		Visible: ledger.DefaultBatchSize,
	}
	if q.Range == "" {
		q.Range = string(ledger.RangeMonth)
	}
	if q.Status == "" {
		q.Status = ledger.StatusAll
	}
	if q.Sort == "" {
		q.Sort = string(ledger.SortDateDesc)
	}
	if q.Mode == "" {
		q.Mode = ledger.ModePage
	}
	if err := h.parseInt(values.Get("page"), "page", &q.Page); err != nil {
		return ledger.Query{}, err
	}
	if err := h.parseInt(values.Get("per_page"), "per_page", &q.PerPage); err != nil {
		return ledger.Query{}, err
	}
	if err := h.parseInt(values.Get("visible"), "visible", &q.Visible); err != nil {
		return ledger.Query{}, err
	}
	if err := h.validator.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return ledger.Query{}, fmt.Errorf("%w: invalid %s", httpx.ErrValidation, strings.ToLower(fieldErrs[0].Field()))
		}
		return ledger.Query{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	tag, err := ledger.ParseRangeTag(q.Range)
	if err != nil {
		return ledger.Query{}, fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}

	filter := ledger.FilterState{
		Status: q.Status,
		Search: q.Search,
		Sort:   ledger.ParseSortKey(q.Sort),
	}
	if q.From != "" {
		filter.From, _ = time.Parse("2006-01-02", q.From)
	}
	if q.To != "" {
		// The to parameter names a calendar date; widen it to the end of
		// that day so same-day items pass the window.
		day, _ := time.Parse("2006-01-02", q.To)
		filter.To = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return ledger.Query{
		Tag:     tag,
		Filter:  filter,
		Mode:    q.Mode,
		Page:    q.Page,
		PerPage: q.PerPage,
		Visible: q.Visible,
	}, nil
}

func (h *Handler) parseInt(raw, name string, target *int) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid %s", httpx.ErrValidation, name)
	}
	*target = value
	return nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result, err := h.service.Fetch(ctx, query)
	if err != nil {
		h.logError("fetch ledger", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toListResponse(result))
}

func (h *Handler) handleCSV(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	items, rng, err := h.service.FetchAll(ctx, query)
	if err != nil {
		h.logError("fetch ledger", err)
		httpx.RespondError(w, err)
		return
	}

	buf := h.csvPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.csvPool.Put(buf)
	}()

	if err := export.WriteLedgerCSV(buf, items); err != nil {
		h.logError("write ledger csv", err)
		httpx.RespondError(w, err)
		return
	}

	filename := exportFilename(query.Tag, rng, "csv")
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream csv", err)
	}
}

func (h *Handler) handleXLSX(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	items, rng, err := h.service.FetchAll(ctx, query)
	if err != nil {
		h.logError("fetch ledger", err)
		httpx.RespondError(w, err)
		return
	}

	data, err := export.BuildLedgerXLSX(items, rng)
	if err != nil {
		h.logError("build ledger xlsx", err)
		httpx.RespondError(w, err)
		return
	}

	filename := exportFilename(query.Tag, rng, "xlsx")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		h.logError("stream xlsx", err)
	}
}

func exportFilename(tag ledger.RangeTag, rng ledger.Range, ext string) string {
	return fmt.Sprintf("ledger-%s-%s.%s", tag, rng.End.Format("2006-01-02"), ext)
}

func (h *Handler) logError(context string, err error) {
	if h.logger != nil {
		h.logger.Error(context, slog.Any("error", err))
	}
}
