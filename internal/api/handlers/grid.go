// Package handlers provides the HTTP handlers of the print API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vitalcare/rxgrid/internal/domain/prescription"
	"github.com/vitalcare/rxgrid/internal/infrastructure/postgres"
	"github.com/vitalcare/rxgrid/internal/observability/metrics"
	"github.com/vitalcare/rxgrid/internal/printout"
	"github.com/vitalcare/rxgrid/internal/schedule"
)

// PrescriptionSource loads prescriptions for rendering.
type PrescriptionSource interface {
	Prescription(ctx context.Context, id string) (*prescription.Prescription, error)
}

// GridHandler renders administration grids over HTTP.
type GridHandler struct {
	source  PrescriptionSource
	metrics *metrics.Metrics
	logger  *zap.Logger
	// now supplies the reference instant at the service boundary; the
	// engine itself never reads a clock.
	now func() time.Time
}

// NewGridHandler creates a handler.
func NewGridHandler(source PrescriptionSource, m *metrics.Metrics, logger *zap.Logger) *GridHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GridHandler{
		source:  source,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Routes returns the handler routes.
func (h *GridHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/prescriptions/{id}/grid", h.WeekGrid)
	r.Post("/grids/preview", h.Preview)
	return r
}

// WeekGrid handles GET /prescriptions/{id}/grid. Query parameters:
// anchor (ISO date, default today), week_start (0=Sunday .. 6=Saturday,
// default 0), or an explicit start/end pair overriding the week window.
func (h *GridHandler) WeekGrid(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("grid-handler")
	ctx, span := tracer.Start(ctx, "render_week_grid")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("prescription_id", id))

	p, err := h.source.Prescription(ctx, id)
	if errors.Is(err, postgres.ErrNotFound) {
		h.jsonError(w, "prescription not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("load prescription failed", zap.String("id", id), zap.Error(err))
		h.jsonError(w, "failed to load prescription", http.StatusInternalServerError)
		return
	}

	reference := h.referenceDate(r)
	doc := h.render(p, r, reference)
	h.writeJSON(w, http.StatusOK, doc)
}

// previewRequest is the body of POST /grids/preview: a stateless render of
// caller-supplied items. Frequency fields accept the loose encodings the
// wider system produces (CSV strings, JSON arrays, brace lists).
type previewRequest struct {
	Prescription  *prescription.Prescription `json:"prescription"`
	Items         []previewItem              `json:"items"`
	RangeStart    string                     `json:"range_start"`
	RangeEnd      string                     `json:"range_end"`
	ReferenceDate string                     `json:"reference_date,omitempty"`
}

type previewItem struct {
	ID           string          `json:"id"`
	ItemType     string          `json:"item_type,omitempty"`
	Active       bool            `json:"is_active"`
	AsNeeded     bool            `json:"is_prn"`
	Mode         string          `json:"frequency_mode,omitempty"`
	Interval     int             `json:"interval_minutes,omitempty"`
	TimeStart    string          `json:"time_start,omitempty"`
	TimeChecks   json.RawMessage `json:"time_checks,omitempty"`
	TimesValue   int             `json:"times_value,omitempty"`
	TimesUnit    string          `json:"times_unit,omitempty"`
	WeekDays     json.RawMessage `json:"week_days,omitempty"`
	StartDate    string          `json:"start_date,omitempty"`
	EndDate      string          `json:"end_date,omitempty"`
	DisplayName  string          `json:"display_name,omitempty"`
	Route        string          `json:"route,omitempty"`
	Instructions string          `json:"instructions,omitempty"`

	Product    *prescription.Product    `json:"product,omitempty"`
	Components []prescription.Component `json:"components,omitempty"`
}

// Preview handles POST /grids/preview.
func (h *GridHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tracer := otel.Tracer("grid-handler")
	_, span := tracer.Start(ctx, "render_preview")
	defer span.End()

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	start := prescription.ParseDate(req.RangeStart)
	end := prescription.ParseDate(req.RangeEnd)
	if start == nil || end == nil {
		h.jsonError(w, "range_start and range_end are required ISO dates", http.StatusBadRequest)
		return
	}

	p := req.Prescription
	if p == nil {
		p = &prescription.Prescription{}
	}
	for _, raw := range req.Items {
		p.Items = append(p.Items, raw.toDomain())
	}
	span.SetAttributes(attribute.Int("item_count", len(p.Items)))

	reference := h.now()
	if ref := prescription.ParseDate(req.ReferenceDate); ref != nil {
		reference = *ref
	}

	doc := printout.RenderRange(p, *start, *end, reference)
	h.observe(doc)
	h.writeJSON(w, http.StatusOK, doc)
}

func (it previewItem) toDomain() prescription.Item {
	return prescription.Item{
		ID:       it.ID,
		ItemType: it.ItemType,
		Active:   it.Active,
		AsNeeded: it.AsNeeded,
		Frequency: prescription.Frequency{
			Mode:            prescription.Mode(it.Mode),
			IntervalMinutes: it.Interval,
			TimeStart:       it.TimeStart,
			TimeChecks:      schedule.ParseTimeChecks(decodeLoose(it.TimeChecks)),
			TimesValue:      it.TimesValue,
			TimesUnit:       it.TimesUnit,
		},
		WeekDays:     schedule.ParseWeekDays(decodeLoose(it.WeekDays)),
		StartDate:    prescription.ParseDate(it.StartDate),
		EndDate:      prescription.ParseDate(it.EndDate),
		DisplayName:  it.DisplayName,
		Route:        it.Route,
		Instructions: it.Instructions,
		Product:      it.Product,
		Components:   it.Components,
	}
}

// decodeLoose turns a raw JSON value (string, array, or absent) into the
// any-typed form the normalizer accepts.
func decodeLoose(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

func (h *GridHandler) render(p *prescription.Prescription, r *http.Request, reference time.Time) *printout.GridDocument {
	q := r.URL.Query()

	if start, end := prescription.ParseDate(q.Get("start")), prescription.ParseDate(q.Get("end")); start != nil && end != nil {
		doc := printout.RenderRange(p, *start, *end, reference)
		h.observe(doc)
		return doc
	}

	anchor := reference
	if a := prescription.ParseDate(q.Get("anchor")); a != nil {
		anchor = *a
	}
	weekStart := time.Sunday
	if ws, err := strconv.Atoi(q.Get("week_start")); err == nil && ws >= 0 && ws <= 6 {
		weekStart = time.Weekday(ws)
	}

	doc := printout.RenderWeek(p, anchor, weekStart, reference)
	h.observe(doc)
	return doc
}

func (h *GridHandler) referenceDate(r *http.Request) time.Time {
	if ref := prescription.ParseDate(r.URL.Query().Get("reference_date")); ref != nil {
		return *ref
	}
	return h.now()
}

func (h *GridHandler) observe(doc *printout.GridDocument) {
	if h.metrics == nil {
		return
	}
	h.metrics.GridsRendered.Inc()
	h.metrics.RowsRendered.Add(float64(len(doc.Rows)))
}

func (h *GridHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response failed", zap.Error(err))
	}
}

func (h *GridHandler) jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
