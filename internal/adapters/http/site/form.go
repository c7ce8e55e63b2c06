// Package site renders the HTML form shell in front of the scorer.
package site

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	service "github.com/okian/silentdrop/internal/app"
	"github.com/okian/silentdrop/internal/domain/model"
	"github.com/okian/silentdrop/internal/domain/scoring"
	"github.com/okian/silentdrop/pkg/logger"
)

// Title is the heading of the form page.
const Title = "Patient Silent Dropout Risk Predictor"

const (
	dateLayout    = "2006-01-02"
	maxFormBytes  = 64 << 10
	lastFollowUp  = "last_follow_up"
	templateName  = "form.html.tmpl"
	defaultNumber = "0"
)

//go:embed static/form.html.tmpl
var staticFS embed.FS

var formTemplate = template.Must(template.ParseFS(staticFS, "static/"+templateName))

// Assessor scores one record submitted through the form.
type Assessor interface {
	Assess(ctx context.Context, source string, m model.PatientMetrics) (model.Assessment, error)
	Reject(ctx context.Context, source string, err error) error
}

// inputs lists the number widgets in display order.
var inputs = []struct {
	field scoring.Field
	label string
}{
	{scoring.FieldExpectedGapDays, "Expected Gap Between Visits (days)"},
	{scoring.FieldRefillDelayDays, "Medicine Refill Delay (days)"},
	{scoring.FieldDaysSinceLastContact, "Days Since Last Contact"},
	{scoring.FieldMissedLabTests, "Missed Lab Tests"},
	{scoring.FieldDaysLateFollowUp, "Days Late for Follow-Up"},
}

type input struct {
	Name  string
	Label string
	Value string
}

type page struct {
	Title        string
	LastFollowUp string
	Inputs       []input
	Result       *model.Assessment
	Error        string
}

// FormHandler serves GET and POST on the root path.
type FormHandler struct {
	deps   Assessor
	now    func() time.Time
	logger logger.Logger
}

// Option configures a FormHandler.
type Option func(*FormHandler)

// WithClock replaces time.Now for the default follow-up date.
func WithClock(now func() time.Time) Option {
	return func(h *FormHandler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewFormHandler creates a form handler backed by deps.
func NewFormHandler(deps Assessor, opts ...Option) *FormHandler {
	h := &FormHandler{deps: deps, now: time.Now, logger: logger.Named("site")}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the form to the exact root path of mux.
func Register(_ context.Context, mux *http.ServeMux, deps Assessor, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/{$}", NewFormHandler(deps, opts...))
}

// ServeHTTP renders the empty form on GET and the result on POST.
func (h *FormHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, r, http.StatusOK, h.emptyPage())
	case http.MethodPost:
		h.handleSubmit(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *FormHandler) emptyPage() page {
	p := page{Title: Title, LastFollowUp: h.now().Format(dateLayout)}
	for _, in := range inputs {
		p.Inputs = append(p.Inputs, input{Name: string(in.field), Label: in.label, Value: defaultNumber})
	}
	return p
}

func (h *FormHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		p := h.emptyPage()
		p.Error = "Could not read the submitted form."
		h.render(w, r, http.StatusBadRequest, p)
		return
	}

	p := page{Title: Title, LastFollowUp: strings.TrimSpace(r.PostForm.Get(lastFollowUp))}
	if p.LastFollowUp == "" {
		p.LastFollowUp = h.now().Format(dateLayout)
	}
	for _, in := range inputs {
		p.Inputs = append(p.Inputs, input{
			Name:  string(in.field),
			Label: in.label,
			Value: strings.TrimSpace(r.PostForm.Get(string(in.field))),
		})
	}

	m, err := parseMetrics(p.Inputs)
	if err != nil {
		err = h.deps.Reject(r.Context(), service.SourceForm, err)
	} else {
		var a model.Assessment
		a, err = h.deps.Assess(r.Context(), service.SourceForm, m)
		if err == nil {
			p.Result = &a
			h.render(w, r, http.StatusOK, p)
			return
		}
	}

	if !errors.Is(err, scoring.ErrInvalidInput) {
		h.logger.Error(r.Context(), "form assessment failed", logger.Error(err))
		p.Error = "The risk score could not be computed. Please try again."
		h.render(w, r, http.StatusInternalServerError, p)
		return
	}
	p.Error = err.Error()
	h.render(w, r, http.StatusBadRequest, p)
}

// parseMetrics treats an empty widget as a missing field.
func parseMetrics(values []input) (model.PatientMetrics, error) {
	var m model.PatientMetrics
	for _, v := range values {
		f := scoring.Field(v.Name)
		if v.Value == "" {
			return model.PatientMetrics{}, scoring.MissingFieldError(f)
		}
		n, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return model.PatientMetrics{}, fmt.Errorf("%w: %s must be a number, got %q", scoring.ErrInvalidInput, f, v.Value)
		}
		switch f {
		case scoring.FieldExpectedGapDays:
			m.ExpectedGapDays = n
		case scoring.FieldRefillDelayDays:
			m.RefillDelayDays = n
		case scoring.FieldDaysSinceLastContact:
			m.DaysSinceLastContact = n
		case scoring.FieldMissedLabTests:
			m.MissedLabTests = n
		case scoring.FieldDaysLateFollowUp:
			m.DaysLateFollowUp = n
		}
	}
	return m, nil
}

func (h *FormHandler) render(w http.ResponseWriter, r *http.Request, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, p); err != nil {
		h.logger.Error(r.Context(), "render form", logger.Error(err))
	}
}
