// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the form shell.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okian/silentdrop/internal/domain/model"
	"github.com/okian/silentdrop/internal/domain/scoring"
	"github.com/okian/silentdrop/internal/domain/types"
	"github.com/okian/silentdrop/pkg/logger"
	"github.com/okian/silentdrop/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultMaxBatchSize = 500
	displayPlaces       = 2
)

// Sources label where a submission came from in logs and metrics.
const (
	SourceAPI   = "api"
	SourceBatch = "batch"
	SourceForm  = "form"
)

// Sentinel error kinds for the service.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrEmptyBatch    = errors.New("empty batch")
	ErrBatchTooLarge = errors.New("batch too large")
)

// Service turns patient metrics into assessments. It holds no per-patient
// state; counters exist only for /stats.
type Service struct {
	mu sync.RWMutex

	scorer *scoring.RiskScorer

	// Policy overrides
	weights         map[string]float64
	caps            map[string]float64
	mediumThreshold float64
	highThreshold   float64
	thresholdsSet   bool

	maxBatchSize int
	started      bool
	now          func() time.Time
	newID        func() string

	assessed atomic.Int64
	rejected atomic.Int64
	byLevel  [types.RiskHigh + 1]atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWeights overrides scoring weights by field name.
func WithWeights(weights map[string]float64) Option {
	return func(s *Service) {
		s.weights = weights
	}
}

// WithCaps overrides per-field clamp ceilings by field name.
func WithCaps(caps map[string]float64) Option {
	return func(s *Service) {
		s.caps = caps
	}
}

// WithThresholds sets the MEDIUM and HIGH cutoffs.
func WithThresholds(medium, high float64) Option {
	return func(s *Service) {
		s.mediumThreshold = medium
		s.highThreshold = high
		s.thresholdsSet = true
	}
}

// WithMaxBatchSize caps the number of rows accepted by AssessBatch.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithClock replaces time.Now for assessment timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the UUID generator for assessment ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxBatchSize: defaultMaxBatchSize,
		now:          time.Now,
		newID:        uuid.NewString,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the scorer from the configured policy. It fails with
// scoring.ErrInvalidPolicy if the overrides are inconsistent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	opts := []scoring.Option{
		scoring.WithWeights(s.weights),
		scoring.WithCaps(s.caps),
	}
	if s.thresholdsSet {
		opts = append(opts, scoring.WithThresholds(s.mediumThreshold, s.highThreshold))
	}
	scorer, err := scoring.NewRiskScorer(opts...)
	if err != nil {
		s.logger.Error(ctx, "invalid scoring policy", logger.Error(err))
		return fmt.Errorf("build scorer: %w", err)
	}
	s.scorer = scorer

	p := scorer.Policy()
	s.started = true
	s.logger.Info(ctx, "silent dropout scorer started",
		logger.Float64("mediumThreshold", p.MediumThreshold),
		logger.Float64("highThreshold", p.HighThreshold),
		logger.Int("maxBatchSize", s.maxBatchSize),
	)
	return nil
}

// Stop marks the service as stopped. Subsequent calls fail with ErrNotStarted.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "silent dropout scorer stopped")
}

func (s *Service) activeScorer() (*scoring.RiskScorer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.scorer, nil
}

// Assess scores a single record. source labels logs and metrics.
func (s *Service) Assess(ctx context.Context, source string, m model.PatientMetrics) (model.Assessment, error) {
	scorer, err := s.activeScorer()
	if err != nil {
		return model.Assessment{}, err
	}

	start := time.Now()
	res, err := scorer.Score(m)
	metrics.RecordScoringLatency(time.Since(start))
	if err != nil {
		return model.Assessment{}, s.Reject(ctx, source, err)
	}

	a := s.assessment(res)
	s.logger.Debug(ctx, "assessed patient metrics",
		logger.String("id", a.ID),
		logger.String("channel", source),
		logger.Float64("score", a.Score),
		logger.String("riskLevel", a.RiskLevel.String()),
	)
	return a, nil
}

// AssessBatch scores every row in order. It fails without partial results
// when the batch is empty, larger than the configured cap, or any row is invalid.
func (s *Service) AssessBatch(ctx context.Context, rows []model.PatientMetrics) ([]model.Assessment, error) {
	if err := s.CheckBatch(len(rows)); err != nil {
		return nil, err
	}
	scorer, err := s.activeScorer()
	if err != nil {
		return nil, err
	}
	metrics.RecordBatchSize(len(rows))

	start := time.Now()
	results, err := scorer.ScoreBatch(rows)
	metrics.RecordScoringLatency(time.Since(start))
	if err != nil {
		return nil, s.Reject(ctx, SourceBatch, err)
	}

	out := make([]model.Assessment, len(results))
	for i, res := range results {
		out[i] = s.assessment(res)
	}
	s.logger.Debug(ctx, "assessed batch", logger.Int("rows", len(out)))
	return out, nil
}

// CheckBatch reports whether a batch of n rows may be scored at all. It runs
// before any row is looked at, so size errors win over row errors.
func (s *Service) CheckBatch(n int) error {
	if _, err := s.activeScorer(); err != nil {
		return err
	}
	switch {
	case n == 0:
		return ErrEmptyBatch
	case n > s.maxBatchSize:
		return fmt.Errorf("%w: %d rows exceeds limit of %d", ErrBatchTooLarge, n, s.maxBatchSize)
	}
	return nil
}

// Policy returns the active scoring policy.
func (s *Service) Policy() (scoring.Policy, error) {
	scorer, err := s.activeScorer()
	if err != nil {
		return scoring.Policy{}, err
	}
	return scorer.Policy(), nil
}

func (s *Service) assessment(res model.ScoreResult) model.Assessment {
	s.assessed.Add(1)
	s.byLevel[res.RiskLevel].Add(1)
	metrics.RecordAssessment(res.RiskLevel.String(), res.Score)

	return model.Assessment{
		ID:         s.newID(),
		Score:      RoundScore(res.Score),
		RiskLevel:  res.RiskLevel,
		Advisory:   res.RiskLevel.Advisory(),
		AssessedAt: s.now().UTC(),
	}
}

// Reject counts a submission refused as invalid input and returns err
// unchanged. Adapters call it for records they refuse before scoring, such
// as missing or unparsable fields.
func (s *Service) Reject(ctx context.Context, source string, err error) error {
	s.rejected.Add(1)
	metrics.RecordInvalidInput(source)
	if log := s.log(); log != nil {
		log.Info(ctx, "rejected patient metrics",
			logger.String("channel", source),
			logger.Error(err),
		)
	}
	return err
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logger
}

// RoundScore rounds a score half away from zero to two decimal places for
// display. It works on the decimal text of the float, so 2.675 becomes 2.68
// where binary rounding of the same float64 would give 2.67.
func RoundScore(score float64) float64 {
	return decimal.NewFromFloat(score).Round(displayPlaces).InexactFloat64()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":      s.started,
		"maxBatchSize": s.maxBatchSize,
		"assessments":  s.assessed.Load(),
		"rejected":     s.rejected.Load(),
		"low":          s.byLevel[types.RiskLow].Load(),
		"medium":       s.byLevel[types.RiskMedium].Load(),
		"high":         s.byLevel[types.RiskHigh].Load(),
	}
}
