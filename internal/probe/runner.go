package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/okian/silentdrop/internal/domain/model"
	"github.com/okian/silentdrop/internal/domain/scoring"
	"github.com/okian/silentdrop/pkg/logger"
)

const defaultWorkers = 4

// Run drives a running server with the reference cases and, when an input
// file is configured, one batch request. It returns ErrMismatch if any reply
// disagrees with a scorer built locally from the server's policy.
func Run(ctx context.Context, config *Config) (*Report, error) {
	log := logger.Named("probe")
	report := &Report{StartTime: time.Now()}

	log.Info(ctx, "starting silent dropout probe",
		logger.String("baseURL", config.BaseURL),
		logger.Duration("timeout", config.Timeout),
		logger.String("input", config.InputFile),
		logger.Bool("verbose", config.Verbose))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := client.getJSON(ctx, "/healthz", nil); err != nil {
		return report, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Mirror the server's policy locally
	scorer, err := fetchScorer(ctx, client)
	if err != nil {
		return report, err
	}

	// Step 3: Reference cases through /score
	results := runCases(ctx, client, scorer, ReferenceCases(), config.Workers)
	for _, r := range results {
		report.CasesRun++
		if r.Err != nil {
			report.Failed++
			report.Failures = append(report.Failures, r)
			log.Error(ctx, "case failed", logger.String("case", r.Case.Name), logger.Error(r.Err))
			continue
		}
		report.Passed++
		if config.Verbose {
			log.Info(ctx, "case passed",
				logger.String("case", r.Case.Name),
				logger.Int("status", r.Status),
				logger.Float64("score", r.Remote.Score),
				logger.String("riskLevel", r.Remote.RiskLevel.String()))
		}
	}

	// Step 4: Optional batch from file
	var batchErr error
	if config.InputFile != "" {
		report.BatchRows, batchErr = runBatch(ctx, client, scorer, config.InputFile)
		if batchErr != nil {
			log.Error(ctx, "batch failed", logger.Error(batchErr))
		}
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	displayReport(ctx, log, report)

	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d cases failed", ErrMismatch, report.Failed, report.CasesRun)
	}
	if batchErr != nil {
		return report, batchErr
	}
	return report, nil
}

// fetchScorer builds a RiskScorer from GET /policy.
func fetchScorer(ctx context.Context, client *HTTPClient) (*scoring.RiskScorer, error) {
	var p scoring.Policy
	if err := client.getJSON(ctx, "/policy", &p); err != nil {
		return nil, fmt.Errorf("fetch policy: %w", err)
	}
	scorer, err := scoring.NewRiskScorer(scoring.WithPolicy(p))
	if err != nil {
		return nil, fmt.Errorf("server policy: %w", err)
	}
	return scorer, nil
}

// runCases posts every case concurrently and returns results in case order.
func runCases(ctx context.Context, client *HTTPClient, scorer *scoring.RiskScorer, cases []Case, workers int) []Result {
	if workers <= 0 {
		workers = defaultWorkers
	}
	results := make([]Result, len(cases))
	indexes := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				c := cases[idx]
				status, body, err := client.postJSON(ctx, "/score", c.Metrics)
				if err != nil {
					results[idx] = Result{Case: c, Err: err}
					continue
				}
				results[idx] = verifyCase(scorer, c, status, body)
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range cases {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()
	wg.Wait()

	// Cases skipped by cancellation count as failures.
	for i := range results {
		if results[i].Case.Name == "" {
			results[i] = Result{Case: cases[i], Err: fmt.Errorf("%s: %w", cases[i].Name, ctx.Err())}
		}
	}
	return results
}

// runBatch scores the rows of inputFile through /score/batch.
func runBatch(ctx context.Context, client *HTTPClient, scorer *scoring.RiskScorer, inputFile string) (int, error) {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return 0, fmt.Errorf("read input: %w", err)
	}
	var rows []model.PatientMetrics
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, fmt.Errorf("parse input %s: %w", inputFile, err)
	}

	status, body, err := client.postJSON(ctx, "/score/batch", map[string]interface{}{"patients": rows})
	if err != nil {
		return len(rows), err
	}
	if status != http.StatusOK {
		var e apiError
		_ = json.Unmarshal(body, &e)
		return len(rows), fmt.Errorf("%w: batch returned %d %s: %s", ErrMismatch, status, e.Code, e.Message)
	}
	var resp struct {
		Assessments []model.Assessment `json:"assessments"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return len(rows), fmt.Errorf("decode batch: %w", err)
	}
	return len(rows), verifyBatch(scorer, rows, resp.Assessments)
}

// displayReport logs the final probe statistics.
func displayReport(ctx context.Context, log logger.Logger, report *Report) {
	log.Info(ctx, "final statistics",
		logger.Int("casesRun", report.CasesRun),
		logger.Int("passed", report.Passed),
		logger.Int("failed", report.Failed),
		logger.Int("batchRows", report.BatchRows),
		logger.Duration("duration", report.Duration))
}
