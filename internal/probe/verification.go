package probe

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/okian/silentdrop/internal/app"
	"github.com/okian/silentdrop/internal/domain/model"
	"github.com/okian/silentdrop/internal/domain/scoring"
)

// ErrMismatch is returned when the service disagrees with the local scorer.
var ErrMismatch = errors.New("probe mismatch")

// verifyCase compares one /score reply with the local scorer.
func verifyCase(scorer *scoring.RiskScorer, c Case, status int, body []byte) Result {
	res := Result{Case: c, Status: status}

	if c.Invalid {
		var e apiError
		_ = json.Unmarshal(body, &e)
		res.ErrorCode = e.Code
		if status != http.StatusBadRequest || e.Code != "invalid_input" {
			res.Err = fmt.Errorf("%w: %s: want 400 invalid_input, got %d %q", ErrMismatch, c.Name, status, e.Code)
		}
		return res
	}

	if status != http.StatusOK {
		var e apiError
		_ = json.Unmarshal(body, &e)
		res.ErrorCode = e.Code
		res.Err = fmt.Errorf("%w: %s: want 200, got %d %s", ErrMismatch, c.Name, status, e.Message)
		return res
	}
	if err := json.Unmarshal(body, &res.Remote); err != nil {
		res.Err = fmt.Errorf("%w: %s: decode assessment: %w", ErrMismatch, c.Name, err)
		return res
	}
	res.Err = compare(scorer, c.Name, c.Metrics, res.Remote)
	return res
}

// compare checks level and rounded score of a remote assessment.
func compare(scorer *scoring.RiskScorer, name string, m model.PatientMetrics, remote model.Assessment) error {
	local, err := scorer.Score(m)
	if err != nil {
		return fmt.Errorf("%w: %s: local scorer rejected input: %w", ErrMismatch, name, err)
	}
	want := service.RoundScore(local.Score)
	switch {
	case remote.RiskLevel != local.RiskLevel:
		return fmt.Errorf("%w: %s: risk level %s, want %s", ErrMismatch, name, remote.RiskLevel, local.RiskLevel)
	case remote.Score != want:
		return fmt.Errorf("%w: %s: score %.2f, want %.2f", ErrMismatch, name, remote.Score, want)
	case remote.Advisory != local.RiskLevel.Advisory():
		return fmt.Errorf("%w: %s: advisory %q does not match %s", ErrMismatch, name, remote.Advisory, local.RiskLevel)
	}
	return nil
}

// verifyBatch compares a /score/batch reply row by row.
func verifyBatch(scorer *scoring.RiskScorer, rows []model.PatientMetrics, remote []model.Assessment) error {
	if len(remote) != len(rows) {
		return fmt.Errorf("%w: batch returned %d assessments for %d rows", ErrMismatch, len(remote), len(rows))
	}
	var errs []error
	for i := range rows {
		if err := compare(scorer, fmt.Sprintf("batch row %d", i), rows[i], remote[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
