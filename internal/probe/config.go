package probe

import (
	"time"

	"github.com/okian/silentdrop/internal/domain/model"
)

// Config holds configuration for a probe run
type Config struct {
	BaseURL   string        // Base URL of the service
	Timeout   time.Duration // HTTP request timeout
	InputFile string        // Optional JSON array of PatientMetrics sent to /score/batch
	Workers   int           // Number of concurrent workers
	Verbose   bool          // Enable verbose logging
}

// Case is one reference submission checked against the local scorer.
type Case struct {
	Name    string
	Metrics model.PatientMetrics
	// Invalid cases must be rejected with invalid_input.
	Invalid bool
}

// Result records the outcome of one case
type Result struct {
	Case      Case
	Status    int
	Remote    model.Assessment
	ErrorCode string
	Err       error // nil when the remote matched the local scorer
}

// Report holds probe statistics
type Report struct {
	CasesRun  int
	Passed    int
	Failed    int
	BatchRows int
	Failures  []Result
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
