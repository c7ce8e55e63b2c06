// Package probe checks a running silentdrop server against a local scorer.
package probe

import (
	"fmt"
	"io"

	"github.com/okian/silentdrop/pkg/logger"
)

// SetupLogging initializes the logger, at debug level when verbose.
func SetupLogging(w io.Writer, verbose bool) error {
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	level := "info"
	if verbose {
		level = "debug"
	}
	return logger.SetLevelString(level)
}

// ShowHelp prints usage information for the probe.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Silent Dropout Probe
====================

Scores reference patients through a running server and checks every reply
against a scorer built from the server's own /policy.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -timeout duration
        HTTP request timeout (default 10s)
  -input string
        JSON file with an array of patient metrics sent to /score/batch
  -verbose
        Log every case
  -help
        Show this help message

Examples:
  # Probe a local server
  go run ./cmd/probe

  # Probe another host and score a batch file
  go run ./cmd/probe -url http://scorer:9080 -input patients.json -verbose
`)
}
