package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/silentdrop/internal/probe"
)

// Default configuration constants.
const (
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 2 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		inputFile = flag.String("input", "", "JSON file with an array of patient metrics sent to /score/batch")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp(os.Stdout)
		return
	}

	if err := probe.SetupLogging(os.Stdout, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &probe.Config{
		BaseURL:   *baseURL,
		Timeout:   *timeout,
		InputFile: *inputFile,
		Verbose:   *verbose,
	}

	if _, err := probe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
