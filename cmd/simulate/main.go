package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/matchbot/internal/simulate"
)

// Default configuration constants.
const (
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultDuplicateEvery = 5
	defaultRunTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8080", "Base URL of the service")
		path       = flag.String("path", simulate.DefaultWebhookPath, "Webhook path")
		publicURL  = flag.String("public-url", "", "URL the signature is computed over (default: url + path)")
		token      = flag.String("token", os.Getenv("TWILIO_AUTH_TOKEN"), "Twilio auth token used to sign requests")
		senders    = flag.Int("senders", simulate.DefaultSenders, "Number of simulated WhatsApp users")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		dup        = flag.Int("dup", defaultDuplicateEvery, "Redeliver every Nth message with the same SID, 0 disables")
		timeout    = flag.Duration("timeout", simulate.DefaultTimeout, "HTTP request timeout")
		settle     = flag.Duration("settle", simulate.DefaultSettle, "Wait before reading /stats")
		outputFile = flag.String("output", "", "Output file for generated conversations")
		logFile    = flag.String("log", "", "Log file for the run (default: simulate_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	closer, err := simulate.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &simulate.Config{
		BaseURL:        *baseURL,
		WebhookPath:    *path,
		PublicURL:      *publicURL,
		AuthToken:      *token,
		Senders:        *senders,
		Workers:        *workers,
		DuplicateEvery: *dup,
		Timeout:        *timeout,
		Settle:         *settle,
		OutputFile:     *outputFile,
		LogFile:        *logFile,
		Verbose:        *verbose,
	}

	if _, err := simulate.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called above
	}
}
