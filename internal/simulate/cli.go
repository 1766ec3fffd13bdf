package simulate

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/matchbot/pkg/logger"
)

// SetupLogging sends log output to both console and file. If logFile is empty,
// a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return nil, fmt.Errorf("failed to set log level: %w", err)
		}
	}

	if logFile == "" {
		logFile = "simulate_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger.SetOutput(io.MultiWriter(os.Stdout, file))
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Matchbot WhatsApp Simulator
===========================

Replays scripted WhatsApp conversations against a running matchbot server,
posting the same form payloads Twilio sends to the webhook.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -path string
        Webhook path (default "/twilio/whatsapp")
  -public-url string
        URL the signature is computed over (default: url + path)
  -token string
        Twilio auth token used to sign requests (default: $TWILIO_AUTH_TOKEN)
  -senders int
        Number of simulated WhatsApp users (default 20)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -dup int
        Redeliver every Nth message with the same SID, 0 disables (default 5)
  -timeout duration
        HTTP request timeout (default 30s)
  -settle duration
        Wait before reading /stats (default 10s)
  -output string
        Output file for generated conversations
  -log string
        Log file for the run (default: simulate_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Unsigned run against a local server
  go run ./cmd/simulate

  # Signed run with more users
  go run ./cmd/simulate -senders 200 -workers 16 -token $TWILIO_AUTH_TOKEN
`)
}
