package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/matchbot/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes a complete simulation and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	applyDefaults(config)
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting whatsapp simulation",
		logger.String("baseURL", config.BaseURL),
		logger.String("webhookPath", config.WebhookPath),
		logger.Int("senders", config.Senders),
		logger.Int("workers", config.Workers),
		logger.Bool("signed", config.AuthToken != ""),
		logger.Duration("timeout", config.Timeout))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate conversations
	convs := generateConversations(ctx, config, stats)

	// Step 3: Replay them concurrently
	if err := submitConversations(ctx, config, convs, stats); err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}

	// Step 4: Let the pipeline drain, then read the run counter
	waitSettle(ctx, config.Settle)
	runs, err := fetchServerRuns(ctx, config)
	if err != nil {
		logger.Get().Warn(ctx, "failed to read server stats", logger.Error(err))
	} else {
		stats.ServerRuns = runs
		stats.ServerStatsRead = true
	}

	// Step 5: Save conversations
	if config.OutputFile != "" {
		if err := saveConversations(ctx, config.OutputFile, convs); err != nil {
			logger.Get().Warn(ctx, "failed to save conversations", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func applyDefaults(config *Config) {
	if config.WebhookPath == "" {
		config.WebhookPath = DefaultWebhookPath
	}
	if config.Senders <= 0 {
		config.Senders = DefaultSenders
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	resp, err := newHTTPClient(config).Get(ctx, config.BaseURL+"/health")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveConversations writes the generated conversations as a JSON array.
func saveConversations(ctx context.Context, filename string, convs []Conversation) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(convs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal conversations: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	logger.Get().Info(ctx, "conversations saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var replyRate, messagesPerSecond float64
	if stats.MessagesSent > 0 {
		replyRate = float64(stats.Replied) / float64(stats.MessagesSent) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		messagesPerSecond = float64(stats.MessagesSent) / stats.Duration.Seconds()
	}

	fields := []logger.Field{
		logger.Int("conversations", stats.Conversations),
		logger.Int("messagesSent", stats.MessagesSent),
		logger.Int("replied", stats.Replied),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("redeliveries", stats.Redeliveries),
		logger.Duration("duration", stats.Duration),
		logger.Float64("replyRate", replyRate),
		logger.Float64("messagesPerSecond", messagesPerSecond),
	}
	if stats.ServerStatsRead {
		fields = append(fields, logger.Int("serverRuns", stats.ServerRuns))
	}
	logger.Get().Info(ctx, "final statistics", fields...)
}
