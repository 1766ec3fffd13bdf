package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "MATCHBOT_"
	envConfigPath = "MATCHBOT_CONFIG"
	// nestSep separates struct levels in prefixed env names:
	// MATCHBOT_HRFLOW__BOARD_KEY -> hrflow.board_key.
	nestSep = "__"
)

// vendorEnv maps the provider-native variable names used by existing
// deployments onto config keys.
var vendorEnv = map[string]string{ //nolint:gochecknoglobals // static lookup table
	"PORT":                         "port",
	"TWILIO_ACCOUNT_SID":           "twilio.account_sid",
	"TWILIO_AUTH_TOKEN":            "twilio.auth_token",
	"TWILIO_WHATSAPP_FROM":         "twilio.from",
	"OPENAI_API_KEY":               "openai.api_key",
	"OPENAI_MODEL":                 "openai.model",
	"HRFLOW_API_KEY":               "hrflow.api_key",
	"HRFLOW_USER_EMAIL":            "hrflow.user_email",
	"HRFLOW_SOURCE_KEYS":           "hrflow.source_keys",
	"HRFLOW_BOARD_KEY":             "hrflow.board_key",
	"HRFLOW_SCORING_ALGORITHM_KEY": "hrflow.scoring_algorithm_key",
	"HRFLOW_GRADING_ALGORITHM_KEY": "hrflow.grading_algorithm_key",
	"HRFLOW_TAGGING_ALGORITHM_KEY": "hrflow.tagging_algorithm_key",
	"HRFLOW_SOURCE_KEY":            "dashboard.source_key",
	"HRFLOW_JOB_KEY":               "dashboard.job_key",
	"HRFLOW_ALGORITHM_KEY":         "dashboard.algorithm_key",
	"HRFLOW_WORKFLOW_URL":          "dashboard.workflow_url",
	"NUMBER_OF_PROFILES_TO_SCORE":  "pipeline.profiles_to_score",
	"NUMBER_OF_PROFILES_TO_GRADE":  "pipeline.profiles_to_grade",
	"LOCATION_DISTANCE_RADIUS":     "pipeline.location_radius",
	"VERTEX_PROJECT":               "vertex.project",
	"VERTEX_LOCATION":              "vertex.location",
	"TELEGRAM_BOT_TOKEN":           "telegram.bot_token",
	"TELEGRAM_CHAT_ID":             "telegram.chat_id",
	"REDIS_URL":                    "redis_url",
	"DATABASE_URL":                 "database_url",
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if MATCHBOT_CONFIG is set
//  3. vendor env names (TWILIO_*, OPENAI_*, HRFLOW_*, ...)
//  4. env (prefix MATCHBOT_)
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	vendor := env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		target, ok := vendorEnv[key]
		if !ok {
			return "", nil
		}
		if target == "hrflow.source_keys" {
			return target, splitList(value)
		}
		return target, value
	})
	if err := k.Load(vendor, nil); err != nil {
		return nil, fmt.Errorf("%w: vendor env: %w", ErrLoadConfig, err)
	}

	prefixed := env.Provider(envPrefix, ".", func(s string) string {
		if s == envConfigPath {
			return ""
		}
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, nestSep, ".")
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// PORT is honoured for platforms that only inject a port number.
	if port := k.String("port"); port != "" && !k.Exists("addr") {
		cfg.Addr = ":" + port
	}
	cfg.HrFlow.SourceKeys = splitList(strings.Join(cfg.HrFlow.SourceKeys, ","))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitList turns "a, b,,c" into [a b c].
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
