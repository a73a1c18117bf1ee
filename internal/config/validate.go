package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration invariants and reports every violation found.
func (c *Config) Validate() error {
	var problems []string

	switch c.Backend.Kind {
	case "process":
		if c.Backend.Binary == "" {
			problems = append(problems, "backend.binary is required when backend.kind is \"process\"")
		}
	case "http":
		if c.Backend.Endpoint == "" {
			problems = append(problems, "backend.endpoint is required when backend.kind is \"http\"")
		}
	default:
		problems = append(problems, fmt.Sprintf("backend.kind must be \"process\" or \"http\", got %q", c.Backend.Kind))
	}

	if c.Backend.TimeoutSeconds <= 0 {
		problems = append(problems, "backend.timeout_secs must be positive")
	}
	if c.Backend.StyleStrength < 0 || c.Backend.StyleStrength > 1 {
		problems = append(problems, "backend.style_strength must be between 0.0 and 1.0")
	}
	if c.Backend.Resolution <= 0 {
		problems = append(problems, "backend.resolution must be positive")
	}

	if c.Generation.AutoAcceptThreshold < 0 || c.Generation.AutoAcceptThreshold > 1 {
		problems = append(problems, "generation.auto_accept_threshold must be between 0.0 and 1.0")
	}
	if c.Generation.MaxFrameCount < 1 {
		problems = append(problems, "generation.max_frame_count must be at least 1")
	}
	if c.Generation.DefaultFrameCount < 1 || c.Generation.DefaultFrameCount > c.Generation.MaxFrameCount {
		problems = append(problems, fmt.Sprintf("generation.default_frame_count must be between 1 and %d", c.Generation.MaxFrameCount))
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format must be \"console\" or \"json\", got %q", c.Logging.Format))
	}

	if c.Paths.FeedbackDB == "" {
		problems = append(problems, "paths.feedback_db is required")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration:\n  - " + strings.Join(problems, "\n  - "))
}
