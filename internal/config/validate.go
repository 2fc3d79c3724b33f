package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		problems = append(problems, "paths.staging_dir is required")
	}
	if strings.TrimSpace(c.Paths.PublicDir) == "" {
		problems = append(problems, "paths.public_dir is required")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir is required")
	}
	if c.Scheduler.Concurrency < 1 {
		problems = append(problems, "scheduler.concurrency must be at least 1")
	}
	if len(c.Scheduler.CronExpressions) == 0 {
		problems = append(problems, "scheduler.cron_expressions must not be empty")
	}
	if strings.TrimSpace(c.Publisher.BaseURL) == "" {
		problems = append(problems, "publisher.base_url is required")
	}
	if strings.TrimSpace(c.Remote.BaseURL) == "" {
		problems = append(problems, "remote.base_url is required")
	}
	if c.Remote.ReadyTimeoutSeconds < 1 {
		problems = append(problems, "remote.ready_timeout_seconds must be at least 1")
	}
	if c.Remote.PollIntervalSeconds < 1 {
		problems = append(problems, "remote.poll_interval_seconds must be at least 1")
	}
	if c.Acquisition.Retries < 0 {
		problems = append(problems, "acquisition.retries must not be negative")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (text, json)", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
