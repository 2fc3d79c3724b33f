package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment overrides honored for deployments that cannot edit the config
// file (e.g. containerized installs).
const (
	envCronOverride        = "CAROUSEL_SCHEDULE_CRONS"
	envConcurrencyOverride = "CAROUSEL_ACCOUNT_CONCURRENCY"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return err
	}
	if c.Paths.PublicDir, err = expandPath(c.Paths.PublicDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Acquisition.CookiesFile != "" {
		if c.Acquisition.CookiesFile, err = expandPath(c.Acquisition.CookiesFile); err != nil {
			return err
		}
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Publisher.BaseURL = strings.TrimRight(strings.TrimSpace(c.Publisher.BaseURL), "/")
	c.Remote.BaseURL = strings.TrimRight(strings.TrimSpace(c.Remote.BaseURL), "/")

	if override := strings.TrimSpace(os.Getenv(envCronOverride)); override != "" {
		parts := make([]string, 0, 8)
		for _, part := range strings.Split(override, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			c.Scheduler.CronExpressions = parts
		}
	}
	if override := strings.TrimSpace(os.Getenv(envConcurrencyOverride)); override != "" {
		if value, convErr := strconv.Atoi(override); convErr == nil && value > 0 {
			c.Scheduler.Concurrency = value
		}
	}

	normalized := make([]string, 0, len(c.Scheduler.CronExpressions))
	for _, expr := range c.Scheduler.CronExpressions {
		if trimmed := strings.TrimSpace(expr); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	c.Scheduler.CronExpressions = normalized

	return nil
}
