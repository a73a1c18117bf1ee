package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tween/internal/backend"
	"tween/internal/config"
	"tween/internal/feedback"
	"tween/internal/logging"
	"tween/internal/services"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

func (c *commandContext) logger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if c.verbose() {
		adjusted := *cfg
		adjusted.Logging.Level = "debug"
		return logging.NewFromConfig(&adjusted)
	}
	return logging.NewFromConfig(cfg)
}

func (c *commandContext) openStore() (*feedback.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return feedback.Open(cfg)
}

func (c *commandContext) newInvoker() (backend.Invoker, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	switch cfg.Backend.Kind {
	case "process":
		return backend.NewProcessInvoker(cfg.Backend.Binary)
	case "http":
		return backend.NewHTTPInvoker(cfg.Backend.Endpoint, cfg.Backend.APIKey, cfg.Backend.TimeoutSeconds)
	default:
		return nil, fmt.Errorf("%w: unsupported backend kind %q", services.ErrConfiguration, cfg.Backend.Kind)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
