package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateCluster(); err != nil {
		return err
	}
	if err := c.validateExiftool(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatcher() error {
	if c.Matcher.PrefixLength <= 0 {
		return errors.New("matcher.prefix_length must be positive")
	}
	if c.Matcher.SuffixMargin < 0 {
		return errors.New("matcher.suffix_margin must not be negative")
	}
	return nil
}

func (c *Config) validateResolver() error {
	if c.Resolver.Workers < 0 {
		return errors.New("resolver.workers must not be negative (0 selects cores minus one)")
	}
	if c.Resolver.ExtractAttempts <= 0 {
		return errors.New("resolver.extract_attempts must be positive")
	}
	if c.Resolver.ExtractBackoffMS < 0 {
		return errors.New("resolver.extract_backoff_ms must not be negative")
	}
	if c.Resolver.LedgerBatchSize <= 0 {
		return errors.New("resolver.ledger_batch_size must be positive")
	}
	return nil
}

func (c *Config) validateCluster() error {
	if c.Cluster.TimeThresholdSeconds <= 0 {
		return errors.New("cluster.time_threshold_seconds must be positive")
	}
	if c.Cluster.DistanceThresholdKm <= 0 {
		return errors.New("cluster.distance_threshold_km must be positive")
	}
	return nil
}

func (c *Config) validateExiftool() error {
	if c.Exiftool.TimeoutSeconds <= 0 {
		return errors.New("exiftool.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
