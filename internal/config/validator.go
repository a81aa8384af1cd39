package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	// Validate server config
	if err := validateServerConfig(&cfg.Server); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	// Validate logging config
	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	// Validate default proxy if specified
	if cfg.DefaultProxy != "" {
		if err := validateProxyURL(cfg.DefaultProxy); err != nil {
			return fmt.Errorf("invalid default_proxy: %w", err)
		}
	}

	// Validate services
	if len(cfg.Services) == 0 {
		return fmt.Errorf("at least one service must be defined")
	}

	for i, svc := range cfg.Services {
		if err := validateService(&svc); err != nil {
			return fmt.Errorf("invalid service at index %d (%s): %w", i, svc.Name, err)
		}
	}

	return nil
}

func validateServerConfig(cfg *ServerConfig) error {
	if cfg.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if cfg.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout must be positive")
	}
	if cfg.WriteTimeout < 0 {
		return fmt.Errorf("write_timeout must be positive")
	}
	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("idle_timeout must be positive")
	}
	if cfg.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative")
	}
	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	if !validLogLevel(cfg.Level) {
		return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", cfg.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[cfg.Format] {
		return fmt.Errorf("invalid format: %s (must be json or text)", cfg.Format)
	}

	return nil
}

func validateService(svc *Service) error {
	if svc.Name == "" {
		return fmt.Errorf("service name is required")
	}

	if !strings.HasPrefix(svc.Mount, "/") {
		return fmt.Errorf("mount must start with /, got: %s", svc.Mount)
	}

	if svc.Upstream.Addr == "" {
		return fmt.Errorf("upstream addr is required")
	}

	if svc.Upstream.Proxy != "" {
		if err := validateProxyURL(svc.Upstream.Proxy); err != nil {
			return fmt.Errorf("invalid upstream proxy URL: %w", err)
		}
	}

	for i, f := range svc.Filters {
		if err := validateFilter(&f); err != nil {
			return fmt.Errorf("invalid filter at index %d (%s): %w", i, f.Name, err)
		}
	}

	return nil
}

func validateFilter(f *Filter) error {
	if f.Name == "" {
		return fmt.Errorf("filter name is required")
	}

	if strings.TrimSpace(f.When) == "" {
		return fmt.Errorf("filter when expression is required")
	}

	if len(f.Then) == 0 {
		return fmt.Errorf("filter must have at least one then action")
	}

	for i, spec := range f.Then {
		if err := validateActionSpec(&spec); err != nil {
			return fmt.Errorf("invalid then action at index %d: %w", i, err)
		}
	}
	for i, spec := range f.Otherwise {
		if err := validateActionSpec(&spec); err != nil {
			return fmt.Errorf("invalid otherwise action at index %d: %w", i, err)
		}
	}

	return nil
}

func validateActionSpec(spec *ActionSpec) error {
	count := 0
	if spec.Respond != nil {
		count++
		if spec.Respond.Status < 100 || spec.Respond.Status > 599 {
			return fmt.Errorf("respond status must be a valid HTTP status, got: %d", spec.Respond.Status)
		}
	}
	if spec.Forward {
		count++
	}
	if spec.Log != nil {
		count++
		if spec.Log.Message == "" {
			return fmt.Errorf("log message is required")
		}
		if spec.Log.Level != "" && !validLogLevel(spec.Log.Level) {
			return fmt.Errorf("invalid log level: %s", spec.Log.Level)
		}
	}
	if spec.SetHeader != nil {
		count++
		if spec.SetHeader.Key == "" {
			return fmt.Errorf("set_header key is required")
		}
	}
	if spec.DropCookie != "" {
		count++
	}

	if count != 1 {
		return fmt.Errorf("action must set exactly one of respond, forward, log, set_header, drop_cookie")
	}

	return nil
}

func validLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateProxyURL(proxyURL string) error {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("proxy scheme must be http or https, got: %s", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("proxy host is required")
	}

	return nil
}
