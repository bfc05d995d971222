package config

import (
	"fmt"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validProviderKinds = map[string]bool{
	"json": true, "html": true,
}

var validCapabilities = map[string]bool{
	"search": true, "metadata": true, "stream": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	if c.Downloads.HLSWorkers < 0 {
		errs = append(errs, fmt.Sprintf("downloads.hls_workers: must be positive, got %d", c.Downloads.HLSWorkers))
	}

	if len(c.Providers) == 0 {
		errs = append(errs, "providers: at least one provider must be configured")
	}

	seen := make(map[string]bool, len(c.Providers))
	for i, p := range c.Providers {
		prefix := fmt.Sprintf("providers[%d]", i)
		if p.Value == "" {
			errs = append(errs, prefix+".value: required")
		} else if seen[p.Value] {
			errs = append(errs, fmt.Sprintf("%s.value: duplicate provider %q", prefix, p.Value))
		}
		seen[p.Value] = true

		if !validProviderKinds[p.Kind] {
			errs = append(errs, fmt.Sprintf("%s.kind: must be json or html, got %q", prefix, p.Kind))
		}
		if p.BaseURL == "" {
			errs = append(errs, prefix+".base_url: required")
		}
		for _, cap := range p.Capabilities {
			if !validCapabilities[cap] {
				errs = append(errs, fmt.Sprintf("%s.capabilities: unknown capability %q", prefix, cap))
			}
		}
	}

	return errs
}
