package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${VAR}, ${VAR:-default}, and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// substituteEnvVars replaces ${VAR} references with environment
// variable values. ${VAR:-default} falls back to the default when the
// variable is unset or empty; ${VAR:?message} records the message as a
// missing-variable error. Plain ${VAR} references to unset variables
// are left unchanged and reported in the returned slice.
func substituteEnvVars(content string) (string, []string) {
	var missing []string

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		expr := match[2 : len(match)-1] // strip ${ and }

		if name, def, ok := strings.Cut(expr, ":-"); ok {
			if value := os.Getenv(name); value != "" {
				return value
			}
			return def
		}

		if name, msg, ok := strings.Cut(expr, ":?"); ok {
			if value := os.Getenv(name); value != "" {
				return value
			}
			missing = append(missing, name+": "+strings.TrimSpace(msg))
			return match
		}

		if value, ok := os.LookupEnv(expr); ok {
			return value
		}
		missing = append(missing, expr)
		return match
	})

	return result, missing
}
