// Package env reads raw environment variables with fallbacks. Typed
// configuration belongs in pkg/config; this package covers the few runtime
// knobs (PORT, DYNO, LOG_FORMAT) consulted outside envconfig.
package env

import "os"

// Get returns the variable's value, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
