// Package env reads process settings that must be available before the
// config package has loaded, such as the log format.
package env

import (
	"os"
	"strings"
)

const prefix = "STOREFRONT_"

// Get returns STOREFRONT_<key> when set, then the bare key, then fallback.
func Get(key, fallback string) string {
	for _, name := range []string{prefix + key, key} {
		if val := strings.TrimSpace(os.Getenv(name)); val != "" {
			return val
		}
	}
	return fallback
}
