package instance

import (
	"os"
	"strings"
)

const EnvInstanceID = "STOREFRONT_INSTANCE_ID"

// GetID returns the process instance identifier, falling back to the host
// name and then a fixed default.
func GetID() string {
	if id := strings.TrimSpace(os.Getenv(EnvInstanceID)); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "storefront-0"
}
