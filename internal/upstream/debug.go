package upstream

import (
	"log"
	"os"
	"strings"
)

var upstreamDebugEnabled = false

func init() {
	// Enable debug logging if ANALYZE_DEBUG=1 or ANALYZE_DEBUG=true
	if v := os.Getenv("ANALYZE_DEBUG"); v != "" {
		v = strings.ToLower(v)
		upstreamDebugEnabled = v == "1" || v == "true" || v == "yes"
		if upstreamDebugEnabled {
			log.Println("[UPSTREAM] Debug logging: ENABLED")
		}
	}
}

// debugLog logs only when ANALYZE_DEBUG is enabled.
// Use this for per-request details and raw upstream bodies.
func debugLog(format string, args ...interface{}) {
	if upstreamDebugEnabled {
		log.Printf("[UPSTREAM DEBUG] "+format, args...)
	}
}

// infoLog always logs important upstream events.
// Use this for startup configuration and proxy decisions.
func infoLog(format string, args ...interface{}) {
	log.Printf("[UPSTREAM] "+format, args...)
}
