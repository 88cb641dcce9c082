package httpapi

import "time"

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// requestTimeout bounds /predict and /sweep. Zero means no additional
// timeout beyond server/connection timeouts.
var requestTimeout time.Duration

// SetRequestTimeout sets the per-request timeout (0 disables).
func SetRequestTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	requestTimeout = d
}

// CORS configuration. The browser frontend is usually served from another
// origin during development, so CORS is on by default for any origin.
var (
	corsEnabled        = true
	corsAllowedOrigins = []string{"*"}
)

// SetCORSOptions configures CORS behavior for the HTTP server. Empty origins
// with enabled=true allow any origin.
func SetCORSOptions(enabled bool, origins []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	if len(corsAllowedOrigins) == 0 {
		corsAllowedOrigins = []string{"*"}
	}
}

// staticDir holds the browser frontend. Empty disables static serving.
var staticDir string

// SetStaticDir sets the directory served for paths no API route matches.
func SetStaticDir(dir string) { staticDir = dir }
