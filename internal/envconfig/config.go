// Package envconfig reads the service configuration from environment
// variables. Every getter re-reads the environment so tests can use t.Setenv.
package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
)

// Host returns the listen address.
// Configurable via FER_HOST; PORT overrides the port for platforms that
// inject it. Default: 0.0.0.0:8000
func Host() string {
	host, port := "0.0.0.0", "8000"

	if s := Var("FER_HOST"); s != "" {
		if h, p, err := net.SplitHostPort(s); err == nil {
			host, port = h, p
		} else {
			host = s
		}
	}

	if p := Var("PORT"); p != "" {
		port = p
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n < 0 || n > 65535 {
		slog.Warn("invalid port, using default", "port", port, "default", "8000")
		port = "8000"
	}

	return net.JoinHostPort(host, port)
}

// AllowedOrigins returns the CORS origins: the local frontend dev servers
// plus anything listed in FER_ORIGINS (comma separated).
func AllowedOrigins() (origins []string) {
	for _, port := range []string{"5173", "3000"} {
		origins = append(origins,
			fmt.Sprintf("http://localhost:%s", port),
			fmt.Sprintf("https://localhost:%s", port),
		)
	}

	if s := Var("FER_ORIGINS"); s != "" {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return origins
}

// ResultsDir returns the directory holding the model weight files.
// Configurable via FER_RESULTS_DIR. Default: results
func ResultsDir() string {
	if s := Var("FER_RESULTS_DIR"); s != "" {
		return s
	}
	return "results"
}

// Device returns the execution device, "cpu" or "cuda".
// Configurable via FER_DEVICE. Default: cpu
func Device() string {
	switch d := strings.ToLower(Var("FER_DEVICE")); d {
	case "", "cpu":
		return "cpu"
	case "cuda", "gpu":
		return "cuda"
	default:
		slog.Warn("unknown device, using cpu", "device", d)
		return "cpu"
	}
}

// Preload returns the model names loaded at startup (comma separated).
// Configurable via FER_PRELOAD. In demo mode the default model is always
// preloaded when nothing is configured.
func Preload() []string {
	var names []string
	for _, n := range strings.Split(Var("FER_PRELOAD"), ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 && !RealWeights() {
		names = []string{DefaultModel}
	}
	return names
}

// DefaultModel is the model the demo deployment warms at startup.
const DefaultModel = "MobileNetV2_FER2013"

// Var returns an environment variable with surrounding quotes and spaces
// removed.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
