package envconfig

import (
	"fmt"
	"log/slog"
	"strconv"
)

// BoolWithDefault returns a getter for a boolean variable. Values that do not
// parse as a boolean count as true, so FER_DEBUG=yes still enables debugging.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// String returns a getter for a string variable.
func String(k string) func() string {
	return func() string {
		return Var(k)
	}
}

// Uint returns a getter for an unsigned integer variable.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Int64 returns a getter for a signed integer variable.
func Int64(key string, defaultValue int64) func() int64 {
	return func() int64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseInt(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

var (
	// RealWeights selects the full-inference variant. When false the service
	// runs in demo mode and returns the fixed distribution.
	RealWeights = func() bool { return BoolWithDefault("FER_REAL_WEIGHTS")(true) }
	// Debug enables debug logging.
	Debug = func() bool { return BoolWithDefault("FER_DEBUG")(false) }
	// Registry is an optional YAML file replacing the built-in model table.
	Registry = String("FER_REGISTRY")
	// OrtLibrary is the path of the onnxruntime shared library.
	OrtLibrary = String("FER_ORT_LIB")
	// Threads caps the intra-op threads of each session (0 = runtime default).
	Threads = Uint("FER_THREADS", 0)
	// MaxLoaded bounds the model cache (0 = unbounded).
	MaxLoaded = Uint("FER_MAX_LOADED", 0)
	// MaxUpload is the largest accepted multipart body in bytes.
	MaxUpload = Int64("FER_MAX_UPLOAD", 10<<20)
	// MaxPixels caps width*height of uploaded images (0 = 178956970).
	MaxPixels = Int64("FER_MAX_PIXELS", 0)
)

// LogLevel returns the slog level derived from FER_DEBUG.
func LogLevel() slog.Level {
	if Debug() {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap describes every variable the service reads.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"FER_HOST":         {"FER_HOST", Host(), "Listen address (default 0.0.0.0:8000)"},
		"FER_ORIGINS":      {"FER_ORIGINS", AllowedOrigins(), "Extra comma separated CORS origins"},
		"FER_RESULTS_DIR":  {"FER_RESULTS_DIR", ResultsDir(), "Directory holding <model>_best.onnx weight files"},
		"FER_REAL_WEIGHTS": {"FER_REAL_WEIGHTS", RealWeights(), "Run real inference (false = demo predictions)"},
		"FER_DEVICE":       {"FER_DEVICE", Device(), "Execution device: cpu or cuda"},
		"FER_THREADS":      {"FER_THREADS", Threads(), "Intra-op threads per session (0 = default)"},
		"FER_MAX_LOADED":   {"FER_MAX_LOADED", MaxLoaded(), "Maximum resident models (0 = unbounded)"},
		"FER_PRELOAD":      {"FER_PRELOAD", Preload(), "Models loaded at startup"},
		"FER_REGISTRY":     {"FER_REGISTRY", Registry(), "YAML file replacing the built-in model registry"},
		"FER_MAX_UPLOAD":   {"FER_MAX_UPLOAD", MaxUpload(), "Maximum upload size in bytes"},
		"FER_MAX_PIXELS":   {"FER_MAX_PIXELS", MaxPixels(), "Maximum decoded image size in pixels (0 = default)"},
		"FER_ORT_LIB":      {"FER_ORT_LIB", OrtLibrary(), "Path to the onnxruntime shared library"},
		"FER_DEBUG":        {"FER_DEBUG", Debug(), "Enable debug logging"},
	}
}

// Values returns the effective configuration as strings, for logging.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
