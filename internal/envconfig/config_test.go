package envconfig

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHost(t *testing.T) {
	cases := map[string]struct {
		host, port string
		expect     string
	}{
		"empty":          {"", "", "0.0.0.0:8000"},
		"host only":      {"127.0.0.1", "", "127.0.0.1:8000"},
		"host and port":  {"127.0.0.1:9000", "", "127.0.0.1:9000"},
		"PORT overrides": {"127.0.0.1:9000", "8080", "127.0.0.1:8080"},
		"bad port":       {"", "http", "0.0.0.0:8000"},
	}

	for name, tt := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("FER_HOST", tt.host)
			t.Setenv("PORT", tt.port)
			assert.Equal(t, tt.expect, Host())
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("FER_ORIGINS", "")
	assert.ElementsMatch(t, []string{
		"http://localhost:5173",
		"https://localhost:5173",
		"http://localhost:3000",
		"https://localhost:3000",
	}, AllowedOrigins())

	t.Setenv("FER_ORIGINS", "https://fer.example.com, ,http://10.0.0.2:8080")
	origins := AllowedOrigins()
	assert.Contains(t, origins, "https://fer.example.com")
	assert.Contains(t, origins, "http://10.0.0.2:8080")
	assert.Len(t, origins, 6)
}

func TestRealWeightsAndPreload(t *testing.T) {
	t.Setenv("FER_PRELOAD", "")

	t.Setenv("FER_REAL_WEIGHTS", "")
	assert.True(t, RealWeights())
	assert.Empty(t, Preload())

	t.Setenv("FER_REAL_WEIGHTS", "false")
	assert.False(t, RealWeights())
	assert.Equal(t, []string{DefaultModel}, Preload())

	t.Setenv("FER_PRELOAD", "VGG19_RAF-DB, ResNet50_CK+48")
	assert.Equal(t, []string{"VGG19_RAF-DB", "ResNet50_CK+48"}, Preload())
}

func TestNumericGetters(t *testing.T) {
	t.Setenv("FER_MAX_LOADED", "3")
	assert.Equal(t, uint(3), MaxLoaded())

	t.Setenv("FER_MAX_LOADED", "lots")
	assert.Equal(t, uint(0), MaxLoaded())

	t.Setenv("FER_MAX_UPLOAD", "")
	assert.Equal(t, int64(10<<20), MaxUpload())

	t.Setenv("FER_MAX_PIXELS", "")
	assert.Equal(t, int64(0), MaxPixels())
	t.Setenv("FER_MAX_PIXELS", "4000000")
	assert.Equal(t, int64(4000000), MaxPixels())
}

func TestDeviceAndLogLevel(t *testing.T) {
	t.Setenv("FER_DEVICE", "GPU")
	assert.Equal(t, "cuda", Device())
	t.Setenv("FER_DEVICE", "tpu")
	assert.Equal(t, "cpu", Device())

	t.Setenv("FER_DEBUG", "1")
	assert.Equal(t, slog.LevelDebug, LogLevel())
	t.Setenv("FER_DEBUG", "")
	assert.Equal(t, slog.LevelInfo, LogLevel())
}

func TestVar(t *testing.T) {
	t.Setenv("FER_RESULTS_DIR", ` "/srv/weights" `)
	assert.Equal(t, "/srv/weights", ResultsDir())
	assert.Contains(t, Values(), "FER_RESULTS_DIR")
}
