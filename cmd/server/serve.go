package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Brownie44l1/fer-api/internal/envconfig"
	"github.com/Brownie44l1/fer-api/internal/handlers"
	"github.com/Brownie44l1/fer-api/internal/logutil"
	"github.com/Brownie44l1/fer-api/internal/model"
)

// projectRoot returns the working directory, stepping out of cmd/server when
// started with `go run .` from there.
func projectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if filepath.Base(wd) == "server" && filepath.Base(filepath.Dir(wd)) == "cmd" {
		wd = filepath.Join(wd, "../..")
	}
	return wd, nil
}

func resultsDir() (string, error) {
	dir := envconfig.ResultsDir()
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	root, err := projectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, dir), nil
}

func loadRegistry() (*model.Registry, error) {
	if path := envconfig.Registry(); path != "" {
		slog.Info("loading registry", "path", path)
		return model.LoadRegistry(path)
	}
	return model.DefaultRegistry(), nil
}

func newRuntime() (model.Runtime, error) {
	if !envconfig.RealWeights() {
		return model.StubRuntime{DeviceName: envconfig.Device()}, nil
	}
	return model.NewONNXRuntime(model.ONNXOptions{
		LibraryPath: envconfig.OrtLibrary(),
		Device:      envconfig.Device(),
		Threads:     int(envconfig.Threads()),
	})
}

// RunServer starts the HTTP API and blocks until SIGINT or SIGTERM.
func RunServer(cmd *cobra.Command, _ []string) error {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	slog.Info("server config", "env", envconfig.Values())

	if !envconfig.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	dir, err := resultsDir()
	if err != nil {
		return err
	}

	runtime, err := newRuntime()
	if err != nil {
		return err
	}

	modelServer := model.NewServer(registry, runtime, model.Options{
		ResultsDir:  dir,
		RealWeights: envconfig.RealWeights(),
		MaxLoaded:   int(envconfig.MaxLoaded()),
		MaxPixels:   envconfig.MaxPixels(),
	})
	defer modelServer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if names := envconfig.Preload(); len(names) > 0 {
		slog.Info("loading emotion detection models", "models", names)
		if err := modelServer.Preload(ctx, names); err != nil {
			slog.Warn("could not preload models", "error", err)
		}
	}

	handler := handlers.NewHandler(modelServer, envconfig.MaxUpload())
	router := handlers.NewRouter(handler, envconfig.AllowedOrigins())

	ln, err := net.Listen("tcp", envconfig.Host())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown", "error", err)
		}
	}()

	slog.Info("server starting",
		"addr", ln.Addr().String(),
		"device", runtime.Device(),
		"results", dir,
		"real_weights", modelServer.RealWeights(),
		"models", registry.Len(),
	)
	slog.Info("endpoints",
		"GET /", "service banner",
		"GET /api/v1/models", "registry and loaded models",
		"POST /api/v1/predict", "predict from image upload (file, model)",
		"POST /api/v1/predict/tensor", "predict from preprocessed tensor",
		"GET /api/v1/health", "health check",
	)

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
