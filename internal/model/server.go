package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Brownie44l1/fer-api/internal/preprocess"
)

// DemoNote is attached to every prediction served without real weights.
const DemoNote = "Demo mode - using mock predictions"

// demoDistribution is returned for every image when real weights are off.
var demoDistribution = []struct {
	label string
	prob  float64
}{
	{"happy", 0.75},
	{"neutral", 0.15},
	{"sad", 0.05},
	{"angry", 0.03},
	{"surprise", 0.01},
	{"fear", 0.01},
	{"disgust", 0.00},
}

type Options struct {
	ResultsDir  string
	RealWeights bool
	MaxLoaded   int
	// MaxPixels overrides the transform's image size cap when positive.
	MaxPixels int64
	Transform preprocess.Transform
}

// Server answers predictions for every registry model, loading networks on
// first use.
type Server struct {
	Registry *Registry

	cache     *Cache
	runtime   Runtime
	transform preprocess.Transform
	real      bool
}

func NewServer(registry *Registry, runtime Runtime, opts Options) *Server {
	transform := opts.Transform
	if transform.Size == 0 {
		transform = preprocess.Default
	}
	if opts.MaxPixels > 0 {
		transform.MaxPixels = opts.MaxPixels
	}

	return &Server{
		Registry: registry,
		cache: NewCache(registry, runtime, CacheOptions{
			ResultsDir:  opts.ResultsDir,
			RealWeights: opts.RealWeights,
			MaxLoaded:   opts.MaxLoaded,
		}),
		runtime:   runtime,
		transform: transform,
		real:      opts.RealWeights,
	}
}

// Predict classifies imageData with the named model.
func (s *Server) Predict(name string, imageData []byte) (*PredictionResult, error) {
	return s.run(name, func() ([]float32, error) {
		return s.transform.Apply(imageData)
	})
}

// PredictTensor classifies an already preprocessed CHW tensor.
// The tensor is validated before the model is loaded.
func (s *Server) PredictTensor(name string, input []float32) (*PredictionResult, error) {
	if !s.Registry.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModel, name)
	}
	if want := s.transform.Len(); len(input) != want {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInvalidInput, want, len(input))
	}
	return s.run(name, func() ([]float32, error) {
		return input, nil
	})
}

// InputLen is the tensor length PredictTensor expects.
func (s *Server) InputLen() int {
	return s.transform.Len()
}

func (s *Server) run(name string, prepare func() ([]float32, error)) (*PredictionResult, error) {
	if !s.Registry.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidModel, name)
	}

	entry, err := s.cache.GetOrLoad(name)
	if err != nil {
		return nil, err
	}

	input, err := prepare()
	if err != nil {
		return nil, err
	}

	if !s.real {
		return demoPrediction(name), nil
	}

	logits, err := entry.Forward(input)
	if err != nil {
		return nil, err
	}

	labels := entry.Descriptor.Emotions
	if len(logits) != len(labels) {
		return nil, fmt.Errorf("%s returned %d scores for %d emotions", name, len(logits), len(labels))
	}
	if !finite(logits) {
		return nil, fmt.Errorf("%w: %s", ErrNonFiniteOutput, name)
	}

	probs := Softmax(logits)
	predictions := make(map[string]float64, len(labels))
	for i, label := range labels {
		predictions[label] = probs[i]
	}

	top := argmax(probs)
	slog.Debug("prediction", "model", name, "top_emotion", labels[top], "confidence", probs[top])

	return &PredictionResult{
		Success:     true,
		Model:       name,
		Predictions: predictions,
		TopEmotion:  labels[top],
		Confidence:  probs[top],
	}, nil
}

func demoPrediction(name string) *PredictionResult {
	predictions := make(map[string]float64, len(demoDistribution))
	top := demoDistribution[0]
	for _, p := range demoDistribution {
		predictions[p.label] = p.prob
		if p.prob > top.prob {
			top = p
		}
	}

	return &PredictionResult{
		Success:     true,
		Model:       name,
		Predictions: predictions,
		TopEmotion:  top.label,
		Confidence:  top.prob,
		Note:        DemoNote,
	}
}

// Models lists the whole registry and the currently resident models.
func (s *Server) Models() ModelsResponse {
	return ModelsResponse{
		Models:       s.Registry.All(),
		LoadedModels: s.cache.Loaded(),
	}
}

func (s *Server) Health() HealthResponse {
	h := HealthResponse{
		Status:          "healthy",
		Device:          s.runtime.Device(),
		LoadedModels:    s.cache.Len(),
		AvailableModels: s.Registry.Len(),
	}
	if !s.real {
		h.Deployment = "serverless"
	}
	return h
}

// RealWeights reports whether predictions come from real forward passes.
func (s *Server) RealWeights() bool {
	return s.real
}

// Loads counts model loads since startup.
func (s *Server) Loads() int64 {
	return s.cache.Loads()
}

// Preload warms the given models. Unknown names are reported without
// aborting the others.
func (s *Server) Preload(ctx context.Context, names []string) error {
	return s.cache.Preload(ctx, names)
}

func (s *Server) Close() {
	if err := s.cache.Close(); err != nil {
		slog.Warn("error unloading models", "error", err)
	}
	if err := s.runtime.Close(); err != nil {
		slog.Warn("error closing runtime", "error", err)
	}
}
