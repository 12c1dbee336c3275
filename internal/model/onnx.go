package model

import (
	"fmt"
	"log/slog"

	ort "github.com/yalue/onnxruntime_go"
)

type ONNXOptions struct {
	// LibraryPath overrides the onnxruntime shared library location.
	LibraryPath string
	// Device is "cpu" or "cuda". CUDA falls back to CPU when the provider
	// cannot be attached.
	Device string
	// Threads caps intra-op threads per session (0 = runtime default).
	Threads int
}

// ONNXRuntime executes exported classifiers with onnxruntime.
type ONNXRuntime struct {
	opts ONNXOptions
}

func NewONNXRuntime(opts ONNXOptions) (*ONNXRuntime, error) {
	if opts.Device == "" {
		opts.Device = "cpu"
	}
	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
		}
	}
	return &ONNXRuntime{opts: opts}, nil
}

func (r *ONNXRuntime) Device() string {
	return r.opts.Device
}

// Load opens path as a session for top. The graph's output width must match
// the topology's class count.
func (r *ONNXRuntime) Load(top *Topology, path string) (Network, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if err := checkIO(top, inputs, outputs); err != nil {
		return nil, err
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer sessOpts.Destroy()

	if r.opts.Threads > 0 {
		if err := sessOpts.SetIntraOpNumThreads(r.opts.Threads); err != nil {
			return nil, fmt.Errorf("failed to set threads: %w", err)
		}
	}

	if r.opts.Device == "cuda" {
		if err := appendCUDA(sessOpts); err != nil {
			slog.Warn("cuda provider unavailable, running on cpu", "error", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{top.Input}, []string{top.Output}, sessOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create ONNX session: %v", ErrLoad, err)
	}

	return &onnxNetwork{session: session, top: top}, nil
}

func appendCUDA(sessOpts *ort.SessionOptions) error {
	cudaOpts, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return err
	}
	defer cudaOpts.Destroy()

	if err := cudaOpts.Update(map[string]string{"device_id": "0"}); err != nil {
		return err
	}
	return sessOpts.AppendExecutionProviderCUDA(cudaOpts)
}

func checkIO(top *Topology, inputs, outputs []ort.InputOutputInfo) error {
	var haveInput bool
	for _, in := range inputs {
		if in.Name == top.Input {
			haveInput = true
		}
	}
	if !haveInput {
		return fmt.Errorf("%w: graph has no input %q", ErrLoad, top.Input)
	}

	for _, out := range outputs {
		if out.Name != top.Output {
			continue
		}
		dims := out.Dimensions
		if len(dims) == 0 || dims[len(dims)-1] != int64(top.Classes) {
			return fmt.Errorf("%w: output %q has shape %v, want %d classes", ErrLoad, top.Output, dims, top.Classes)
		}
		return nil
	}
	return fmt.Errorf("%w: graph has no output %q", ErrLoad, top.Output)
}

func (r *ONNXRuntime) Close() error {
	if ort.IsInitialized() {
		return ort.DestroyEnvironment()
	}
	return nil
}

// onnxNetwork allocates tensors per call so concurrent requests can share one
// session.
type onnxNetwork struct {
	session *ort.DynamicAdvancedSession
	top     *Topology
}

func (n *onnxNetwork) Forward(input []float32) ([]float32, error) {
	inputTensor, err := ort.NewTensor(ort.NewShape(n.top.InputShape()...), input)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(n.top.OutputShape()...))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := n.session.Run(
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
	); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	logits := make([]float32, n.top.Classes)
	copy(logits, outputTensor.GetData())
	return logits, nil
}

func (n *onnxNetwork) NumClasses() int {
	return n.top.Classes
}

func (n *onnxNetwork) Close() error {
	if n.session != nil {
		err := n.session.Destroy()
		n.session = nil
		return err
	}
	return nil
}
