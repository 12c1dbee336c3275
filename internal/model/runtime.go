package model

import "fmt"

// Network runs a forward pass on one preprocessed image and returns the raw
// class scores.
type Network interface {
	Forward(input []float32) ([]float32, error)
	NumClasses() int
	Close() error
}

// Runtime binds topologies to weight files.
type Runtime interface {
	Load(top *Topology, path string) (Network, error)
	Device() string
	Close() error
}

// StubRuntime serves deployments that never bind weights, so the onnxruntime
// library does not have to be present.
type StubRuntime struct {
	DeviceName string
}

func (r StubRuntime) Load(top *Topology, path string) (Network, error) {
	return nil, fmt.Errorf("%w: %s: runtime has no inference backend", ErrLoad, path)
}

func (r StubRuntime) Device() string {
	if r.DeviceName == "" {
		return "cpu"
	}
	return r.DeviceName
}

func (r StubRuntime) Close() error { return nil }
