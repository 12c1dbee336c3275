package model

import (
	"fmt"

	"github.com/Brownie44l1/fer-api/internal/preprocess"
)

// Architecture tags understood by the factory.
const (
	MobileNetV2 = "MobileNetV2"
	ResNet50    = "ResNet50"
	VGG19       = "VGG19"
)

// Architecture describes an exported classifier graph. Features is the input
// width of the final linear layer, the one resized to the class count.
type Architecture struct {
	Name      string
	Features  int
	Input     string
	Output    string
	ImageSize int
}

var architectures = map[string]Architecture{
	MobileNetV2: {Name: MobileNetV2, Features: 1280, Input: "input", Output: "output", ImageSize: preprocess.DefaultImageSize},
	ResNet50:    {Name: ResNet50, Features: 2048, Input: "input", Output: "output", ImageSize: preprocess.DefaultImageSize},
	VGG19:       {Name: VGG19, Features: 4096, Input: "input", Output: "output", ImageSize: preprocess.DefaultImageSize},
}

// Topology is an architecture with its classifier head sized to Classes.
// It carries no weights; a Runtime binds it to a weight file.
type Topology struct {
	Architecture
	Classes int
}

// Build returns a fresh topology for tag with a head of the given width.
func Build(tag string, classes int) (*Topology, error) {
	arch, ok := architectures[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedArchitecture, tag)
	}
	if classes < 1 {
		return nil, fmt.Errorf("%s: invalid class count %d", tag, classes)
	}
	return &Topology{Architecture: arch, Classes: classes}, nil
}

// InputShape is the NCHW shape of a single-image batch.
func (t *Topology) InputShape() []int64 {
	return []int64{1, 3, int64(t.ImageSize), int64(t.ImageSize)}
}

// OutputShape is the shape of the logits for a single-image batch.
func (t *Topology) OutputShape() []int64 {
	return []int64{1, int64(t.Classes)}
}

// Forward always fails: an unweighted topology cannot run.
func (t *Topology) Forward([]float32) ([]float32, error) {
	return nil, fmt.Errorf("%s: %w", t.Name, ErrNoWeights)
}

func (t *Topology) NumClasses() int { return t.Classes }

func (t *Topology) Close() error { return nil }
