package model

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

var (
	fer2013Labels = []string{"angry", "disgust", "fear", "happy", "neutral", "sad", "surprise"}
	rafdbLabels   = []string{"Surprise", "Fear", "Disgust", "Happiness", "Sadness", "Anger", "Neutral"}
	ck48Labels    = []string{"anger", "contempt", "disgust", "fear", "happy", "sadness", "surprise"}
)

func descriptor(arch, dataset string, labels []string, accuracy float64) ModelDescriptor {
	name := arch + "_" + dataset
	return ModelDescriptor{
		Name:         name,
		Architecture: arch,
		Dataset:      dataset,
		Emotions:     slices.Clone(labels),
		Accuracy:     accuracy,
		File:         name + "_best.onnx",
	}
}

// DefaultDescriptors is the built-in model table.
func DefaultDescriptors() []ModelDescriptor {
	return []ModelDescriptor{
		descriptor(MobileNetV2, "FER2013", fer2013Labels, 55.68),
		descriptor(MobileNetV2, "RAF-DB", rafdbLabels, 73.57),
		descriptor(MobileNetV2, "CK+48", ck48Labels, 97.98),
		descriptor(ResNet50, "FER2013", fer2013Labels, 56.60),
		descriptor(ResNet50, "RAF-DB", rafdbLabels, 76.27),
		descriptor(ResNet50, "CK+48", ck48Labels, 98.99),
		descriptor(VGG19, "FER2013", fer2013Labels, 58.75),
		descriptor(VGG19, "RAF-DB", rafdbLabels, 80.28),
		descriptor(VGG19, "CK+48", ck48Labels, 98.99),
	}
}

// Registry is a read-only table of model descriptors keyed by name.
type Registry struct {
	models map[string]ModelDescriptor
}

// NewRegistry validates descriptors and builds a registry from them.
// Architectures are checked here so a bad table fails at startup rather than
// on the first request.
func NewRegistry(descriptors []ModelDescriptor) (*Registry, error) {
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("registry has no models")
	}

	models := make(map[string]ModelDescriptor, len(descriptors))
	for i, d := range descriptors {
		switch {
		case d.Name == "":
			return nil, fmt.Errorf("registry entry %d: missing name", i)
		case len(d.Emotions) == 0:
			return nil, fmt.Errorf("registry entry %q: no emotions", d.Name)
		case d.File == "":
			return nil, fmt.Errorf("registry entry %q: missing weight file", d.Name)
		}
		if _, ok := architectures[d.Architecture]; !ok {
			return nil, fmt.Errorf("registry entry %q: %w: %s", d.Name, ErrUnsupportedArchitecture, d.Architecture)
		}
		if _, dup := models[d.Name]; dup {
			return nil, fmt.Errorf("registry entry %q: duplicate name", d.Name)
		}
		models[d.Name] = d.clone()
	}

	return &Registry{models: models}, nil
}

// DefaultRegistry returns the registry built from DefaultDescriptors.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultDescriptors())
	if err != nil {
		panic(err)
	}
	return r
}

type registryFile struct {
	Models []ModelDescriptor `yaml:"models"`
}

// LoadRegistry reads a YAML registry file:
//
//	models:
//	  - name: MobileNetV2_FER2013
//	    architecture: MobileNetV2
//	    dataset: FER2013
//	    emotions: [angry, disgust, fear, happy, neutral, sad, surprise]
//	    accuracy: 55.68
//	    file: MobileNetV2_FER2013_best.onnx
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}

	return NewRegistry(f.Models)
}

// Lookup returns a copy of the named descriptor.
func (r *Registry) Lookup(name string) (ModelDescriptor, error) {
	d, ok := r.models[name]
	if !ok {
		return ModelDescriptor{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return d.clone(), nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.models[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.models))
}

// All returns a copy of the whole table.
func (r *Registry) All() map[string]ModelDescriptor {
	all := make(map[string]ModelDescriptor, len(r.models))
	for name, d := range r.models {
		all[name] = d.clone()
	}
	return all
}

func (r *Registry) Len() int {
	return len(r.models)
}
