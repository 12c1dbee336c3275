package model

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	require.Equal(t, 9, r.Len())

	names := r.Names()
	assert.True(t, slices.IsSorted(names))
	for _, arch := range []string{MobileNetV2, ResNet50, VGG19} {
		for _, ds := range []string{"FER2013", "RAF-DB", "CK+48"} {
			name := arch + "_" + ds
			assert.Contains(t, names, name)

			d, err := r.Lookup(name)
			require.NoError(t, err)
			assert.Equal(t, arch, d.Architecture)
			assert.Equal(t, ds, d.Dataset)
			assert.Len(t, d.Emotions, 7)
			assert.Equal(t, name+"_best.onnx", d.File)
		}
	}

	d, err := r.Lookup("VGG19_RAF-DB")
	require.NoError(t, err)
	assert.InDelta(t, 80.28, d.Accuracy, 1e-9)
	assert.Equal(t, "Surprise", d.Emotions[0])
}

func TestRegistryLookupNotFound(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Lookup("AlexNet_FER2013")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, r.Has("AlexNet_FER2013"))
}

func TestRegistryIsReadOnly(t *testing.T) {
	r := DefaultRegistry()

	d, err := r.Lookup("ResNet50_CK+48")
	require.NoError(t, err)
	d.Emotions[0] = "mutated"

	all := r.All()
	all["ResNet50_CK+48"].Emotions[1] = "mutated"
	delete(all, "VGG19_CK+48")

	again, err := r.Lookup("ResNet50_CK+48")
	require.NoError(t, err)
	assert.Equal(t, []string{"anger", "contempt", "disgust", "fear", "happy", "sadness", "surprise"}, again.Emotions)
	assert.Equal(t, 9, r.Len())
}

func TestNewRegistryValidation(t *testing.T) {
	good := ModelDescriptor{Name: "m", Architecture: ResNet50, Emotions: []string{"a"}, File: "m.onnx"}

	cases := map[string][]ModelDescriptor{
		"empty":        nil,
		"no name":      {{Architecture: ResNet50, Emotions: []string{"a"}, File: "x"}},
		"no emotions":  {{Name: "m", Architecture: ResNet50, File: "x"}},
		"no file":      {{Name: "m", Architecture: ResNet50, Emotions: []string{"a"}}},
		"duplicate":    {good, good},
		"architecture": {{Name: "m", Architecture: "AlexNet", Emotions: []string{"a"}, File: "x"}},
	}

	for name, descs := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(descs)
			assert.Error(t, err)
		})
	}

	_, err := NewRegistry(cases["architecture"])
	assert.ErrorIs(t, err, ErrUnsupportedArchitecture)
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - name: MobileNetV2_Custom
    architecture: MobileNetV2
    dataset: Custom
    emotions: [calm, tense, joyful]
    accuracy: 61.5
    file: custom.onnx
`), 0o644))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"MobileNetV2_Custom"}, r.Names())

	d, err := r.Lookup("MobileNetV2_Custom")
	require.NoError(t, err)
	assert.Equal(t, []string{"calm", "tense", "joyful"}, d.Emotions)
	assert.Equal(t, "custom.onnx", d.File)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("models: [oops"), 0o644))
	_, err = LoadRegistry(bad)
	assert.Error(t, err)
}
