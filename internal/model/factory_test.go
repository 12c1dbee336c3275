package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	features := map[string]int{MobileNetV2: 1280, ResNet50: 2048, VGG19: 4096}

	for tag, width := range features {
		t.Run(tag, func(t *testing.T) {
			top, err := Build(tag, 7)
			require.NoError(t, err)
			assert.Equal(t, tag, top.Name)
			assert.Equal(t, width, top.Features)
			assert.Equal(t, 7, top.NumClasses())
			assert.Equal(t, []int64{1, 3, 224, 224}, top.InputShape())
			assert.Equal(t, []int64{1, 7}, top.OutputShape())
		})
	}
}

func TestBuildFreshTopology(t *testing.T) {
	a, err := Build(VGG19, 7)
	require.NoError(t, err)
	b, err := Build(VGG19, 3)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, 7, a.Classes)
	assert.Equal(t, 3, b.Classes)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build("AlexNet", 7)
	assert.ErrorIs(t, err, ErrUnsupportedArchitecture)

	_, err = Build(ResNet50, 0)
	assert.Error(t, err)
}

func TestTopologyHasNoWeights(t *testing.T) {
	top, err := Build(MobileNetV2, 7)
	require.NoError(t, err)

	_, err = top.Forward(make([]float32, 3*224*224))
	assert.ErrorIs(t, err, ErrNoWeights)
	assert.NoError(t, top.Close())
}
