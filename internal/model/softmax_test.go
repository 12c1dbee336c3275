package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func TestSoftmax(t *testing.T) {
	cases := map[string][]float32{
		"simple":   {1, 2, 3},
		"negative": {-4, -1, -2.5, -9},
		"large":    {1000, 1001, 999},
		"uniform":  {0.3, 0.3, 0.3, 0.3},
		"single":   {42},
	}

	for name, logits := range cases {
		t.Run(name, func(t *testing.T) {
			probs := Softmax(logits)
			assert.Len(t, probs, len(logits))
			assert.InDelta(t, 1.0, floats.Sum(probs), 1e-9)
			for _, p := range probs {
				assert.False(t, p < 0 || p > 1, "probability %v out of range", p)
			}
		})
	}
}

func TestSoftmaxPreservesOrder(t *testing.T) {
	probs := Softmax([]float32{0.5, 2, -1})
	assert.Greater(t, probs[1], probs[0])
	assert.Greater(t, probs[0], probs[2])
	assert.Equal(t, 1, argmax(probs))
}

func TestSoftmaxEmpty(t *testing.T) {
	assert.Nil(t, Softmax(nil))
}

func TestArgmaxTiesPickFirst(t *testing.T) {
	assert.Equal(t, 1, argmax([]float64{0.1, 0.4, 0.4, 0.1}))
}

func TestFinite(t *testing.T) {
	assert.True(t, finite([]float32{-3, 0, 1e30}))
	assert.False(t, finite([]float32{0, float32(math.Inf(1))}))
	assert.False(t, finite([]float32{float32(math.NaN())}))
}
