package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Softmax converts raw scores into a probability distribution. It subtracts
// the log-sum-exp so large logits do not overflow.
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}

	scores := make([]float64, len(logits))
	for i, v := range logits {
		scores[i] = float64(v)
	}

	lse := floats.LogSumExp(scores)
	for i, s := range scores {
		scores[i] = math.Exp(s - lse)
	}
	return scores
}

// finite reports whether every score is a real number.
func finite(logits []float32) bool {
	for _, v := range logits {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// argmax returns the first index holding the maximum value.
func argmax(values []float64) int {
	return floats.MaxIdx(values)
}
