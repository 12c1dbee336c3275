package model

import "errors"

var (
	// ErrNotFound is returned by registry lookups for unknown names.
	ErrNotFound = errors.New("model not found in configurations")
	// ErrInvalidModel rejects a predict request naming an unknown model.
	ErrInvalidModel = errors.New("invalid model")
	// ErrUnsupportedArchitecture means the registry names an architecture
	// the factory cannot build.
	ErrUnsupportedArchitecture = errors.New("unsupported architecture")
	// ErrMissingWeightFile means the weight file is absent from the results
	// directory.
	ErrMissingWeightFile = errors.New("model file not found")
	// ErrLoad covers weight files that fail to deserialize or do not match
	// the topology.
	ErrLoad = errors.New("error loading model")
	// ErrEvicted is returned when an entry was evicted while a request still
	// held it.
	ErrEvicted = errors.New("model was unloaded")
	// ErrInvalidInput rejects a preprocessed tensor of the wrong size.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNonFiniteOutput is returned when a forward pass yields NaN or
	// infinite scores.
	ErrNonFiniteOutput = errors.New("model produced non-finite scores")
	// ErrNoWeights is returned by a topology that was never bound to weights.
	ErrNoWeights = errors.New("no weights bound to network")
)
