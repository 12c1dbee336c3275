package model

import "slices"

// ModelDescriptor is one registry entry. Descriptors are fixed at startup.
type ModelDescriptor struct {
	Name         string   `json:"-" yaml:"name"`
	Architecture string   `json:"architecture" yaml:"architecture"`
	Dataset      string   `json:"dataset" yaml:"dataset"`
	Emotions     []string `json:"emotions" yaml:"emotions"`
	Accuracy     float64  `json:"accuracy" yaml:"accuracy"`
	File         string   `json:"file" yaml:"file"`
}

func (d ModelDescriptor) clone() ModelDescriptor {
	d.Emotions = slices.Clone(d.Emotions)
	return d
}

type PredictionResult struct {
	Success     bool               `json:"success"`
	Model       string             `json:"model"`
	Predictions map[string]float64 `json:"predictions"`
	TopEmotion  string             `json:"top_emotion"`
	Confidence  float64            `json:"confidence"`
	Note        string             `json:"note,omitempty"`
}

type ModelsResponse struct {
	Models       map[string]ModelDescriptor `json:"models"`
	LoadedModels []string                   `json:"loaded_models"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	Device          string `json:"device"`
	LoadedModels    int    `json:"loaded_models"`
	AvailableModels int    `json:"available_models"`
	Deployment      string `json:"deployment,omitempty"`
}
