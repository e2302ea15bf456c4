package neural

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Weights holds flattened network weights for serialization.
// W1 and W2 are row-major.
type Weights struct {
	Inputs     int       `json:"inputs"`
	Hidden     int       `json:"hidden"`
	Outputs    int       `json:"outputs"`
	InputScale float64   `json:"input_scale"`
	W1         []float64 `json:"w1"` // [Hidden * Inputs]
	B1         []float64 `json:"b1"` // [Hidden]
	W2         []float64 `json:"w2"` // [Outputs * Hidden]
	B2         []float64 `json:"b2"` // [Outputs]
}

// MarshalWeights flattens the network weights for JSON serialization.
func (nn *FFNN) MarshalWeights() Weights {
	inputs, hidden, outputs := nn.Dims()
	w := Weights{
		Inputs:     inputs,
		Hidden:     hidden,
		Outputs:    outputs,
		InputScale: nn.InputScale,
		W1:         make([]float64, hidden*inputs),
		B1:         make([]float64, hidden),
		W2:         make([]float64, outputs*hidden),
		B2:         make([]float64, outputs),
	}
	copy(w.W1, nn.W1.RawMatrix().Data)
	copy(w.B1, nn.B1.RawVector().Data)
	copy(w.W2, nn.W2.RawMatrix().Data)
	copy(w.B2, nn.B2.RawVector().Data)
	return w
}

// UnmarshalWeights builds a network from flattened weights.
func UnmarshalWeights(w Weights) (*FFNN, error) {
	if w.Inputs <= 0 || w.Hidden <= 0 || w.Outputs <= 0 {
		return nil, fmt.Errorf("layers %dx%dx%d: %w", w.Inputs, w.Hidden, w.Outputs, ErrWeightShape)
	}
	if len(w.W1) != w.Hidden*w.Inputs || len(w.B1) != w.Hidden ||
		len(w.W2) != w.Outputs*w.Hidden || len(w.B2) != w.Outputs {
		return nil, fmt.Errorf("layers %dx%dx%d with %d/%d/%d/%d values: %w",
			w.Inputs, w.Hidden, w.Outputs, len(w.W1), len(w.B1), len(w.W2), len(w.B2), ErrWeightShape)
	}

	nn := newEmpty(w.Inputs, w.Hidden, w.Outputs, w.InputScale)
	copy(nn.W1.RawMatrix().Data, w.W1)
	copy(nn.B1.RawVector().Data, w.B1)
	copy(nn.W2.RawMatrix().Data, w.W2)
	copy(nn.B2.RawVector().Data, w.B2)
	return nn, nil
}

// SaveFFNN writes the network weights to path as JSON.
func SaveFFNN(nn *FFNN, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create weights dir: %w", err)
	}

	data, err := json.MarshalIndent(nn.MarshalWeights(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write weights: %w", err)
	}
	return nil
}

// LoadFFNN reads a network from a JSON weight file.
func LoadFFNN(path string) (*FFNN, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weights: %w", err)
	}

	var w Weights
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal weights: %w", err)
	}

	nn, err := UnmarshalWeights(w)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return nn, nil
}
