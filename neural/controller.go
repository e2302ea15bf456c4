// Package neural provides controllers that turn a ragdoll's sensor vector
// into actuator commands.
package neural

// Controller maps a sensor vector to an actuator vector. Outputs are expected
// in [-1, 1], one per actuator.
type Controller interface {
	Evaluate(sensors []float64) []float64
}

// ControllerFunc adapts a plain function to the Controller interface.
type ControllerFunc func(sensors []float64) []float64

// Evaluate calls f(sensors).
func (f ControllerFunc) Evaluate(sensors []float64) []float64 {
	return f(sensors)
}

// Constant ignores its input and always returns the same outputs.
type Constant []float64

// Evaluate returns a copy of the constant outputs.
func (c Constant) Evaluate([]float64) []float64 {
	out := make([]float64, len(c))
	copy(out, c)
	return out
}

// Zero returns a controller that never actuates.
func Zero(outputs int) Constant {
	return make(Constant, outputs)
}
