package neural

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrWeightShape is returned when weights or inputs do not fit the network.
var ErrWeightShape = errors.New("weight shape mismatch")

// FFNN is a two-layer feedforward network with tanh activations.
// Inputs are multiplied by InputScale before the first layer, since raw
// sensor values are in world units.
type FFNN struct {
	W1 *mat.Dense    // hidden x inputs
	B1 *mat.VecDense // hidden
	W2 *mat.Dense    // outputs x hidden
	B2 *mat.VecDense // outputs

	InputScale float64

	// scratch, reused across Forward calls
	x, h, o *mat.VecDense
}

// NewFFNN creates a randomly initialized network. sigma scales the Xavier
// initialization; biases start at zero.
func NewFFNN(rng *rand.Rand, inputs, hidden, outputs int, sigma, inputScale float64) *FFNN {
	nn := newEmpty(inputs, hidden, outputs, inputScale)

	scale1 := sigma * math.Sqrt(2.0/float64(inputs))
	scale2 := sigma * math.Sqrt(2.0/float64(hidden))

	w1 := nn.W1.RawMatrix().Data
	for i := range w1 {
		w1[i] = rng.NormFloat64() * scale1
	}
	w2 := nn.W2.RawMatrix().Data
	for i := range w2 {
		w2[i] = rng.NormFloat64() * scale2
	}

	return nn
}

func newEmpty(inputs, hidden, outputs int, inputScale float64) *FFNN {
	return &FFNN{
		W1:         mat.NewDense(hidden, inputs, nil),
		B1:         mat.NewVecDense(hidden, nil),
		W2:         mat.NewDense(outputs, hidden, nil),
		B2:         mat.NewVecDense(outputs, nil),
		InputScale: inputScale,
		x:          mat.NewVecDense(inputs, nil),
		h:          mat.NewVecDense(hidden, nil),
		o:          mat.NewVecDense(outputs, nil),
	}
}

// Dims returns the input, hidden and output layer sizes.
func (nn *FFNN) Dims() (inputs, hidden, outputs int) {
	hidden, inputs = nn.W1.Dims()
	outputs, _ = nn.W2.Dims()
	return inputs, hidden, outputs
}

// Forward computes the network output. Every output is in [-1, 1].
func (nn *FFNN) Forward(inputs []float64) ([]float64, error) {
	if len(inputs) != nn.x.Len() {
		return nil, fmt.Errorf("%d inputs for a %d-input network: %w", len(inputs), nn.x.Len(), ErrWeightShape)
	}
	for i, v := range inputs {
		nn.x.SetVec(i, v*nn.InputScale)
	}

	nn.h.MulVec(nn.W1, nn.x)
	nn.h.AddVec(nn.h, nn.B1)
	activate(nn.h)

	nn.o.MulVec(nn.W2, nn.h)
	nn.o.AddVec(nn.o, nn.B2)
	activate(nn.o)

	out := make([]float64, nn.o.Len())
	copy(out, nn.o.RawVector().Data)
	return out, nil
}

// Evaluate implements Controller. A wrongly sized sensor vector yields nil,
// which leaves every bone unactuated.
func (nn *FFNN) Evaluate(sensors []float64) []float64 {
	out, err := nn.Forward(sensors)
	if err != nil {
		return nil
	}
	return out
}

// Mutate perturbs weights and biases with Gaussian noise.
func (nn *FFNN) Mutate(rng *rand.Rand, strength float64) {
	for _, data := range [][]float64{
		nn.W1.RawMatrix().Data,
		nn.B1.RawVector().Data,
		nn.W2.RawMatrix().Data,
		nn.B2.RawVector().Data,
	} {
		for i := range data {
			data[i] += rng.NormFloat64() * strength
		}
	}
}

// Clone creates a deep copy of the network.
func (nn *FFNN) Clone() *FFNN {
	inputs, hidden, outputs := nn.Dims()
	clone := newEmpty(inputs, hidden, outputs, nn.InputScale)
	clone.W1.Copy(nn.W1)
	clone.B1.CopyVec(nn.B1)
	clone.W2.Copy(nn.W2)
	clone.B2.CopyVec(nn.B2)
	return clone
}

func activate(v *mat.VecDense) {
	data := v.RawVector().Data
	for i := range data {
		data[i] = math.Tanh(data[i])
	}
}
