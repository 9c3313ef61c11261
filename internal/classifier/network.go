package classifier

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// dense is a fully connected layer computing x*w + b.
type dense struct {
	w *mat.Dense // in x out
	b []float64  // out
}

// newDense initialises weights with Glorot-uniform noise and zero bias.
func newDense(in, out int, rng *rand.Rand) *dense {
	limit := math.Sqrt(6 / float64(in+out))
	data := make([]float64, in*out)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return &dense{
		w: mat.NewDense(in, out, data),
		b: make([]float64, out),
	}
}

func (d *dense) dims() (in, out int) {
	return d.w.Dims()
}

func (d *dense) forward(x mat.Matrix) *mat.Dense {
	var z mat.Dense
	z.Mul(x, d.w)
	z.Apply(func(_, j int, v float64) float64 {
		return v + d.b[j]
	}, &z)
	return &z
}

// network is a stack of ReLU hidden layers with inverted dropout, followed by
// a softmax output layer.
type network struct {
	layers  []*dense
	dropout float64
}

func newNetwork(sizes []int, dropout float64, rng *rand.Rand) *network {
	n := &network{dropout: dropout}
	for i := 0; i+1 < len(sizes); i++ {
		n.layers = append(n.layers, newDense(sizes[i], sizes[i+1], rng))
	}
	return n
}

func (n *network) inputWidth() int {
	in, _ := n.layers[0].dims()
	return in
}

// trace records one forward pass for backpropagation.
type trace struct {
	inputs []*mat.Dense // input of each layer
	pre    []*mat.Dense // pre-activation of each hidden layer
	masks  []*mat.Dense // dropout mask of each hidden layer, nil outside training
	probs  *mat.Dense   // softmax output
}

// forward runs x through the network. Dropout is applied only when rng is non-nil.
func (n *network) forward(x *mat.Dense, rng *rand.Rand) *trace {
	tr := &trace{}
	a := x
	last := len(n.layers) - 1

	for i, l := range n.layers {
		tr.inputs = append(tr.inputs, a)
		z := l.forward(a)
		if i == last {
			softmaxRows(z)
			tr.probs = z
			break
		}

		tr.pre = append(tr.pre, z)
		var h mat.Dense
		h.Apply(func(_, _ int, v float64) float64 {
			return math.Max(0, v)
		}, z)

		var mask *mat.Dense
		if rng != nil && n.dropout > 0 {
			r, c := h.Dims()
			mask = dropoutMask(r, c, n.dropout, rng)
			h.MulElem(&h, mask)
		}
		tr.masks = append(tr.masks, mask)
		a = &h
	}
	return tr
}

// grad holds the loss gradient for one layer.
type grad struct {
	w *mat.Dense
	b []float64
}

// backward returns per-layer gradients of the mean categorical cross-entropy.
// For softmax + cross-entropy the output delta reduces to probs - y.
func (n *network) backward(tr *trace, y *mat.Dense) []grad {
	rows, _ := y.Dims()
	grads := make([]grad, len(n.layers))

	var delta mat.Dense
	delta.Sub(tr.probs, y)
	delta.Scale(1/float64(rows), &delta)
	d := &delta

	for i := len(n.layers) - 1; i >= 0; i-- {
		var gw mat.Dense
		gw.Mul(tr.inputs[i].T(), d)
		grads[i] = grad{w: &gw, b: colSums(d)}
		if i == 0 {
			break
		}

		var prev mat.Dense
		prev.Mul(d, n.layers[i].w.T())
		if mask := tr.masks[i-1]; mask != nil {
			prev.MulElem(&prev, mask)
		}
		pre := tr.pre[i-1]
		prev.Apply(func(r, c int, v float64) float64 {
			if pre.At(r, c) > 0 {
				return v
			}
			return 0
		}, &prev)
		d = &prev
	}
	return grads
}

// dropoutMask keeps each unit with probability 1-rate and rescales survivors
// so the expected activation is unchanged.
func dropoutMask(rows, cols int, rate float64, rng *rand.Rand) *mat.Dense {
	keep := 1 - rate
	data := make([]float64, rows*cols)
	for i := range data {
		if rng.Float64() < keep {
			data[i] = 1 / keep
		}
	}
	return mat.NewDense(rows, cols, data)
}

func softmaxRows(z *mat.Dense) {
	rows, _ := z.Dims()
	for i := 0; i < rows; i++ {
		row := z.RawRowView(i)
		peak := floats.Max(row)
		for j := range row {
			row[j] = math.Exp(row[j] - peak)
		}
		floats.Scale(1/floats.Sum(row), row)
	}
}

func colSums(m *mat.Dense) []float64 {
	rows, cols := m.Dims()
	out := make([]float64, cols)
	for i := 0; i < rows; i++ {
		floats.Add(out, m.RawRowView(i))
	}
	return out
}

// crossEntropy is the mean categorical cross-entropy of probs against one-hot y.
func crossEntropy(probs, y *mat.Dense) float64 {
	const epsilon = 1e-7
	rows, cols := probs.Dims()
	var total float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if t := y.At(i, j); t > 0 {
				p := math.Min(math.Max(probs.At(i, j), epsilon), 1-epsilon)
				total -= t * math.Log(p)
			}
		}
	}
	return total / float64(rows)
}

// accuracy is the share of rows whose arg-max matches the one-hot target.
func accuracy(probs, y *mat.Dense) float64 {
	rows, _ := probs.Dims()
	if rows == 0 {
		return 0
	}
	hits := 0
	for i := 0; i < rows; i++ {
		if floats.MaxIdx(probs.RawRowView(i)) == floats.MaxIdx(y.RawRowView(i)) {
			hits++
		}
	}
	return float64(hits) / float64(rows)
}

// adam implements the Adam optimiser over every weight and bias slice.
type adam struct {
	lr, beta1, beta2, eps float64
	t                     int
	m, v                  [][]float64
}

func newAdam(lr float64, n *network) *adam {
	a := &adam{lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-7}
	for _, l := range n.layers {
		in, out := l.dims()
		a.m = append(a.m, make([]float64, in*out), make([]float64, out))
		a.v = append(a.v, make([]float64, in*out), make([]float64, out))
	}
	return a
}

func (a *adam) step(n *network, grads []grad) {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))
	for i, l := range n.layers {
		a.update(2*i, l.w.RawMatrix().Data, grads[i].w.RawMatrix().Data, c1, c2)
		a.update(2*i+1, l.b, grads[i].b, c1, c2)
	}
}

func (a *adam) update(k int, params, g []float64, c1, c2 float64) {
	m, v := a.m[k], a.v[k]
	for j := range params {
		m[j] = a.beta1*m[j] + (1-a.beta1)*g[j]
		v[j] = a.beta2*v[j] + (1-a.beta2)*g[j]*g[j]
		params[j] -= a.lr * (m[j] / c1) / (math.Sqrt(v[j]/c2) + a.eps)
	}
}
