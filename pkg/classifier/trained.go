package classifier

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/agrovision/shade-analyzer/pkg/features"
)

// Dimensions of the trained policy's feed-forward network.
const (
	trainedInputs  = features.RegionVectorLen
	trainedHidden  = 8
	trainedOutputs = 2
)

// defaultWeightSeed makes the untrained network deterministic: two policies
// built with NewTrainedPolicy always agree.
const defaultWeightSeed = 1

// TrainedPolicy is a small feed-forward classifier over the 6-element region
// vector: one tanh hidden layer and a two-class softmax output. It exists as
// an experimentation plug-in alongside the deterministic policies; weights
// are fixed after construction (or after an explicit Train call), so
// inference is deterministic and safe for concurrent use.
type TrainedPolicy struct {
	w1 *mat.Dense // hidden x inputs
	b1 *mat.VecDense
	w2 *mat.Dense // outputs x hidden
	b2 *mat.VecDense
}

// NewTrainedPolicy creates a trained policy with deterministic seeded
// weights.
func NewTrainedPolicy() *TrainedPolicy {
	return NewTrainedPolicyFromSource(rand.New(rand.NewSource(defaultWeightSeed)))
}

// NewTrainedPolicyFromSource creates a trained policy with weights drawn
// from the given random source. Tests inject a fixed source to keep
// inference reproducible.
func NewTrainedPolicyFromSource(rng *rand.Rand) *TrainedPolicy {
	randomVec := func(n int) *mat.VecDense {
		data := make([]float64, n)
		for i := range data {
			data[i] = rng.NormFloat64() * 0.1
		}
		return mat.NewVecDense(n, data)
	}
	randomMat := func(rows, cols int) *mat.Dense {
		data := make([]float64, rows*cols)
		scale := 1 / math.Sqrt(float64(cols))
		for i := range data {
			data[i] = rng.NormFloat64() * scale
		}
		return mat.NewDense(rows, cols, data)
	}

	return &TrainedPolicy{
		w1: randomMat(trainedHidden, trainedInputs),
		b1: randomVec(trainedHidden),
		w2: randomMat(trainedOutputs, trainedHidden),
		b2: randomVec(trainedOutputs),
	}
}

// Name returns the policy identifier.
func (p *TrainedPolicy) Name() string { return PolicyTrained }

// Taxonomy returns TwoClass.
func (p *TrainedPolicy) Taxonomy() Taxonomy { return TwoClass }

// ClassifyRegion runs the network forward and labels the region by the
// larger of the two softmax outputs (index 0 shadow, index 1 light).
func (p *TrainedPolicy) ClassifyRegion(v features.Vector) Label {
	probs := p.forward(v)
	if probs[1] > probs[0] {
		return Light
	}
	return Shadow
}

// Sample pairs a feature vector with its ground-truth label for training.
type Sample struct {
	Features features.Vector
	Label    Label
}

// Train fits the network to the samples with plain stochastic gradient
// descent over the softmax cross-entropy loss. It mutates the policy and
// must not run concurrently with classification; train once, then treat the
// policy as read-only.
func (p *TrainedPolicy) Train(samples []Sample, epochs int, learningRate float64, rng *rand.Rand) {
	if len(samples) == 0 || epochs <= 0 {
		return
	}

	order := make([]int, len(samples))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, idx := range order {
			p.step(samples[idx], learningRate)
		}
	}
}

// step applies one gradient update for a single sample.
func (p *TrainedPolicy) step(s Sample, lr float64) {
	in := inputVec(s.Features)

	// Forward pass, keeping intermediates.
	hidden := mat.NewVecDense(trainedHidden, nil)
	hidden.MulVec(p.w1, in)
	hidden.AddVec(hidden, p.b1)
	activated := mat.NewVecDense(trainedHidden, nil)
	for i := 0; i < trainedHidden; i++ {
		activated.SetVec(i, math.Tanh(hidden.AtVec(i)))
	}

	out := mat.NewVecDense(trainedOutputs, nil)
	out.MulVec(p.w2, activated)
	out.AddVec(out, p.b2)
	probs := softmax([]float64{out.AtVec(0), out.AtVec(1)})

	target := 0.0
	if s.Label.IsLight() {
		target = 1.0
	}

	// Output-layer gradient: softmax + cross-entropy.
	dOut := []float64{probs[0] - (1 - target), probs[1] - target}

	// Hidden-layer gradient through the tanh.
	dHidden := make([]float64, trainedHidden)
	for i := 0; i < trainedHidden; i++ {
		var sum float64
		for j := 0; j < trainedOutputs; j++ {
			sum += p.w2.At(j, i) * dOut[j]
		}
		a := activated.AtVec(i)
		dHidden[i] = sum * (1 - a*a)
	}

	for j := 0; j < trainedOutputs; j++ {
		for i := 0; i < trainedHidden; i++ {
			p.w2.Set(j, i, p.w2.At(j, i)-lr*dOut[j]*activated.AtVec(i))
		}
		p.b2.SetVec(j, p.b2.AtVec(j)-lr*dOut[j])
	}
	for i := 0; i < trainedHidden; i++ {
		for k := 0; k < trainedInputs; k++ {
			p.w1.Set(i, k, p.w1.At(i, k)-lr*dHidden[i]*in.AtVec(k))
		}
		p.b1.SetVec(i, p.b1.AtVec(i)-lr*dHidden[i])
	}
}

// forward runs the network and returns the two softmax probabilities.
func (p *TrainedPolicy) forward(v features.Vector) []float64 {
	in := inputVec(v)

	hidden := mat.NewVecDense(trainedHidden, nil)
	hidden.MulVec(p.w1, in)
	hidden.AddVec(hidden, p.b1)
	for i := 0; i < trainedHidden; i++ {
		hidden.SetVec(i, math.Tanh(hidden.AtVec(i)))
	}

	out := mat.NewVecDense(trainedOutputs, nil)
	out.MulVec(p.w2, hidden)
	out.AddVec(out, p.b2)
	return softmax([]float64{out.AtVec(0), out.AtVec(1)})
}

// inputVec normalizes a 6-element feature vector to [0,1] inputs. The first
// four components are on the 0-255 scale; contrast and edge are already
// normalized.
func inputVec(v features.Vector) *mat.VecDense {
	data := make([]float64, trainedInputs)
	for i := 0; i < trainedInputs && i < len(v); i++ {
		if i <= features.IdxBrightness {
			data[i] = v[i] / 255
		} else {
			data[i] = v[i]
		}
	}
	return mat.NewVecDense(trainedInputs, data)
}

func softmax(logits []float64) []float64 {
	max := logits[0]
	for _, l := range logits[1:] {
		if l > max {
			max = l
		}
	}
	var sum float64
	out := make([]float64, len(logits))
	for i, l := range logits {
		out[i] = math.Exp(l - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
