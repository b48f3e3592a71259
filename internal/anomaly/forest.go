// Package anomaly flags suspicious timesheet entries with an isolation
// forest over a small engineered feature set.
package anomaly

import (
	"math"
	"math/rand"
)

// isoNode is either a leaf or a random split.
type isoNode struct {
	feature   int
	threshold float64
	left      *isoNode
	right     *isoNode
}

func (n *isoNode) isLeaf() bool { return n.left == nil && n.right == nil }

// IsolationForest is an ensemble of random-partition trees. Samples that
// terminate at shallow depths are easy to isolate and score as anomalous.
type IsolationForest struct {
	nTrees     int
	maxSamples int
	maxDepth   int
	rng        *rand.Rand
	trees      []*isoNode
}

func NewIsolationForest(nTrees, maxSamples, maxDepth int, rng *rand.Rand) *IsolationForest {
	return &IsolationForest{
		nTrees:     nTrees,
		maxSamples: maxSamples,
		maxDepth:   maxDepth,
		rng:        rng,
	}
}

// Fit builds nTrees random-partition trees, each over a subsample drawn by
// discarding random indices until at most maxSamples remain.
func (f *IsolationForest) Fit(features [][]float64) {
	f.trees = make([]*isoNode, 0, f.nTrees)

	for t := 0; t < f.nTrees; t++ {
		indices := make([]int, len(features))
		for i := range indices {
			indices[i] = i
		}
		for len(indices) > f.maxSamples && len(indices) > 0 {
			i := f.rng.Intn(len(indices))
			indices = append(indices[:i], indices[i+1:]...)
		}

		f.trees = append(f.trees, f.build(features, indices, 0))
	}
}

func (f *IsolationForest) build(features [][]float64, indices []int, depth int) *isoNode {
	if depth >= f.maxDepth || len(indices) <= 1 {
		return &isoNode{}
	}

	feature := f.rng.Intn(len(features[0]))

	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, i := range indices {
		v := features[i][feature]
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	threshold := minVal + f.rng.Float64()*(maxVal-minVal)

	var left, right []int
	for _, i := range indices {
		if features[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &isoNode{}
	}

	return &isoNode{
		feature:   feature,
		threshold: threshold,
		left:      f.build(features, left, depth+1),
		right:     f.build(features, right, depth+1),
	}
}

// Predict returns exp(−meanPathLength) per sample: shorter average isolation
// paths yield larger raw scores.
func (f *IsolationForest) Predict(features [][]float64) []float64 {
	scores := make([]float64, len(features))

	for _, tree := range f.trees {
		for i, row := range features {
			scores[i] += pathLength(tree, row, 0)
		}
	}

	for i := range scores {
		scores[i] = math.Exp(-scores[i] / float64(f.nTrees))
	}
	return scores
}

func pathLength(node *isoNode, sample []float64, depth int) float64 {
	if node.isLeaf() {
		return float64(depth)
	}
	if sample[node.feature] < node.threshold {
		return pathLength(node.left, sample, depth+1)
	}
	return pathLength(node.right, sample, depth+1)
}
