package forecasting

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/emiliopalmerini/timesage/internal/domain"
)

const thresholdDraws = 10

// treeNode is either a leaf carrying a value or an internal split.
type treeNode struct {
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) isLeaf() bool { return n.left == nil && n.right == nil }

// DecisionTree is a greedy regression tree with randomized threshold search:
// at each node it draws a fixed number of candidate thresholds per feature and
// keeps the split with the lowest total squared error.
type DecisionTree struct {
	maxDepth        int
	minSamplesSplit int
	rng             *rand.Rand
	root            *treeNode
}

func NewDecisionTree(maxDepth, minSamplesSplit int, rng *rand.Rand) *DecisionTree {
	return &DecisionTree{
		maxDepth:        maxDepth,
		minSamplesSplit: minSamplesSplit,
		rng:             rng,
	}
}

func (t *DecisionTree) Fit(x [][]float64, y []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("tree fit: %w", domain.ErrEmptyInput)
	}

	indices := make([]int, len(x))
	for i := range indices {
		indices[i] = i
	}
	t.root = t.build(x, y, 0, indices)
	return nil
}

func (t *DecisionTree) build(x [][]float64, y []float64, depth int, indices []int) *treeNode {
	if depth >= t.maxDepth || len(indices) < t.minSamplesSplit {
		return &treeNode{value: meanAt(y, indices)}
	}

	bestFeature := -1
	bestThreshold := 0.0
	bestScore := math.Inf(1)

	for feature := 0; feature < len(x[0]); feature++ {
		minVal, maxVal := rangeAt(x, indices, feature)
		if maxVal-minVal < 1e-10 {
			continue
		}

		for draw := 0; draw < thresholdDraws; draw++ {
			threshold := minVal + t.rng.Float64()*(maxVal-minVal)

			left, right := partition(x, indices, feature, threshold)
			if len(left) == 0 || len(right) == 0 {
				continue
			}

			score := sse(y, left) + sse(y, right)
			if score < bestScore {
				bestScore = score
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	if bestFeature < 0 {
		return &treeNode{value: meanAt(y, indices)}
	}

	left, right := partition(x, indices, bestFeature, bestThreshold)
	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      t.build(x, y, depth+1, left),
		right:     t.build(x, y, depth+1, right),
	}
}

func (t *DecisionTree) Predict(x [][]float64) ([]float64, error) {
	if t.root == nil {
		return nil, fmt.Errorf("tree predict: %w", domain.ErrNotTrained)
	}

	out := make([]float64, len(x))
	for i, row := range x {
		node := t.root
		for !node.isLeaf() {
			if row[node.feature] < node.threshold {
				node = node.left
			} else {
				node = node.right
			}
		}
		out[i] = node.value
	}
	return out, nil
}

func meanAt(y []float64, indices []int) float64 {
	sum := 0.0
	for _, i := range indices {
		sum += y[i]
	}
	return sum / float64(len(indices))
}

func rangeAt(x [][]float64, indices []int, feature int) (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, i := range indices {
		v := x[i][feature]
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

func partition(x [][]float64, indices []int, feature int, threshold float64) ([]int, []int) {
	var left, right []int
	for _, i := range indices {
		if x[i][feature] < threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

// sse is the sum of squared errors against the partition mean.
func sse(y []float64, indices []int) float64 {
	mean := meanAt(y, indices)
	sum := 0.0
	for _, i := range indices {
		d := y[i] - mean
		sum += d * d
	}
	return sum
}
