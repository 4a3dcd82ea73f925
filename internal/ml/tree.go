package ml

import (
	"sort"
)

// treeNode is one node of a regression tree, stored in a flat slice so
// the fitted tree serializes to JSON without pointer chasing.
type treeNode struct {
	Feature   int     `json:"feature"`   // split feature index, -1 for leaves
	Threshold float64 `json:"threshold"` // go left when x[Feature] <= Threshold
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"` // leaf weight
}

// regressionTree is a single gradient-fitted tree.
type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

// treeGrower carries the shared fitting state for one tree.
type treeGrower struct {
	x        [][]float64
	grad     []float64 // first-order gradients (residuals for squared loss)
	hess     []float64 // second-order; all ones for squared loss
	features []int     // column-sampled feature indices
	params   Hyperparams
}

// growTree fits one tree to the gradients of the sampled rows.
func growTree(x [][]float64, grad, hess []float64, rows, features []int, params Hyperparams) regressionTree {
	g := &treeGrower{x: x, grad: grad, hess: hess, features: features, params: params}
	tree := regressionTree{}
	g.split(&tree, rows, 0)
	return tree
}

// split recursively partitions rows, appending nodes to the tree and
// returning the new node's index.
func (g *treeGrower) split(tree *regressionTree, rows []int, depth int) int {
	var sumG, sumH float64
	for _, i := range rows {
		sumG += g.grad[i]
		sumH += g.hess[i]
	}

	idx := len(tree.Nodes)
	tree.Nodes = append(tree.Nodes, treeNode{Feature: -1, Value: leafWeight(sumG, sumH, g.params)})

	if depth >= g.params.MaxDepth || len(rows) < 2 {
		return idx
	}

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0
	parentScore := gainTerm(sumG, sumH, g.params)

	for _, f := range g.features {
		gain, threshold, ok := g.bestSplitOn(f, rows, sumG, sumH, parentScore)
		if ok && gain > bestGain {
			bestGain = gain
			bestFeature = f
			bestThreshold = threshold
		}
	}

	if bestFeature < 0 {
		return idx
	}

	var left, right []int
	for _, i := range rows {
		if g.x[i][bestFeature] <= bestThreshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	tree.Nodes[idx].Feature = bestFeature
	tree.Nodes[idx].Threshold = bestThreshold
	leftIdx := g.split(tree, left, depth+1)
	rightIdx := g.split(tree, right, depth+1)
	tree.Nodes[idx].Left = leftIdx
	tree.Nodes[idx].Right = rightIdx
	return idx
}

// bestSplitOn scans one feature's sorted values for the highest-gain
// split point respecting min_child_weight on both children.
func (g *treeGrower) bestSplitOn(feature int, rows []int, sumG, sumH, parentScore float64) (gain, threshold float64, ok bool) {
	order := make([]int, len(rows))
	copy(order, rows)
	sort.Slice(order, func(a, b int) bool {
		return g.x[order[a]][feature] < g.x[order[b]][feature]
	})

	var leftG, leftH float64
	for i := 0; i < len(order)-1; i++ {
		leftG += g.grad[order[i]]
		leftH += g.hess[order[i]]

		cur := g.x[order[i]][feature]
		next := g.x[order[i+1]][feature]
		if cur == next {
			continue
		}
		rightH := sumH - leftH
		if leftH < g.params.MinChildWeight || rightH < g.params.MinChildWeight {
			continue
		}
		rightG := sumG - leftG

		candidate := gainTerm(leftG, leftH, g.params) + gainTerm(rightG, rightH, g.params) - parentScore
		if candidate > gain {
			gain = candidate
			threshold = (cur + next) / 2
			ok = true
		}
	}
	return gain, threshold, ok
}

// leafWeight is the L1-soft-thresholded, L2-damped optimal leaf value
// -T(G) / (H + lambda).
func leafWeight(sumG, sumH float64, params Hyperparams) float64 {
	return -softThreshold(sumG, params.RegAlpha) / (sumH + params.RegLambda)
}

// gainTerm is T(G)^2 / (H + lambda), the structure score of one node.
func gainTerm(sumG, sumH float64, params Hyperparams) float64 {
	t := softThreshold(sumG, params.RegAlpha)
	return t * t / (sumH + params.RegLambda)
}

func softThreshold(g, alpha float64) float64 {
	if g > alpha {
		return g - alpha
	}
	if g < -alpha {
		return g + alpha
	}
	return 0
}

// predict walks the tree for one sample.
func (t regressionTree) predict(x []float64) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.Feature < 0 {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
}
