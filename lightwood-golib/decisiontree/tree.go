// Package decisiontree holds the regression trees and additive ensembles fitted by the boosted
// mixers, in a flat form that round trips through JSON.
package decisiontree

import "gonum.org/v1/gonum/mat"

// Node splits on x[Feature] < Threshold. Left and Right index either Tree.Nodes or, when the
// matching IsLeaf flag is set, Tree.Leaves.
type Node struct {
	Feature     int     `json:"feature"`
	Threshold   float64 `json:"threshold"`
	Left        int     `json:"left"`
	LeftIsLeaf  bool    `json:"left_is_leaf"`
	Right       int     `json:"right"`
	RightIsLeaf bool    `json:"right_is_leaf"`
}

// Tree maps an encoded row to the value of the leaf it falls into. Nodes[0] is the root.
type Tree struct {
	Nodes    []Node    `json:"nodes"`
	Leaves   []float64 `json:"leaves"`
	Features int       `json:"features"`
	Depth    int       `json:"depth"`
}

// NewStump returns a depth-one tree with leaf 0 for x[feature] < threshold and leaf 1 otherwise.
func NewStump(features, feature int, threshold, left, right float64) Tree {
	return Tree{
		Nodes: []Node{{
			Feature:     feature,
			Threshold:   threshold,
			Left:        0,
			LeftIsLeaf:  true,
			Right:       1,
			RightIsLeaf: true,
		}},
		Leaves:   []float64{left, right},
		Features: features,
		Depth:    1,
	}
}

// Leaf returns the index of the leaf x falls into. It panics if x does not have Features
// values or the tree is malformed.
func (t *Tree) Leaf(x []float64) int {
	if len(x) != t.Features {
		panic("decisiontree: row width does not match tree")
	}
	if len(t.Nodes) == 0 {
		panic("decisiontree: empty tree")
	}
	cur := t.Nodes[0]
	for i := 0; i < t.Depth; i++ {
		next, leaf := cur.Right, cur.RightIsLeaf
		if x[cur.Feature] < cur.Threshold {
			next, leaf = cur.Left, cur.LeftIsLeaf
		}
		if leaf {
			return next
		}
		cur = t.Nodes[next]
	}
	panic("decisiontree: no leaf within tree depth")
}

// Evaluate returns the value of the leaf x falls into.
func (t *Tree) Evaluate(x []float64) float64 {
	return t.Leaves[t.Leaf(x)]
}

// Scale multiplies every leaf by f.
func (t *Tree) Scale(f float64) {
	for i := range t.Leaves {
		t.Leaves[i] *= f
	}
}

// Ensemble predicts Base plus the sum of its trees, one tree per boosting round.
type Ensemble struct {
	Base  float64 `json:"base"`
	Trees []Tree  `json:"trees"`
}

// Add appends t shrunk by rate and subtracts its contribution from residual, whose entries
// line up with the rows of x.
func (e *Ensemble) Add(t Tree, rate float64, x mat.Matrix, residual []float64) {
	t.Scale(rate)
	for i := range residual {
		residual[i] -= t.Evaluate(mat.Row(nil, i, x))
	}
	e.Trees = append(e.Trees, t)
}

// Evaluate returns the prediction for one encoded row.
func (e *Ensemble) Evaluate(x []float64) float64 {
	sum := e.Base
	for i := range e.Trees {
		sum += e.Trees[i].Evaluate(x)
	}
	return sum
}

// EvaluateRows returns one prediction per row of x.
func (e *Ensemble) EvaluateRows(x mat.Matrix) []float64 {
	rows, _ := x.Dims()
	out := make([]float64, rows)
	for i := range out {
		out[i] = e.Evaluate(mat.Row(nil, i, x))
	}
	return out
}
