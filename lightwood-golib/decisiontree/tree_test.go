package decisiontree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestStump(t *testing.T) {
	tree := NewStump(2, 0, 2.5, -3., 11.)
	x1 := []float64{1., 0.}
	x2 := []float64{5., 0.}
	assert.Equal(t, 0, tree.Leaf(x1))
	assert.Equal(t, -3., tree.Evaluate(x1))
	assert.Equal(t, 1, tree.Leaf(x2))
	assert.Equal(t, 11., tree.Evaluate(x2))

	tree.Scale(0.5)
	assert.Equal(t, 5.5, tree.Evaluate(x2))
}

func TestDepthTwo(t *testing.T) {
	tree := Tree{
		Nodes: []Node{
			{Feature: 0, Threshold: 2.5, Left: 1, Right: 2},
			{Feature: 1, Threshold: 0, Left: 0, LeftIsLeaf: true, Right: 1, RightIsLeaf: true},
			{Feature: 1, Threshold: 1, Left: 2, LeftIsLeaf: true, Right: 3, RightIsLeaf: true},
		},
		Leaves:   []float64{1, 2, 3, 4},
		Features: 2,
		Depth:    2,
	}
	assert.Equal(t, 0, tree.Leaf([]float64{1, -1}))
	assert.Equal(t, 1, tree.Leaf([]float64{1, 1}))
	assert.Equal(t, 2, tree.Leaf([]float64{3, 0}))
	assert.Equal(t, 4., tree.Evaluate([]float64{3, 2}))
}

func TestWrongWidthPanics(t *testing.T) {
	tree := NewStump(2, 0, 0, 0, 0)
	assert.Panics(t, func() { tree.Leaf([]float64{1}) })
	assert.Panics(t, func() { (&Tree{Features: 1}).Leaf([]float64{1}) })
}

func TestFitStump(t *testing.T) {
	// column 0 is noise, column 1 separates the residuals
	x := mat.NewDense(4, 2, []float64{
		3, 0,
		1, 1,
		2, 5,
		0, 6,
	})
	stump, ok := FitStump(x, []float64{-2, -2, 2, 2})
	require.True(t, ok)
	assert.Equal(t, 1, stump.Nodes[0].Feature)
	assert.Equal(t, 3., stump.Nodes[0].Threshold)
	assert.Equal(t, []float64{-2, 2}, stump.Leaves)

	_, ok = FitStump(mat.NewDense(3, 1, []float64{7, 7, 7}), []float64{1, 2, 3})
	assert.False(t, ok)
}

func TestEnsembleAdd(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{0, 1})
	residual := []float64{-1, 1}
	e := Ensemble{Base: 5}

	e.Add(NewStump(1, 0, 0.5, -1, 1), 0.5, x, residual)
	assert.Equal(t, []float64{-0.5, 0.5}, residual)
	assert.Equal(t, []float64{4.5, 5.5}, e.EvaluateRows(x))
}

func TestEnsembleRoundTrip(t *testing.T) {
	e := Ensemble{
		Base:  10,
		Trees: []Tree{NewStump(1, 0, 0, -1, 1), NewStump(1, 0, 5, -2, 2)},
	}
	assert.Equal(t, 10.-1-2, e.Evaluate([]float64{-1}))
	assert.Equal(t, 10.+1+2, e.Evaluate([]float64{6}))

	var buf bytes.Buffer
	require.NoError(t, e.Save(&buf))
	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, e, *loaded)
}
