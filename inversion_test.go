package inversion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inversion/debug"
	"inversion/gradient"
)

func TestSolveExponential(t *testing.T) {
	p, err := Load("load/testdata/exponential.yaml")
	require.NoError(t, err)
	var rec debug.Record
	rec.Init(p.Initial)
	cs, err := p.Solve(context.Background(), &rec)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, cs.Estimate[0], 1e-6)
	assert.InDelta(t, 0.7, cs.Estimate[1], 1e-6)
	assert.Equal(t, cs.Iteration+1, rec.Len())
	assert.Equal(t, cs.Goals, rec.Goals)
}

func TestSolveLine(t *testing.T) {
	p, err := Load("load/testdata/line.yaml")
	require.NoError(t, err)
	cs, err := p.Solve(context.Background(), nil)
	require.NoError(t, err)
	// y = 1 + 2x
	assert.InDelta(t, 1.0, cs.Estimate[0], 1e-8)
	assert.InDelta(t, 2.0, cs.Estimate[1], 1e-8)
}

func TestIteratorOptions(t *testing.T) {
	p, err := LoadString(`
method: levmarq
initial: [0]
data: [{model: polynomial, x: [1, 2, 3], y: [2.5, 5, 7.5], options: {degree: 0}}]
solver: {max_iterations: 7}
`)
	require.NoError(t, err)
	it, err := p.Iterator(gradient.WithMaxIterations(2))
	require.NoError(t, err)
	assert.Equal(t, 2, it.Config().MaxIterations)
	assert.Equal(t, gradient.DefaultInitialDamping, it.Damping())

	p.Method = gradient.MethodNewton
	it, err = p.Iterator()
	require.NoError(t, err)
	assert.Equal(t, 7, it.Config().MaxIterations)
}

func TestSolveCancelled(t *testing.T) {
	p, err := Load("load/testdata/exponential.yaml")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Solve(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
