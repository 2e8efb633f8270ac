package datamodule

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"inversion/types"
)

func linearFixture(t *testing.T, weights []float64) *Linear {
	t.Helper()
	g := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 1,
	})
	dm, err := NewLinear(g, []float64{1, 2, 3}, weights)
	require.NoError(t, err)
	return dm
}

func TestLinearContributions(t *testing.T) {
	dm := linearFixture(t, nil)
	p := mat.NewVecDense(2, []float64{0, 0})
	res := types.Residual(dm, p)
	assert.Equal(t, []float64{1, 2, 3}, res.RawVector().Data)
	assert.Equal(t, 14.0, dm.Misfit(res))

	grad := mat.NewVecDense(2, nil)
	dm.SumGradient(grad, p, res)
	assert.Equal(t, []float64{-8, -10}, grad.RawVector().Data)

	hess := mat.NewDense(2, 2, nil)
	dm.SumHessian(hess, p)
	assert.True(t, mat.Equal(hess, mat.NewDense(2, 2, []float64{4, 2, 2, 4})), "hessian %v", mat.Formatted(hess))
}

func TestLinearPredicted(t *testing.T) {
	dm := linearFixture(t, nil)
	pred := dm.Predicted(mat.NewVecDense(2, []float64{1, 2}))
	assert.Equal(t, []float64{1, 2, 3}, mat.Col(nil, 0, pred))
	assert.Equal(t, 2, dm.NumParams())
	assert.Equal(t, 3, dm.Len())
}

func TestLinearWeights(t *testing.T) {
	dm := linearFixture(t, []float64{1, 2, 0})
	p := mat.NewVecDense(2, nil)
	res := types.Residual(dm, p)
	assert.Equal(t, 9.0, dm.Misfit(res))

	grad := mat.NewVecDense(2, nil)
	dm.SumGradient(grad, p, res)
	// -2·Gᵀ·W·r，W·r = [1, 4, 0]
	assert.Equal(t, []float64{-2, -8}, grad.RawVector().Data)

	hess := mat.NewDense(2, 2, nil)
	dm.SumHessian(hess, p)
	assert.True(t, mat.Equal(hess, mat.NewDense(2, 2, []float64{2, 0, 0, 4})), "hessian %v", mat.Formatted(hess))
}

// 两个相同数据模块的贡献恰为单个的两倍
func TestContributionsAdditive(t *testing.T) {
	dm := linearFixture(t, nil)
	p := mat.NewVecDense(2, []float64{0.5, -1})
	res := types.Residual(dm, p)

	one := mat.NewVecDense(2, nil)
	dm.SumGradient(one, p, res)
	two := mat.NewVecDense(2, nil)
	dm.SumGradient(two, p, res)
	dm.SumGradient(two, p, res)
	one.ScaleVec(2, one)
	assert.True(t, mat.Equal(one, two))

	h1 := mat.NewDense(2, 2, nil)
	dm.SumHessian(h1, p)
	h2 := mat.NewDense(2, 2, nil)
	dm.SumHessian(h2, p)
	dm.SumHessian(h2, p)
	h1.Scale(2, h1)
	assert.True(t, mat.Equal(h1, h2))
}

func TestInvalidData(t *testing.T) {
	g := mat.NewDense(2, 1, []float64{1, 1})
	cases := map[string]struct {
		data, weights []float64
	}{
		"empty":           {data: []float64{}},
		"nan":             {data: []float64{1, math.NaN()}},
		"weights length":  {data: []float64{1, 2}, weights: []float64{1}},
		"negative weight": {data: []float64{1, 2}, weights: []float64{1, -1}},
		"operator rows":   {data: []float64{1, 2, 3}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewLinear(g, c.data, c.weights)
			assert.ErrorIs(t, err, ErrInvalidData)
		})
	}
	_, err := NewFunc([]float64{1}, nil, 0, func(dst, p []float64) {}, nil)
	assert.ErrorIs(t, err, ErrInvalidData)
	_, err = NewPolynomial([]float64{1}, []float64{1}, nil, -1)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestExponentialJacobianMatchesNumJac(t *testing.T) {
	x := []float64{0, 0.5, 1, 1.5, 2}
	y := make([]float64, len(x))
	dm, err := NewExponential(x, y, nil)
	require.NoError(t, err)

	p := []float64{2, 0.7}
	analytic := dm.Jacobian(mat.NewVecDense(2, p))

	numeric := mat.NewDense(len(x), 2, nil)
	nj := &NumJac{Func: dm.forward, M: len(x)}
	nj.Jac(numeric, p)
	assert.True(t, mat.EqualApprox(analytic, numeric, 1e-7), "analytic %v\nnumeric %v",
		mat.Formatted(analytic), mat.Formatted(numeric))
}

func TestFuncDefaultsToNumJac(t *testing.T) {
	// y = p0 + p1·x²，Jacobian 为 [1, x²]
	x := []float64{-1, 0, 2}
	forward := func(dst, p []float64) {
		for i, xi := range x {
			dst[i] = p[0] + p[1]*xi*xi
		}
	}
	dm, err := NewFunc([]float64{1, 0, 4}, nil, 2, forward, nil)
	require.NoError(t, err)
	jac := dm.Jacobian(mat.NewVecDense(2, []float64{3, -2}))
	want := mat.NewDense(3, 2, []float64{1, 1, 1, 0, 1, 4})
	assert.True(t, mat.EqualApprox(jac, want, 1e-8), "jacobian %v", mat.Formatted(jac))

	// 正演函数不能修改参数向量
	p := mat.NewVecDense(2, []float64{3, -2})
	dm.Predicted(p)
	assert.Equal(t, []float64{3, -2}, p.RawVector().Data)
}

func TestFuncJacobianShape(t *testing.T) {
	dm, err := NewExponential([]float64{1, 2}, []float64{1, 2}, nil)
	require.NoError(t, err)
	assert.Panics(t, func() { dm.Jacobian(mat.NewVecDense(3, nil)) })
}

func TestVandermonde(t *testing.T) {
	g := Vandermonde([]float64{2, 3}, 2)
	want := mat.NewDense(2, 3, []float64{1, 2, 4, 1, 3, 9})
	assert.True(t, mat.Equal(g, want))
}

func TestRegisteredModels(t *testing.T) {
	names := types.ModelNames()
	assert.Contains(t, names, "polynomial")
	assert.Contains(t, names, "exponential")

	config, ok := types.GetModel("Polynomial")
	require.True(t, ok)
	value := types.ModelValue{
		X:       []float64{0, 1, 2},
		Y:       []float64{1, 3, 7},
		Options: map[string]any{"degree": 2.0},
	}
	n, err := config.NumParams(value)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	dm, err := config.Init(value)
	require.NoError(t, err)
	assert.IsType(t, &Linear{}, dm)

	value.Options["degree"] = 1.5
	_, err = config.NumParams(value)
	assert.Error(t, err)

	config, ok = types.GetModel("exponential")
	require.True(t, ok)
	n, err = config.NumParams(types.ModelValue{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, ok = types.GetModel("gaussian")
	assert.False(t, ok)
}
