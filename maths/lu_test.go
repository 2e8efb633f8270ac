package maths

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// newTestSystem A = [[2, 3, 1], [1, 2, 3], [3, 1, 2]], b = [9, 6, 8]
// 预期解 x = [35/18, 29/18, 5/18]
func newTestSystem() (*mat.Dense, *mat.VecDense, []float64) {
	a := mat.NewDense(3, 3, []float64{
		2, 3, 1,
		1, 2, 3,
		3, 1, 2,
	})
	b := mat.NewVecDense(3, []float64{9, 6, 8})
	return a, b, []float64{35.0 / 18.0, 29.0 / 18.0, 5.0 / 18.0}
}

// TestLuDenseSolve 验证 LU 分解和求解过程的正确性。
func TestLuDenseSolve(t *testing.T) {
	a, b, expected := newTestSystem()
	lu, err := NewLU(3)
	require.NoError(t, err)

	x := mat.NewVecDense(3, nil)
	require.NoError(t, lu.Solve(x, a, b))
	for i := range expected {
		assert.InDelta(t, expected[i], x.AtVec(i), 1e-12, "x[%d]", i)
	}
	// 输入矩阵不被修改
	assert.Equal(t, 2.0, a.At(0, 0))
	assert.Equal(t, 9.0, b.AtVec(0))
}

// TestLuDenseSingular 验证奇异矩阵（有一行全为零）被识别。
func TestLuDenseSingular(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		0, 0, 0,
	})
	b := mat.NewVecDense(3, []float64{1, 2, 3})
	for _, name := range []Solver{SolverLU, SolverGonum} {
		t.Run(string(name), func(t *testing.T) {
			s, err := NewSolver(name, 3)
			require.NoError(t, err)
			err = s.Solve(mat.NewVecDense(3, nil), a, b)
			assert.ErrorIs(t, err, ErrSingular)
		})
	}
}

// TestLuNearlySingular 线性相关的行在舍入误差内也视为奇异。
func TestLuNearlySingular(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{
		1, 2,
		2, 4 + 1e-15,
	})
	b := mat.NewVecDense(2, []float64{1, 1})
	for _, name := range []Solver{SolverLU, SolverGonum} {
		t.Run(string(name), func(t *testing.T) {
			s, err := NewSolver(name, 2)
			require.NoError(t, err)
			assert.ErrorIs(t, s.Solve(mat.NewVecDense(2, nil), a, b), ErrSingular)
		})
	}
}

// TestLuDimensionMismatch 维度不匹配返回 ErrDimension。
func TestLuDimensionMismatch(t *testing.T) {
	a, _, _ := newTestSystem()
	for _, name := range []Solver{SolverLU, SolverGonum} {
		t.Run(string(name), func(t *testing.T) {
			s, err := NewSolver(name, 3)
			require.NoError(t, err)
			err = s.Solve(mat.NewVecDense(3, nil), a, mat.NewVecDense(2, nil))
			assert.ErrorIs(t, err, ErrDimension)

			s, err = NewSolver(name, 2)
			require.NoError(t, err)
			err = s.Solve(mat.NewVecDense(2, nil), a, mat.NewVecDense(2, nil))
			assert.ErrorIs(t, err, ErrDimension)
		})
	}
	_, err := NewLU(0)
	assert.ErrorIs(t, err, ErrDimension)
	_, err = NewSolver("qr", 3)
	assert.Error(t, err)
}

// TestLuMatchesGonum 随机矩阵上两种求解器结果一致，且满足 Ax = b。
func TestLuMatchesGonum(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const n = 8
	for trial := 0; trial < 20; trial++ {
		a := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				a.Set(i, j, rng.NormFloat64())
			}
			// 对角占优保证良态
			a.Set(i, i, a.At(i, i)+float64(n))
		}
		b := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			b.SetVec(i, rng.NormFloat64())
		}

		lu, err := NewLU(n)
		require.NoError(t, err)
		g, err := NewGonumLU(n)
		require.NoError(t, err)
		x1, x2 := mat.NewVecDense(n, nil), mat.NewVecDense(n, nil)
		require.NoError(t, lu.Solve(x1, a, b))
		require.NoError(t, g.Solve(x2, a, b))
		assert.True(t, mat.EqualApprox(x1, x2, 1e-10), "trial %d", trial)
		assert.Less(t, g.Cond(), MaxCondition)

		var ax mat.VecDense
		ax.MulVec(a, x1)
		assert.True(t, mat.EqualApprox(&ax, b, 1e-10), "trial %d", trial)
	}
}

// TestLuReuse 同一分解器重复使用，置换向量每次重置。
func TestLuReuse(t *testing.T) {
	lu, err := NewLU(2)
	require.NoError(t, err)
	x := mat.NewVecDense(2, nil)

	// 需要行交换
	require.NoError(t, lu.Solve(x, mat.NewDense(2, 2, []float64{0, 1, 1, 0}), mat.NewVecDense(2, []float64{3, 4})))
	assert.Equal(t, []float64{4, 3}, x.RawVector().Data)

	// 不需要行交换
	require.NoError(t, lu.Solve(x, mat.NewDense(2, 2, []float64{2, 0, 0, 4}), mat.NewVecDense(2, []float64{2, 2})))
	assert.Equal(t, []float64{1, 0.5}, x.RawVector().Data)
}

// TestLuNaN 含 NaN 的矩阵视为奇异。
func TestLuNaN(t *testing.T) {
	lu, err := NewLU(2)
	require.NoError(t, err)
	a := mat.NewDense(2, 2, []float64{math.NaN(), 0, 0, 1})
	assert.ErrorIs(t, lu.Solve(mat.NewVecDense(2, nil), a, mat.NewVecDense(2, nil)), ErrSingular)
}
