// Package datamodule 提供通用的最小二乘数据模块。
//
// 拟合差为加权残差平方和 Σ wᵢ·rᵢ²，梯度贡献为 -2·Jᵀ·W·r，
// Hessian 贡献为 Gauss-Newton 近似 2·Jᵀ·W·J，J 为正演模型的 Jacobian。
package datamodule

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidData 数据模块构建参数错误
var ErrInvalidData = errors.New("datamodule: invalid data")

// leastSquares 加权最小二乘公共部分
type leastSquares struct {
	data    *mat.VecDense
	weights *mat.VecDense // nil 表示单位权
}

func newLeastSquares(data, weights []float64) (leastSquares, error) {
	if len(data) == 0 {
		return leastSquares{}, fmt.Errorf("%w: empty data", ErrInvalidData)
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return leastSquares{}, fmt.Errorf("%w: data[%d] is %v", ErrInvalidData, i, v)
		}
	}
	ls := leastSquares{data: mat.NewVecDense(len(data), append([]float64(nil), data...))}
	if weights != nil {
		if len(weights) != len(data) {
			return leastSquares{}, fmt.Errorf("%w: %d weights for %d data", ErrInvalidData, len(weights), len(data))
		}
		for i, w := range weights {
			if !(w >= 0) || math.IsInf(w, 0) {
				return leastSquares{}, fmt.Errorf("%w: weight[%d] is %v", ErrInvalidData, i, w)
			}
		}
		ls.weights = mat.NewVecDense(len(weights), append([]float64(nil), weights...))
	}
	return ls, nil
}

// Data 观测数据
func (ls *leastSquares) Data() mat.Vector { return ls.data }

// Len 数据个数
func (ls *leastSquares) Len() int { return ls.data.Len() }

// Misfit 加权残差平方和
func (ls *leastSquares) Misfit(residual mat.Vector) float64 {
	if ls.weights == nil {
		return mat.Dot(residual, residual)
	}
	sum := 0.0
	for i := 0; i < residual.Len(); i++ {
		r := residual.AtVec(i)
		sum += ls.weights.AtVec(i) * r * r
	}
	return sum
}

// weighted W·r
func (ls *leastSquares) weighted(residual mat.Vector) mat.Vector {
	if ls.weights == nil {
		return residual
	}
	out := mat.NewVecDense(residual.Len(), nil)
	out.MulElemVec(ls.weights, residual)
	return out
}

// sumGradient gradient += -2·Jᵀ·W·r
func (ls *leastSquares) sumGradient(gradient *mat.VecDense, jac mat.Matrix, residual mat.Vector) {
	var tmp mat.VecDense
	tmp.MulVec(jac.T(), ls.weighted(residual))
	gradient.AddScaledVec(gradient, -2, &tmp)
}

// hessian 2·Jᵀ·W·J
func (ls *leastSquares) hessian(jac mat.Matrix) *mat.Dense {
	var wj mat.Dense
	if ls.weights == nil {
		wj.CloneFrom(jac)
	} else {
		m, n := jac.Dims()
		wj.ReuseAs(m, n)
		for i := 0; i < m; i++ {
			w := ls.weights.AtVec(i)
			for j := 0; j < n; j++ {
				wj.Set(i, j, w*jac.At(i, j))
			}
		}
	}
	var h mat.Dense
	h.Mul(jac.T(), &wj)
	h.Scale(2, &h)
	return &h
}
