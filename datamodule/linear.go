package datamodule

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Linear 线性正演模型数据模块，预测数据为 G·p
// Hessian 与参数无关，构建时计算一次。
type Linear struct {
	leastSquares
	g       mat.Matrix
	hessian *mat.Dense
}

// NewLinear 创建线性数据模块
// 参数：
//
//	g       - 正演算子（m×n），m 为数据个数，n 为参数个数
//	data    - 观测数据（长度 m）
//	weights - 数据权重（长度 m），nil 表示单位权
func NewLinear(g mat.Matrix, data, weights []float64) (*Linear, error) {
	ls, err := newLeastSquares(data, weights)
	if err != nil {
		return nil, err
	}
	m, n := g.Dims()
	if m != len(data) || n == 0 {
		return nil, fmt.Errorf("%w: operator %dx%d for %d data", ErrInvalidData, m, n, len(data))
	}
	dm := &Linear{leastSquares: ls, g: mat.DenseCopyOf(g)}
	dm.hessian = dm.leastSquares.hessian(dm.g)
	return dm, nil
}

// NumParams 参数个数
func (dm *Linear) NumParams() int {
	_, n := dm.g.Dims()
	return n
}

// Operator 正演算子
func (dm *Linear) Operator() mat.Matrix { return dm.g }

// Predicted G·p
func (dm *Linear) Predicted(p mat.Vector) mat.Vector {
	m, _ := dm.g.Dims()
	pred := mat.NewVecDense(m, nil)
	pred.MulVec(dm.g, p)
	return pred
}

// SumGradient gradient += -2·Gᵀ·W·r
func (dm *Linear) SumGradient(gradient *mat.VecDense, _, residual mat.Vector) {
	dm.sumGradient(gradient, dm.g, residual)
}

// SumHessian hessian += 2·Gᵀ·W·G
func (dm *Linear) SumHessian(hessian *mat.Dense, _ mat.Vector) {
	hessian.Add(hessian, dm.hessian)
}
