package datamodule

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ForwardFunc 正演函数，将参数 p 的预测数据写入 dst
type ForwardFunc func(dst, p []float64)

// JacobianFunc Jacobian 函数，将 ∂predicted/∂p 写入 dst（m×n）
type JacobianFunc func(dst *mat.Dense, p []float64)

// Func 非线性正演模型数据模块
// Hessian 使用 Gauss-Newton 近似 2·Jᵀ·W·J。
type Func struct {
	leastSquares
	n        int
	forward  ForwardFunc
	jacobian JacobianFunc
}

// NewFunc 创建非线性数据模块
// 参数：
//
//	data     - 观测数据（长度 m）
//	weights  - 数据权重，nil 表示单位权
//	n        - 参数个数
//	forward  - 正演函数
//	jacobian - Jacobian 函数，nil 时使用中心差分
func NewFunc(data, weights []float64, n int, forward ForwardFunc, jacobian JacobianFunc) (*Func, error) {
	ls, err := newLeastSquares(data, weights)
	if err != nil {
		return nil, err
	}
	if n < 1 || forward == nil {
		return nil, fmt.Errorf("%w: need a forward function and at least one parameter", ErrInvalidData)
	}
	if jacobian == nil {
		jacobian = (&NumJac{Func: forward, M: len(data)}).Jac
	}
	return &Func{leastSquares: ls, n: n, forward: forward, jacobian: jacobian}, nil
}

// NumParams 参数个数
func (dm *Func) NumParams() int { return dm.n }

// Predicted 正演预测
func (dm *Func) Predicted(p mat.Vector) mat.Vector {
	if p.Len() != dm.n {
		panic(mat.ErrShape)
	}
	pred := make([]float64, dm.Len())
	dm.forward(pred, vecData(p))
	return mat.NewVecDense(len(pred), pred)
}

// Jacobian 在 p 处的 Jacobian
func (dm *Func) Jacobian(p mat.Vector) *mat.Dense {
	if p.Len() != dm.n {
		panic(mat.ErrShape)
	}
	jac := mat.NewDense(dm.Len(), dm.n, nil)
	dm.jacobian(jac, vecData(p))
	return jac
}

// SumGradient gradient += -2·Jᵀ·W·r
func (dm *Func) SumGradient(gradient *mat.VecDense, p, residual mat.Vector) {
	dm.sumGradient(gradient, dm.Jacobian(p), residual)
}

// SumHessian hessian += 2·Jᵀ·W·J
func (dm *Func) SumHessian(hessian *mat.Dense, p mat.Vector) {
	hessian.Add(hessian, dm.hessian(dm.Jacobian(p)))
}

// vecData 参数向量的独立副本，正演函数不会修改调用方的向量
func vecData(p mat.Vector) []float64 {
	return mat.Col(nil, 0, p)
}

// machEps 双精度机器精度
const machEps = 0x1p-52

// NumJac 中心差分数值 Jacobian
type NumJac struct {
	Func ForwardFunc // 正演函数
	M    int         // 数据个数
	Step float64     // 相对差分步长，0 使用默认值
}

// Jac 计算数值 Jacobian，写入 dst（M×len(p)）
func (nj *NumJac) Jac(dst *mat.Dense, p []float64) {
	step := nj.Step
	if step == 0 {
		step = math.Cbrt(machEps)
	}
	x := append([]float64(nil), p...)
	fwd, bwd := make([]float64, nj.M), make([]float64, nj.M)
	for j := range x {
		orig := x[j]
		h := step * math.Max(math.Abs(orig), 1)
		x[j] = orig + h
		nj.Func(fwd, x)
		x[j] = orig - h
		nj.Func(bwd, x)
		x[j] = orig
		for i := 0; i < nj.M; i++ {
			dst.Set(i, j, (fwd[i]-bwd[i])/(2*h))
		}
	}
}
