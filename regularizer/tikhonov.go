// Package regularizer 提供 Tikhonov 形式的正则化项。
package regularizer

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"inversion/types"
)

// ErrInvalidRegularizer 正则化构建参数错误
var ErrInvalidRegularizer = errors.New("regularizer: invalid argument")

func init() {
	types.RegularizerRegister("damping", damping{})
	types.RegularizerRegister("smoothness", smoothness{})
}

// Tikhonov 惩罚项 w·‖R·(p - ref)‖²
// 梯度贡献 2w·RᵀR·(p - ref)，Hessian 贡献 2w·RᵀR（构建时计算一次）。
type Tikhonov struct {
	weight  float64
	r       *mat.Dense
	ref     *mat.VecDense // nil 表示参考模型为零
	hessian *mat.Dense    // 2w·RᵀR
}

// NewTikhonov 创建 Tikhonov 正则化
// 参数：
//
//	weight - 正则化权重（非负）
//	r      - 正则化算子（k×n）
//	ref    - 参考模型（长度 n），nil 表示零
func NewTikhonov(weight float64, r mat.Matrix, ref []float64) (*Tikhonov, error) {
	if !(weight >= 0) || math.IsInf(weight, 0) {
		return nil, fmt.Errorf("%w: weight must be non-negative, got %v", ErrInvalidRegularizer, weight)
	}
	_, n := r.Dims()
	if n == 0 {
		return nil, fmt.Errorf("%w: empty operator", ErrInvalidRegularizer)
	}
	t := &Tikhonov{weight: weight, r: mat.DenseCopyOf(r)}
	if ref != nil {
		if len(ref) != n {
			return nil, fmt.Errorf("%w: reference of length %d for %d parameters", ErrInvalidRegularizer, len(ref), n)
		}
		t.ref = mat.NewVecDense(n, append([]float64(nil), ref...))
	}
	t.hessian = mat.NewDense(n, n, nil)
	t.hessian.Mul(t.r.T(), t.r)
	t.hessian.Scale(2*weight, t.hessian)
	return t, nil
}

// Weight 正则化权重
func (t *Tikhonov) Weight() float64 { return t.weight }

// NumParams 参数个数
func (t *Tikhonov) NumParams() int {
	_, n := t.r.Dims()
	return n
}

// diff p - ref
func (t *Tikhonov) diff(p mat.Vector) mat.Vector {
	if t.ref == nil {
		return p
	}
	d := mat.NewVecDense(p.Len(), nil)
	d.SubVec(p, t.ref)
	return d
}

// Value w·‖R·(p - ref)‖²
func (t *Tikhonov) Value(p mat.Vector) float64 {
	k, _ := t.r.Dims()
	rp := mat.NewVecDense(k, nil)
	rp.MulVec(t.r, t.diff(p))
	return t.weight * mat.Dot(rp, rp)
}

// SumGradient gradient += 2w·RᵀR·(p - ref)
func (t *Tikhonov) SumGradient(gradient *mat.VecDense, p mat.Vector) {
	var tmp mat.VecDense
	tmp.MulVec(t.hessian, t.diff(p))
	gradient.AddVec(gradient, &tmp)
}

// SumHessian hessian += 2w·RᵀR
func (t *Tikhonov) SumHessian(hessian *mat.Dense, _ mat.Vector) {
	hessian.Add(hessian, t.hessian)
}

// NewDamping 阻尼正则化 w·‖p - ref‖²
func NewDamping(n int, weight float64, ref []float64) (*Tikhonov, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least one parameter", ErrInvalidRegularizer)
	}
	id := mat.NewDiagDense(n, nil)
	for i := 0; i < n; i++ {
		id.SetDiag(i, 1)
	}
	return NewTikhonov(weight, id, ref)
}

// FirstDifference 一阶差分算子（(n-1)×n），第 i 行为 p[i+1] - p[i]
// n 至少为 2。
func FirstDifference(n int) (*mat.Dense, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: first difference needs at least two parameters, got %d", ErrInvalidRegularizer, n)
	}
	d := mat.NewDense(n-1, n, nil)
	for i := 0; i < n-1; i++ {
		d.Set(i, i, -1)
		d.Set(i, i+1, 1)
	}
	return d, nil
}

// NewSmoothness 一阶平滑正则化 w·‖D₁·(p - ref)‖²
func NewSmoothness(n int, weight float64, ref []float64) (*Tikhonov, error) {
	d, err := FirstDifference(n)
	if err != nil {
		return nil, err
	}
	return NewTikhonov(weight, d, ref)
}

// damping 注册配置
type damping struct{}

func (damping) Init(value types.RegularizerValue) (types.Regularizer, error) {
	return NewDamping(value.NumParams, value.Weight, value.Reference)
}

// smoothness 注册配置
type smoothness struct{}

func (smoothness) Init(value types.RegularizerValue) (types.Regularizer, error) {
	return NewSmoothness(value.NumParams, value.Weight, value.Reference)
}
