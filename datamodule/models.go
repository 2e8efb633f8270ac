package datamodule

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"inversion/types"
)

func init() {
	types.ModelRegister("polynomial", polynomial{})
	types.ModelRegister("exponential", exponential{})
}

// Vandermonde 多项式正演算子，第 k 列为 x^k（k = 0..degree）
func Vandermonde(x []float64, degree int) *mat.Dense {
	g := mat.NewDense(len(x), degree+1, nil)
	for i, xi := range x {
		v := 1.0
		for k := 0; k <= degree; k++ {
			g.Set(i, k, v)
			v *= xi
		}
	}
	return g
}

// NewPolynomial 多项式拟合 y = Σ cₖ·x^k
func NewPolynomial(x, y, weights []float64, degree int) (*Linear, error) {
	if degree < 0 {
		return nil, fmt.Errorf("%w: negative polynomial degree %d", ErrInvalidData, degree)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d positions for %d data", ErrInvalidData, len(x), len(y))
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrInvalidData)
	}
	return NewLinear(Vandermonde(x, degree), y, weights)
}

// NewExponential 指数模型 y = a·exp(b·x)，参数为 [a, b]
func NewExponential(x, y, weights []float64) (*Func, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d positions for %d data", ErrInvalidData, len(x), len(y))
	}
	xs := append([]float64(nil), x...)
	forward := func(dst, p []float64) {
		for i, xi := range xs {
			dst[i] = p[0] * math.Exp(p[1]*xi)
		}
	}
	jacobian := func(dst *mat.Dense, p []float64) {
		for i, xi := range xs {
			e := math.Exp(p[1] * xi)
			dst.Set(i, 0, e)
			dst.Set(i, 1, p[0]*xi*e)
		}
	}
	return NewFunc(y, weights, 2, forward, jacobian)
}

// polynomial 注册配置，选项 degree（默认1）
type polynomial struct{}

func (polynomial) NumParams(value types.ModelValue) (int, error) {
	degree, err := types.OptionInt(value.Options, "degree", 1)
	if err != nil {
		return 0, err
	}
	return degree + 1, nil
}

func (polynomial) Init(value types.ModelValue) (types.DataModule, error) {
	degree, err := types.OptionInt(value.Options, "degree", 1)
	if err != nil {
		return nil, err
	}
	return NewPolynomial(value.X, value.Y, value.Weights, degree)
}

// exponential 注册配置
type exponential struct{}

func (exponential) NumParams(types.ModelValue) (int, error) { return 2, nil }

func (exponential) Init(value types.ModelValue) (types.DataModule, error) {
	return NewExponential(value.X, value.Y, value.Weights)
}
