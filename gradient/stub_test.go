package gradient

import (
	"gonum.org/v1/gonum/mat"

	"inversion/datamodule"
	"inversion/types"
)

// scalar 单参数单数据的测试数据模块，预测值为 p[0]
type scalar struct {
	data    float64
	misfit  func(r float64) float64
	grad    func(p float64) float64
	hessian func(p float64) float64
}

func (s *scalar) Data() mat.Vector { return mat.NewVecDense(1, []float64{s.data}) }

func (s *scalar) Predicted(p mat.Vector) mat.Vector {
	return mat.NewVecDense(1, []float64{p.AtVec(0)})
}

func (s *scalar) Misfit(residual mat.Vector) float64 {
	r := residual.AtVec(0)
	if s.misfit == nil {
		return r * r
	}
	return s.misfit(r)
}

func (s *scalar) SumGradient(gradient *mat.VecDense, p, residual mat.Vector) {
	g := -2 * residual.AtVec(0)
	if s.grad != nil {
		g = s.grad(p.AtVec(0))
	}
	gradient.SetVec(0, gradient.AtVec(0)+g)
}

func (s *scalar) SumHessian(hessian *mat.Dense, p mat.Vector) {
	h := 2.0
	if s.hessian != nil {
		h = s.hessian(p.AtVec(0))
	}
	hessian.Set(0, 0, hessian.At(0, 0)+h)
}

// proportional y = a·x 的无噪声数据
func proportional(a float64, x ...float64) (*datamodule.Linear, error) {
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = a * xi
	}
	return datamodule.NewLinear(mat.NewDense(len(x), 1, x), y, nil)
}

// exponentialData y = a·exp(b·x) 的无噪声数据模块
func exponentialData(a, b float64) (*datamodule.Func, error) {
	var x []float64
	for v := 0.0; v <= 2; v += 0.25 {
		x = append(x, v)
	}
	ref, err := datamodule.NewExponential(x, make([]float64, len(x)), nil)
	if err != nil {
		return nil, err
	}
	y := mat.Col(nil, 0, ref.Predicted(mat.NewVecDense(2, []float64{a, b})))
	return datamodule.NewExponential(x, y, nil)
}

func modules(dms ...types.DataModule) []types.DataModule { return dms }
