package gradient

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"inversion/maths"
	"inversion/types"
)

// evaluator 目标函数、梯度与 Hessian 的计算工作区
// 每个迭代器独占一份，贡献者之间不共享可变状态。
type evaluator struct {
	dms    []types.DataModule
	regs   []types.Regularizer
	n      int
	grad   *mat.VecDense      // 梯度累加缓冲
	hess   *mat.Dense         // Hessian 累加缓冲
	damped *mat.Dense         // 阻尼后的 Hessian
	rhs    *mat.VecDense      // -梯度
	delta  *mat.VecDense      // 参数增量
	solver maths.LinearSolver // 稠密线性求解器
}

// state 参数向量处的求值结果
type state struct {
	p         *mat.VecDense
	residuals []*mat.VecDense
	misfit    float64
	goal      float64
}

func newEvaluator(dms []types.DataModule, regs []types.Regularizer, n int, solver maths.Solver) (*evaluator, error) {
	ls, err := maths.NewSolver(solver, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return &evaluator{
		dms:    dms,
		regs:   regs,
		n:      n,
		grad:   mat.NewVecDense(n, nil),
		hess:   mat.NewDense(n, n, nil),
		damped: mat.NewDense(n, n, nil),
		rhs:    mat.NewVecDense(n, nil),
		delta:  mat.NewVecDense(n, nil),
		solver: ls,
	}, nil
}

// maybe 将 gonum 的维度 panic 转换为参数错误
func maybe(fn func()) error {
	if err := mat.Maybe(fn); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

// evaluate 计算残差、数据拟合差与目标函数
func (e *evaluator) evaluate(p *mat.VecDense) (st state, err error) {
	st.p = p
	err = maybe(func() {
		st.residuals = make([]*mat.VecDense, len(e.dms))
		for i, dm := range e.dms {
			st.residuals[i] = types.Residual(dm, p)
			st.misfit += dm.Misfit(st.residuals[i])
		}
		st.goal = st.misfit
		for _, r := range e.regs {
			st.goal += r.Value(p)
		}
	})
	return st, err
}

// assemble 清零并累加梯度与 Hessian
// 累加顺序固定：数据模块在前，正则化在后，各自按给定顺序。
func (e *evaluator) assemble(st state) error {
	return maybe(func() {
		e.grad.Zero()
		e.hess.Zero()
		for i, dm := range e.dms {
			dm.SumGradient(e.grad, st.p, st.residuals[i])
		}
		for _, r := range e.regs {
			r.SumGradient(e.grad, st.p)
		}
		for _, dm := range e.dms {
			dm.SumHessian(e.hess, st.p)
		}
		for _, r := range e.regs {
			r.SumHessian(e.hess, st.p)
		}
	})
}

// damp 构建阻尼 Hessian
func (e *evaluator) damp(lambda float64, mode DampingMode) {
	e.damped.Copy(e.hess)
	for i := 0; i < e.n; i++ {
		switch mode {
		case DampingLevenberg:
			e.damped.Set(i, i, e.damped.At(i, i)+lambda)
		default:
			e.damped.Set(i, i, e.damped.At(i, i)*(1+lambda))
		}
	}
}

// solve 求解 H·Δp = -g，结果写入 delta
func (e *evaluator) solve(h mat.Matrix) error {
	e.rhs.ScaleVec(-1, e.grad)
	return solveError(e.solver.Solve(e.delta, h, e.rhs))
}

// trial 候选参数 p + step·Δp
func (e *evaluator) trial(p *mat.VecDense, step float64) *mat.VecDense {
	next := mat.NewVecDense(e.n, nil)
	next.AddScaledVec(p, step, e.delta)
	return next
}
