package maths

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// GonumLU 基于 gonum mat.LU 的求解器
// 分解后检查条件数估计，超过 MaxCondition 视为病态。
type GonumLU struct {
	n            int
	lu           mat.LU
	MaxCondition float64 // 最大条件数
}

// NewGonumLU 创建 gonum LU 求解器
func NewGonumLU(n int) (*GonumLU, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: lu dimension must be positive, got %d", ErrDimension, n)
	}
	return &GonumLU{n: n, MaxCondition: MaxCondition}, nil
}

// Dim 获取矩阵维度
func (g *GonumLU) Dim() int { return g.n }

// Cond 最近一次分解的条件数估计
func (g *GonumLU) Cond() float64 { return g.lu.Cond() }

// Solve 分解并求解 Ax = b
func (g *GonumLU) Solve(dst *mat.VecDense, a mat.Matrix, b mat.Vector) error {
	if err := checkDims(g.n, dst, a, b); err != nil {
		return err
	}
	g.lu.Factorize(a)
	if cond := g.lu.Cond(); math.IsNaN(cond) || cond > g.MaxCondition {
		return fmt.Errorf("%w: condition number %.3e", ErrSingular, cond)
	}
	if err := g.lu.SolveVecTo(dst, false, b); err != nil {
		return fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return nil
}

// Solver 求解器类型名称
type Solver string

// 可选求解器
const (
	SolverGonum Solver = "gonum" // gonum mat.LU
	SolverLU    Solver = "lu"    // 部分主元 LU
)

// NewSolver 按名称创建求解器，空名称使用 gonum
func NewSolver(name Solver, n int) (LinearSolver, error) {
	switch name {
	case SolverGonum, "":
		return NewGonumLU(n)
	case SolverLU:
		return NewLU(n)
	}
	return nil, fmt.Errorf("maths: unknown linear solver %q", name)
}
