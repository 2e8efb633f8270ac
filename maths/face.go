package maths

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// 求解器错误
var (
	ErrSingular  = errors.New("maths: matrix is singular or nearly singular")
	ErrDimension = errors.New("maths: dimension mismatch")
)

// 默认数值阈值
const (
	PivotTolerance = 1e-14 // 主元相对阈值（相对矩阵行和范数均值）
	MaxCondition   = 1e15  // 最大条件数
)

// LinearSolver 稠密线性方程组求解接口
type LinearSolver interface {
	// Solve 求解 Ax = b，结果写入 dst
	// 参数：
	//   dst - 解向量（预分配，长度等于 A 的阶数）
	//   a   - 系数方阵
	//   b   - 右侧向量
	// 返回：
	//   error - 维度不匹配返回 ErrDimension，奇异或病态返回 ErrSingular
	Solve(dst *mat.VecDense, a mat.Matrix, b mat.Vector) error
}

// checkDims 校验方阵与向量维度
func checkDims(n int, dst *mat.VecDense, a mat.Matrix, b mat.Vector) error {
	r, c := a.Dims()
	if r != c || r != n || b.Len() != n || dst.Len() != n {
		return fmt.Errorf("%w: matrix %dx%d, rhs %d, dst %d, expected %d", ErrDimension, r, c, b.Len(), dst.Len(), n)
	}
	return nil
}
