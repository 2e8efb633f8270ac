package maths

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// LU 稠密矩阵LU分解器（PA = LU，带部分主元）
// 分解结果原位存放在 U 中：严格下三角为 L 的消元因子（L 对角线为1），上三角为 U。
// 工作区按维度预分配，重复求解不再分配内存。
type LU struct {
	n         int           // 矩阵维度（方阵n×n）
	U         *mat.Dense    // 原位分解结果
	Y         *mat.VecDense // 中间变量：前向替换结果 Ly=Pb
	P         []int         // 置换向量：P[i] = 分解后第i行对应的原始矩阵行索引
	Tolerance float64       // 主元相对阈值
}

// NewLU 创建稠密矩阵LU分解器
// 参数:
//
//	n - 矩阵维度（必须为正整数）
//
// 返回:
//
//	LU实例，错误信息
func NewLU(n int) (*LU, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: lu dimension must be positive, got %d", ErrDimension, n)
	}
	return &LU{
		n:         n,
		U:         mat.NewDense(n, n, nil),
		Y:         mat.NewVecDense(n, nil),
		P:         make([]int, n),
		Tolerance: PivotTolerance,
	}, nil
}

// Dim 获取矩阵维度
func (lu *LU) Dim() int { return lu.n }

// Decompose 执行LU分解（高斯消元+部分主元）
// 算法步骤:
//  1. 拷贝A到U，初始化置换向量P
//  2. 对每一列k:
//     a. 部分主元选择：在U的当前列k中找[k, n-1]行的最大值
//     b. 行交换：交换U的整行（含已存放的消元因子），更新置换向量
//     c. 高斯消元：消元因子存入U的严格下三角，更新剩余子矩阵
//
// 主元绝对值不超过 Tolerance 乘以矩阵行和范数均值时视为奇异。
func (lu *LU) Decompose(a mat.Matrix) error {
	r, c := a.Dims()
	if r != c || r != lu.n {
		return fmt.Errorf("%w: lu decompose %dx%d, expected %d", ErrDimension, r, c, lu.n)
	}
	lu.U.Copy(a)
	for i := range lu.P {
		lu.P[i] = i
	}
	// 相对阈值的参照尺度
	scale := mat.Norm(lu.U, math.Inf(1)) / float64(lu.n)
	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("%w: lu decompose: matrix norm %v", ErrSingular, scale)
	}
	threshold := lu.Tolerance * scale
	n := lu.n
	for k := 0; k < n; k++ {
		// 部分主元选择
		maxRow := k
		maxAbsVal := math.Abs(lu.U.At(k, k))
		for i := k + 1; i < n; i++ {
			if v := math.Abs(lu.U.At(i, k)); v > maxAbsVal {
				maxAbsVal = v
				maxRow = i
			}
		}
		if maxAbsVal <= threshold {
			return fmt.Errorf("%w: lu decompose: pivot %d is %.3e", ErrSingular, k, maxAbsVal)
		}
		// 行交换（消元因子随行一起移动）
		if maxRow != k {
			lu.swapRows(k, maxRow)
			lu.P[k], lu.P[maxRow] = lu.P[maxRow], lu.P[k]
		}
		// 高斯消元
		pivotVal := lu.U.At(k, k)
		for i := k + 1; i < n; i++ {
			factor := lu.U.At(i, k) / pivotVal
			lu.U.Set(i, k, factor)
			if factor == 0 {
				continue
			}
			for j := k + 1; j < n; j++ {
				lu.U.Set(i, j, lu.U.At(i, j)-factor*lu.U.At(k, j))
			}
		}
	}
	return nil
}

// swapRows 交换U的两行
func (lu *LU) swapRows(r1, r2 int) {
	row1, row2 := lu.U.RawRowView(r1), lu.U.RawRowView(r2)
	for j := range row1 {
		row1[j], row2[j] = row2[j], row1[j]
	}
}

// SolveReuse 利用分解结果求解Ax=b（重用预分配向量）
// 数学步骤:
//  1. 前向替换：求解Ly = Pb
//  2. 后向替换：求解Ux = y
func (lu *LU) SolveReuse(b mat.Vector, x *mat.VecDense) error {
	if b.Len() != lu.n || x.Len() != lu.n {
		return fmt.Errorf("%w: lu solve rhs %d, dst %d, expected %d", ErrDimension, b.Len(), x.Len(), lu.n)
	}
	// 前向替换：Ly = Pb
	for i := 0; i < lu.n; i++ {
		sum := b.AtVec(lu.P[i])
		for j := 0; j < i; j++ {
			sum -= lu.U.At(i, j) * lu.Y.AtVec(j)
		}
		lu.Y.SetVec(i, sum)
	}
	// 后向替换：Ux = y
	for i := lu.n - 1; i >= 0; i-- {
		sum := lu.Y.AtVec(i)
		for j := i + 1; j < lu.n; j++ {
			sum -= lu.U.At(i, j) * x.AtVec(j)
		}
		x.SetVec(i, sum/lu.U.At(i, i))
	}
	return nil
}

// Solve 分解并求解 Ax = b
func (lu *LU) Solve(dst *mat.VecDense, a mat.Matrix, b mat.Vector) error {
	if err := checkDims(lu.n, dst, a, b); err != nil {
		return err
	}
	if err := lu.Decompose(a); err != nil {
		return err
	}
	return lu.SolveReuse(b, dst)
}
