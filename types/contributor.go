package types

import "gonum.org/v1/gonum/mat"

// DataModule 数据模块接口
// 绑定一组观测数据与其正演模型，向目标函数贡献数据拟合差。
// 实现必须是确定性的，且不能修改传入的参数向量（只读 mat.Vector 视图）。
type DataModule interface {
	Data() mat.Vector                                           // 观测数据
	Predicted(p mat.Vector) mat.Vector                          // 正演预测数据，长度与观测数据一致
	Misfit(residual mat.Vector) float64                         // 由残差计算拟合差，非负，完美拟合时为零
	SumGradient(gradient *mat.VecDense, p, residual mat.Vector) // 将梯度贡献累加到 gradient
	SumHessian(hessian *mat.Dense, p mat.Vector)                // 将 Hessian 贡献累加到 hessian
}

// Regularizer 正则化接口
// 仅依赖参数向量的惩罚项（平滑、阻尼等）。
type Regularizer interface {
	Value(p mat.Vector) float64                       // 惩罚值
	SumGradient(gradient *mat.VecDense, p mat.Vector) // 将梯度贡献累加到 gradient
	SumHessian(hessian *mat.Dense, p mat.Vector)      // 将 Hessian 贡献累加到 hessian
}

// Residual 计算数据模块在参数 p 处的残差（观测 - 预测）
func Residual(dm DataModule, p mat.Vector) *mat.VecDense {
	data, pred := dm.Data(), dm.Predicted(p)
	res := mat.NewVecDense(data.Len(), nil)
	res.SubVec(data, pred)
	return res
}
