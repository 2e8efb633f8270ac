package gradient

import (
	"inversion/types"
)

// Newton 使用 Newton 法求解非线性反演问题
// 参数增量由 H·Δp = -g 求得，p 更新为 p + step·Δp，
// 其中 H 为所有数据模块与正则化项累加的 Hessian，g 为梯度。
//
// 返回的迭代器每次 Next 执行一次迭代：
//  1. 用当前残差累加梯度（数据模块在前，正则化在后），再累加 Hessian
//  2. 求解线性方程组，Hessian 奇异或病态时返回 ErrSingularSystem
//  3. 更新参数，重新计算残差、拟合差与目标函数
//  4. 发出 Changeset，检查相对收敛阈值与最大迭代次数
//
// 数据模块为空、初始参数为空或配置非法时立即返回 ErrInvalidArgument。
// 参数维度与数据模块、正则化项是否一致由调用方保证，
// 不一致时在首次求值或迭代时以 ErrInvalidArgument 报告。
func Newton(dms []types.DataModule, initial []float64, opts ...Option) (*Iterator, error) {
	it, err := newIterator(dms, initial, opts)
	if err != nil {
		return nil, err
	}
	it.step = it.newtonStep
	return it, nil
}

// newtonStep 一次 Newton 迭代
func (it *Iterator) newtonStep() error {
	e := it.eval
	if err := e.assemble(it.state); err != nil {
		return err
	}
	if err := e.solve(e.hess); err != nil {
		return err
	}
	next, err := e.evaluate(e.trial(it.state.p, it.config.StepSize))
	if err != nil {
		return err
	}
	it.state = next
	return nil
}
