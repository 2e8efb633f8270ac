package gradient

import (
	"fmt"
	"math"

	"inversion/types"
)

// LevMarq 使用 Levenberg-Marquardt 法求解非线性反演问题
// 与 Newton 相同的迭代骨架，求解前对 Hessian 加入阻尼：
//
//	DampingMarquardt: (H + λ·diag(H))·Δp = -g
//	DampingLevenberg: (H + λ·I)·Δp = -g
//
// 步长使目标函数增大（或阻尼系统奇异）时拒绝该步，λ 乘以 DampingFactor 后重试；
// 接受时 λ 除以 DampingFactor（不低于 MinDamping）。
// 单次迭代重试 MaxDampingRetries 次仍无法接受时返回 ErrNoDescentDirection。
func LevMarq(dms []types.DataModule, initial []float64, opts ...Option) (*Iterator, error) {
	it, err := newIterator(dms, initial, opts)
	if err != nil {
		return nil, err
	}
	if err := it.config.validateDamping(); err != nil {
		return nil, err
	}
	it.damping = it.config.InitialDamping
	it.step = it.levMarqStep
	return it, nil
}

// Damping 当前阻尼因子
func (it *Iterator) Damping() float64 { return it.damping }

// levMarqStep 一次 Levenberg-Marquardt 迭代
func (it *Iterator) levMarqStep() error {
	e := it.eval
	if err := e.assemble(it.state); err != nil {
		return err
	}
	var lastErr error
	for retry := 0; retry < it.config.MaxDampingRetries; retry++ {
		lambda := it.damping
		e.damp(lambda, it.config.DampingMode)
		if err := e.solve(e.damped); err != nil {
			if !isSingular(err) {
				return err
			}
			// 阻尼不足，增大后重试
			lastErr = err
			it.damping *= it.config.DampingFactor
			continue
		}
		next, err := e.evaluate(e.trial(it.state.p, it.config.StepSize))
		if err != nil {
			return err
		}
		if math.IsNaN(next.goal) || next.goal > it.state.goal {
			it.damping *= it.config.DampingFactor
			continue
		}
		it.state = next
		it.accepted = lambda
		it.damping = math.Max(lambda/it.config.DampingFactor, it.config.MinDamping)
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("%w: %d damping retries exhausted (damping %.3e, last solve: %v)",
			ErrNoDescentDirection, it.config.MaxDampingRetries, it.damping, lastErr)
	}
	return fmt.Errorf("%w: %d damping retries exhausted (damping %.3e)",
		ErrNoDescentDirection, it.config.MaxDampingRetries, it.damping)
}
