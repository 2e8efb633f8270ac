package gradient

import (
	"context"
	"fmt"
	"iter"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"inversion/types"
)

// Status 迭代器状态
type Status int

// 迭代器状态
const (
	Running   Status = iota // 可继续迭代
	Converged               // 目标函数变化满足收敛阈值
	Exhausted               // 达到最大迭代次数
	Failed                  // 迭代出错
)

// String 状态名称
func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Iterator 惰性的迭代序列
// 每次调用 Next 执行且仅执行一次迭代，并发出一个 Changeset。
// 序列有限且不可重启；调用方停止调用 Next 即可提前结束。
// 迭代器不是并发安全的，数据模块和正则化项可以在多个迭代器间只读共享。
type Iterator struct {
	config    Config
	dms       []types.DataModule
	eval      *evaluator
	state     state
	misfits   []float64
	goals     []float64
	iteration int
	damping   float64 // 当前阻尼因子
	accepted  float64 // 最近一次接受步长所用阻尼因子
	status    Status
	err       error
	current   *types.Changeset
	step      func() error
}

// newIterator 校验参数并计算初始状态
func newIterator(dms []types.DataModule, initial []float64, opts []Option) (*Iterator, error) {
	if len(dms) == 0 {
		return nil, fmt.Errorf("%w: at least one data module required", ErrInvalidArgument)
	}
	for i, dm := range dms {
		if dm == nil {
			return nil, fmt.Errorf("%w: data module %d is nil", ErrInvalidArgument, i)
		}
	}
	if len(initial) == 0 {
		return nil, fmt.Errorf("%w: initial parameter vector is empty", ErrInvalidArgument)
	}
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Observer == nil {
		cfg.Observer = types.NopObserver
	}
	it := &Iterator{
		config: cfg,
		dms:    slices.Clone(dms),
		status: Running,
	}
	it.config.Regularizers = slices.Clone(cfg.Regularizers)
	var err error
	it.eval, err = newEvaluator(it.dms, it.config.Regularizers, len(initial), cfg.LinearSolver)
	if err != nil {
		return nil, err
	}
	// 初始状态（第0次迭代）
	p := mat.NewVecDense(len(initial), slices.Clone(initial))
	if it.state, err = it.eval.evaluate(p); err != nil {
		return nil, err
	}
	it.misfits = []float64{it.state.misfit}
	it.goals = []float64{it.state.goal}
	return it, nil
}

// Next 执行一次迭代
// 成功发出新的 Changeset 时返回 true；序列结束或出错时返回 false，
// 之后通过 Status 和 Err 查看结束原因。
func (it *Iterator) Next() bool {
	if it.status != Running {
		return false
	}
	if err := it.step(); err != nil {
		it.status = Failed
		it.err = fmt.Errorf("iteration %d: %w", it.iteration+1, err)
		return false
	}
	it.iteration++
	it.misfits = append(it.misfits, it.state.misfit)
	it.goals = append(it.goals, it.state.goal)
	it.current = it.changeset()
	it.config.Observer.Update(it.current)

	switch {
	case it.converged():
		it.status = Converged
	case it.iteration >= it.config.MaxIterations:
		it.status = Exhausted
	}
	return true
}

// converged 停止准则
// 相对变化 |goal_i - goal_{i-1}| / |goal_{i-1}| <= tol，以乘法形式计算，
// 上一次目标函数为零时不会产生 NaN；目标函数不超过绝对阈值，
// 或降到初始目标函数的舍入下限 GoalFloor·goal_0 以下时也视为收敛。
func (it *Iterator) converged() bool {
	n := len(it.goals)
	goal, prev := it.goals[n-1], it.goals[n-2]
	if goal <= it.config.AbsoluteTolerance || goal <= GoalFloor*math.Abs(it.goals[0]) {
		return true
	}
	return math.Abs(goal-prev) <= it.config.RelativeTolerance*math.Abs(prev)
}

// changeset 复制当前状态，调用方独占返回值
func (it *Iterator) changeset() *types.Changeset {
	return &types.Changeset{
		Iteration:    it.iteration,
		Estimate:     slices.Clone(it.state.p.RawVector().Data),
		Misfits:      slices.Clone(it.misfits),
		Goals:        slices.Clone(it.goals),
		Damping:      it.accepted,
		DataModules:  slices.Clone(it.dms),
		Regularizers: slices.Clone(it.config.Regularizers),
	}
}

// Changeset 最近一次发出的 Changeset，尚未迭代时为 nil
func (it *Iterator) Changeset() *types.Changeset { return it.current }

// Err 导致序列结束的错误；收敛或达到最大迭代次数时为 nil
func (it *Iterator) Err() error { return it.err }

// Status 当前状态
func (it *Iterator) Status() Status { return it.status }

// Iteration 已完成迭代次数
func (it *Iterator) Iteration() int { return it.iteration }

// Config 求解器配置
func (it *Iterator) Config() Config { return it.config }

// Seed 初始状态的拟合差与目标函数
func (it *Iterator) Seed() (misfit, goal float64) { return it.misfits[0], it.goals[0] }

// All 以 range-over-func 形式遍历剩余的 Changeset
// 出错时最后产出 (nil, err)；提前 break 即放弃剩余迭代。
func (it *Iterator) All() iter.Seq2[*types.Changeset, error] {
	return func(yield func(*types.Changeset, error) bool) {
		for it.Next() {
			if !yield(it.current, nil) {
				return
			}
		}
		if it.err != nil {
			yield(nil, it.err)
		}
	}
}

// Run 迭代到结束并返回最后一个 Changeset
// ctx 仅在两次迭代之间检查，单次线性求解不可中断。
func (it *Iterator) Run(ctx context.Context) (*types.Changeset, error) {
	for {
		if it.status != Running {
			return it.current, it.err
		}
		if err := ctx.Err(); err != nil {
			return it.current, err
		}
		it.Next()
	}
}
