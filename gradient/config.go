package gradient

import (
	"fmt"
	"math"

	"inversion/maths"
	"inversion/types"
)

// DampingMode 阻尼矩阵形式
type DampingMode string

// 阻尼形式
const (
	DampingMarquardt DampingMode = "marquardt" // H + λ·diag(H)
	DampingLevenberg DampingMode = "levenberg" // H + λ·I
)

// 默认参数
const (
	DefaultStepSize          = 1.0
	DefaultMaxIterations     = 100
	DefaultRelativeTolerance = 1e-5
	DefaultInitialDamping    = 1.0
	DefaultDampingFactor     = 10.0
	DefaultMinDamping        = 1e-12
	DefaultMaxDampingRetries = 20

	// GoalFloor 目标函数相对初始值的舍入下限，低于 GoalFloor·goal_0 视为收敛
	GoalFloor = 1e-24
)

// Config 求解器配置
type Config struct {
	StepSize          float64      `yaml:"step_size" json:"step_size"`                   // 步长
	MaxIterations     int          `yaml:"max_iterations" json:"max_iterations"`         // 最大迭代次数
	RelativeTolerance float64      `yaml:"relative_tolerance" json:"relative_tolerance"` // 目标函数相对变化收敛阈值
	AbsoluteTolerance float64      `yaml:"absolute_tolerance" json:"absolute_tolerance"` // 目标函数绝对收敛阈值
	LinearSolver      maths.Solver `yaml:"linear_solver" json:"linear_solver"`           // 线性求解器

	// Levenberg-Marquardt 阻尼参数
	InitialDamping    float64     `yaml:"initial_damping" json:"initial_damping"`         // 初始阻尼因子
	DampingFactor     float64     `yaml:"damping_factor" json:"damping_factor"`           // 阻尼调整倍数
	MinDamping        float64     `yaml:"min_damping" json:"min_damping"`                 // 最小阻尼因子
	MaxDampingRetries int         `yaml:"max_damping_retries" json:"max_damping_retries"` // 单次迭代最大重试次数
	DampingMode       DampingMode `yaml:"damping_mode" json:"damping_mode"`               // 阻尼形式

	Regularizers []types.Regularizer `yaml:"-" json:"-"` // 正则化项
	Observer     types.Observer      `yaml:"-" json:"-"` // 迭代观察者
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		StepSize:          DefaultStepSize,
		MaxIterations:     DefaultMaxIterations,
		RelativeTolerance: DefaultRelativeTolerance,
		LinearSolver:      maths.SolverGonum,
		InitialDamping:    DefaultInitialDamping,
		DampingFactor:     DefaultDampingFactor,
		MinDamping:        DefaultMinDamping,
		MaxDampingRetries: DefaultMaxDampingRetries,
		DampingMode:       DampingMarquardt,
	}
}

// Option 修改配置
type Option func(cfg *Config)

// WithConfig 整体替换配置（保留已设置的正则化与观察者为空时的值）
func WithConfig(c Config) Option {
	return func(cfg *Config) {
		regs, obs := cfg.Regularizers, cfg.Observer
		*cfg = c
		if cfg.Regularizers == nil {
			cfg.Regularizers = regs
		}
		if cfg.Observer == nil {
			cfg.Observer = obs
		}
	}
}

// WithRegularizers 追加正则化项
func WithRegularizers(regs ...types.Regularizer) Option {
	return func(cfg *Config) { cfg.Regularizers = append(cfg.Regularizers, regs...) }
}

// WithStepSize 设置步长
func WithStepSize(step float64) Option {
	return func(cfg *Config) { cfg.StepSize = step }
}

// WithMaxIterations 设置最大迭代次数
func WithMaxIterations(n int) Option {
	return func(cfg *Config) { cfg.MaxIterations = n }
}

// WithRelativeTolerance 设置相对收敛阈值
func WithRelativeTolerance(tol float64) Option {
	return func(cfg *Config) { cfg.RelativeTolerance = tol }
}

// WithAbsoluteTolerance 设置绝对收敛阈值
func WithAbsoluteTolerance(tol float64) Option {
	return func(cfg *Config) { cfg.AbsoluteTolerance = tol }
}

// WithLinearSolver 设置线性求解器
func WithLinearSolver(name maths.Solver) Option {
	return func(cfg *Config) { cfg.LinearSolver = name }
}

// WithDamping 设置 Levenberg-Marquardt 初始阻尼与调整倍数
func WithDamping(initial, factor float64) Option {
	return func(cfg *Config) {
		cfg.InitialDamping = initial
		cfg.DampingFactor = factor
	}
}

// WithDampingMode 设置阻尼形式
func WithDampingMode(mode DampingMode) Option {
	return func(cfg *Config) { cfg.DampingMode = mode }
}

// WithMaxDampingRetries 设置单次迭代最大阻尼重试次数
func WithMaxDampingRetries(n int) Option {
	return func(cfg *Config) { cfg.MaxDampingRetries = n }
}

// WithObserver 设置迭代观察者
func WithObserver(obs types.Observer) Option {
	return func(cfg *Config) { cfg.Observer = obs }
}

// Validate 校验公共配置
func (cfg *Config) Validate() error {
	switch {
	case !(cfg.StepSize > 0) || math.IsInf(cfg.StepSize, 0):
		return fmt.Errorf("%w: step size must be positive and finite, got %v", ErrInvalidArgument, cfg.StepSize)
	case cfg.MaxIterations < 1:
		return fmt.Errorf("%w: max iterations must be at least 1, got %d", ErrInvalidArgument, cfg.MaxIterations)
	case !(cfg.RelativeTolerance >= 0):
		return fmt.Errorf("%w: relative tolerance must be non-negative, got %v", ErrInvalidArgument, cfg.RelativeTolerance)
	case !(cfg.AbsoluteTolerance >= 0):
		return fmt.Errorf("%w: absolute tolerance must be non-negative, got %v", ErrInvalidArgument, cfg.AbsoluteTolerance)
	}
	for i, r := range cfg.Regularizers {
		if r == nil {
			return fmt.Errorf("%w: regularizer %d is nil", ErrInvalidArgument, i)
		}
	}
	return nil
}

// validateDamping 校验阻尼配置
func (cfg *Config) validateDamping() error {
	switch {
	case !(cfg.InitialDamping > 0) || math.IsInf(cfg.InitialDamping, 0):
		return fmt.Errorf("%w: initial damping must be positive and finite, got %v", ErrInvalidArgument, cfg.InitialDamping)
	case !(cfg.DampingFactor > 1) || math.IsInf(cfg.DampingFactor, 0):
		return fmt.Errorf("%w: damping factor must be greater than 1, got %v", ErrInvalidArgument, cfg.DampingFactor)
	case !(cfg.MinDamping >= 0):
		return fmt.Errorf("%w: min damping must be non-negative, got %v", ErrInvalidArgument, cfg.MinDamping)
	case cfg.MaxDampingRetries < 1:
		return fmt.Errorf("%w: max damping retries must be at least 1, got %d", ErrInvalidArgument, cfg.MaxDampingRetries)
	case cfg.DampingMode != DampingMarquardt && cfg.DampingMode != DampingLevenberg:
		return fmt.Errorf("%w: unknown damping mode %q", ErrInvalidArgument, cfg.DampingMode)
	}
	return nil
}
