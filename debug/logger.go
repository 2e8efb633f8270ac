package debug

import (
	"go.uber.org/zap"

	"inversion/types"
)

// Logger 以结构化日志输出每次迭代
type Logger struct {
	Log *zap.Logger
}

// NewLogger 创建日志观察者，log 为 nil 时使用全局 logger
func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.L()
	}
	return &Logger{Log: log.Named("inversion")}
}

// Update 输出迭代信息，参数向量仅在 debug 级别输出
func (l *Logger) Update(cs *types.Changeset) {
	l.Log.Info("iteration",
		zap.Int("iteration", cs.Iteration),
		zap.Float64("misfit", cs.Misfit()),
		zap.Float64("goal", cs.Goal()),
		zap.Float64("damping", cs.Damping),
	)
	if ce := l.Log.Check(zap.DebugLevel, "estimate"); ce != nil {
		ce.Write(zap.Int("iteration", cs.Iteration), zap.Float64s("estimate", cs.Estimate))
	}
}

// Error 输出错误
func (l *Logger) Error(err error) { l.Log.Error("inversion failed", zap.Error(err)) }

var _ types.Observer = (*Logger)(nil)
