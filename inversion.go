// Package inversion 基于梯度法求解非线性反演问题。
//
// 目标函数为所有数据模块的拟合差与正则化惩罚之和，
// 由 gradient 包的 Newton 或 Levenberg-Marquardt 迭代器最小化。
package inversion

import (
	"context"

	"inversion/gradient"
	"inversion/load"
	"inversion/types"

	_ "inversion/datamodule"
	_ "inversion/regularizer"
)

// Problem 反演问题
type Problem load.Problem

// Load 加载 YAML 问题文件
func Load(path string) (*Problem, error) {
	p, err := load.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return (*Problem)(p), nil
}

// LoadString 从字符串加载问题
func LoadString(s string) (*Problem, error) {
	p, err := load.LoadString(s)
	if err != nil {
		return nil, err
	}
	return (*Problem)(p), nil
}

// Iterator 创建迭代器，opts 在问题配置之后应用
func (p *Problem) Iterator(opts ...gradient.Option) (*gradient.Iterator, error) {
	all := make([]gradient.Option, 0, len(opts)+2)
	all = append(all, gradient.WithConfig(p.Config), gradient.WithRegularizers(p.Regularizers...))
	all = append(all, opts...)
	return gradient.New(p.Method, p.DataModules, p.Initial, all...)
}

// Solve 迭代到结束，observer 可为 nil
func (p *Problem) Solve(ctx context.Context, observer types.Observer) (*types.Changeset, error) {
	var opts []gradient.Option
	if observer != nil {
		opts = append(opts, gradient.WithObserver(observer))
	}
	it, err := p.Iterator(opts...)
	if err != nil {
		return nil, err
	}
	return it.Run(ctx)
}
