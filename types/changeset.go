package types

import "slices"

// Changeset 一次迭代完成后的快照
// Misfits 与 Goals 为累计序列，下标 0 为初始估计，
// 满足 len(Misfits) == len(Goals) == Iteration+1。
type Changeset struct {
	Iteration    int           `json:"iteration"` // 已完成迭代次数
	Estimate     []float64     `json:"estimate"`  // 当前参数向量
	Misfits      []float64     `json:"misfits"`   // 每次迭代的数据拟合差
	Goals        []float64     `json:"goals"`     // 每次迭代的目标函数值
	Damping      float64       `json:"damping"`   // 阻尼因子（仅 Levenberg-Marquardt）
	DataModules  []DataModule  `json:"-"`         // 当前配置的数据模块
	Regularizers []Regularizer `json:"-"`         // 当前配置的正则化项
}

// Misfit 最后一次拟合差
func (cs *Changeset) Misfit() float64 { return cs.Misfits[len(cs.Misfits)-1] }

// Goal 最后一次目标函数值
func (cs *Changeset) Goal() float64 { return cs.Goals[len(cs.Goals)-1] }

// Clone 深拷贝（数据模块列表按引用共享，模块本身只读）
func (cs *Changeset) Clone() *Changeset {
	c := *cs
	c.Estimate = slices.Clone(cs.Estimate)
	c.Misfits = slices.Clone(cs.Misfits)
	c.Goals = slices.Clone(cs.Goals)
	c.DataModules = slices.Clone(cs.DataModules)
	c.Regularizers = slices.Clone(cs.Regularizers)
	return &c
}
