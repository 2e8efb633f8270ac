// Package debug 记录与可视化迭代过程，所有类型都实现 types.Observer。
package debug

import (
	"encoding/json"
	"io"
	"slices"

	"inversion/types"
)

// Record 记录历史状态
type Record struct {
	Names      []string    `json:"names,omitempty"` // 参数名称，可为空
	Iterations []int       `json:"iterations"`      // 迭代序号，0 为初始状态
	Estimates  [][]float64 `json:"estimates"`       // 参数列，初始状态无参数记录时为空
	Misfits    []float64   `json:"misfits"`         // 数据拟合差列
	Goals      []float64   `json:"goals"`           // 目标函数列
	Damping    []float64   `json:"damping"`         // 阻尼因子列
	Err        string      `json:"error,omitempty"` // 结束错误
}

// Init 记录初始参数
func (list *Record) Init(initial []float64) {
	list.Estimates = [][]float64{slices.Clone(initial)}
}

// Update 记录数据
func (list *Record) Update(cs *types.Changeset) {
	if len(list.Iterations) == 0 {
		// 初始状态
		list.Iterations = append(list.Iterations, 0)
		if len(list.Estimates) == 0 {
			list.Estimates = append(list.Estimates, nil)
		}
		list.Misfits = append(list.Misfits, cs.Misfits[0])
		list.Goals = append(list.Goals, cs.Goals[0])
		list.Damping = append(list.Damping, 0)
	}
	list.Iterations = append(list.Iterations, cs.Iteration)
	list.Estimates = append(list.Estimates, slices.Clone(cs.Estimate))
	list.Misfits = append(list.Misfits, cs.Misfit())
	list.Goals = append(list.Goals, cs.Goal())
	list.Damping = append(list.Damping, cs.Damping)
}

// Len 记录条数（含初始状态）
func (list *Record) Len() int { return len(list.Iterations) }

// NumParams 参数个数
func (list *Record) NumParams() int {
	for _, e := range list.Estimates {
		if len(e) > 0 {
			return len(e)
		}
	}
	return 0
}

// Render 格式和输出内容
func (list *Record) Render(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

// Error 记录结束错误
func (list *Record) Error(err error) {
	list.Err = err.Error()
}
