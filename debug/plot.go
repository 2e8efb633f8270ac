package debug

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Plot 收敛曲线静态图
type Plot struct {
	Record
	Width  vg.Length // 图片宽度，0 使用默认值
	Height vg.Length // 图片高度，0 使用默认值
}

// 默认图片尺寸
const (
	DefaultWidth  = 16 * vg.Centimeter
	DefaultHeight = 10 * vg.Centimeter
)

// series 迭代序号-数值序列
func (p *Plot) series(values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(values))
	for i, v := range values {
		xys[i].X = float64(p.Iterations[i])
		xys[i].Y = v
	}
	return xys
}

// positive 所有值均为正时使用对数坐标
func positive(values ...[]float64) bool {
	for _, vs := range values {
		for _, v := range vs {
			if !(v > 0) {
				return false
			}
		}
	}
	return true
}

// Build 构建收敛曲线
func (p *Plot) Build() (*plot.Plot, error) {
	if p.Len() == 0 {
		return nil, fmt.Errorf("debug: no iterations recorded")
	}
	pl := plot.New()
	pl.Title.Text = "Convergence"
	pl.X.Label.Text = "iteration"
	pl.Y.Label.Text = "value"
	if positive(p.Goals, p.Misfits) {
		pl.Y.Scale = plot.LogScale{}
		pl.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if err := plotutil.AddLinePoints(pl,
		"goal", p.series(p.Goals),
		"misfit", p.series(p.Misfits),
	); err != nil {
		return nil, err
	}
	pl.Legend.Top = true
	pl.Add(plotter.NewGrid())
	return pl, nil
}

func (p *Plot) size() (vg.Length, vg.Length) {
	w, h := p.Width, p.Height
	if w == 0 {
		w = DefaultWidth
	}
	if h == 0 {
		h = DefaultHeight
	}
	return w, h
}

// Render 按格式（png、svg、pdf 等）输出
func (p *Plot) Render(w io.Writer, format string) error {
	pl, err := p.Build()
	if err != nil {
		return err
	}
	width, height := p.size()
	wt, err := pl.WriterTo(width, height, strings.ToLower(format))
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save 保存到文件，格式由扩展名决定
func (p *Plot) Save(path string) error {
	if filepath.Ext(path) == "" {
		return fmt.Errorf("debug: missing image format in %q", path)
	}
	pl, err := p.Build()
	if err != nil {
		return err
	}
	width, height := p.size()
	return pl.Save(width, height, path)
}
