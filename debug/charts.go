package debug

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Charts 曲线绘制
type Charts struct {
	Record
}

// newLine 迭代曲线公共配置
func newLine(title, subtitle string, yAxis opts.YAxis) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "iteration",
		}),
		charts.WithYAxisOpts(yAxis),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithAnimation(true),
	)
	return line
}

// lineData 转换为折线数据
func lineData(values []float64) []opts.LineData {
	items := make([]opts.LineData, len(values))
	for i, v := range values {
		items[i] = opts.LineData{Value: v}
	}
	return items
}

// Render 格式化
func (c *Charts) Render(w io.Writer) error {
	if c.Len() == 0 {
		return fmt.Errorf("debug: no iterations recorded")
	}
	labels := make([]string, c.Len())
	for i, it := range c.Iterations {
		labels[i] = fmt.Sprint(it)
	}
	// 目标函数与拟合差，目标函数可能为零，使用线性坐标
	lineG := newLine("目标函数", "目标函数与数据拟合差随迭代变化曲线", opts.YAxis{Scale: opts.Bool(true)})
	lineG.SetXAxis(labels).
		AddSeries("goal", lineData(c.Goals)).
		AddSeries("misfit", lineData(c.Misfits))
	// 参数
	lineP := newLine("参数曲线", "参数随迭代变化曲线", opts.YAxis{Scale: opts.Bool(true)})
	lineP.SetXAxis(labels)
	for j := range c.NumParams() {
		values := make([]opts.LineData, c.Len())
		for i, e := range c.Estimates {
			if j < len(e) {
				values[i] = opts.LineData{Value: e[j]}
			} else {
				values[i] = opts.LineData{Value: "-"}
			}
		}
		lineP.AddSeries(c.paramName(j), values)
	}
	// 阻尼
	lineD := newLine("阻尼曲线", "Levenberg-Marquardt 阻尼因子", opts.YAxis{Type: "log"})
	lineD.SetXAxis(labels[1:]).AddSeries("damping", lineData(c.Damping[1:]))

	page := components.NewPage()
	page.AddCharts(lineG, lineP)
	if c.damped() {
		page.AddCharts(lineD)
	}
	return page.Render(w)
}

// paramName 参数名称
func (c *Charts) paramName(j int) string {
	if j < len(c.Names) {
		return c.Names[j]
	}
	return fmt.Sprintf("p[%d]", j)
}

// damped 是否记录了阻尼因子
func (c *Charts) damped() bool {
	for _, d := range c.Damping {
		if d > 0 {
			return true
		}
	}
	return false
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Render(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
