// Package load 从 YAML 文件加载反演问题。
//
//	method: levmarq
//	names: [a, b]
//	initial: [1, 0]
//	data:
//	  - model: exponential
//	    x: [0, 0.5, 1]
//	    y: [2.0, 2.8, 4.0]
//	  - model: polynomial
//	    file: profile.dat   # 列式数据，见 load/table
//	    options: {degree: 1}
//	regularizers:
//	  - type: damping
//	    weight: 0.01
//	solver:
//	  max_iterations: 50
//	  relative_tolerance: 1e-6
package load

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"inversion/gradient"
	"inversion/load/table"
	"inversion/types"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Data 数据模块定义
type Data struct {
	Model   string         `yaml:"model" validate:"required"` // 注册的模型名称
	Options map[string]any `yaml:"options"`                   // 模型参数
	File    string         `yaml:"file"`                      // 列式数据文件（相对于问题文件）
	X       []float64      `yaml:"x"`                         // 观测位置
	Y       []float64      `yaml:"y"`                         // 观测数据
	Weights []float64      `yaml:"weights"`                   // 数据权重
}

// Regularizer 正则化定义
type Regularizer struct {
	Type      string         `yaml:"type" validate:"required"` // 注册的正则化名称
	Weight    float64        `yaml:"weight" validate:"gte=0"`  // 权重
	Reference []float64      `yaml:"reference"`                // 参考模型
	Options   map[string]any `yaml:"options"`                  // 附加参数
}

// Document 问题文件结构
type Document struct {
	Method       string          `yaml:"method" validate:"omitempty,oneof=newton levmarq"` // 求解方法
	Names        []string        `yaml:"names"`                                            // 参数名称
	Initial      []float64       `yaml:"initial" validate:"required,min=1"`                // 初始参数
	Data         []Data          `yaml:"data" validate:"required,min=1,dive"`              // 数据模块
	Regularizers []Regularizer   `yaml:"regularizers" validate:"dive"`                     // 正则化项
	Solver       gradient.Config `yaml:"solver"`                                           // 求解器配置
}

// Problem 构建完成的反演问题
type Problem struct {
	Method       gradient.Method     // 求解方法
	Names        []string            // 参数名称
	Initial      []float64           // 初始参数
	DataModules  []types.DataModule  // 数据模块
	Regularizers []types.Regularizer // 正则化项
	Config       gradient.Config     // 求解器配置
}

// LoadFile 加载问题文件
func LoadFile(path string) (*Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p, err := doc.Build(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// LoadString 加载问题，数据文件相对于当前目录
func LoadString(s string) (*Problem, error) {
	doc, err := Decode(strings.NewReader(s))
	if err != nil {
		return nil, err
	}
	return doc.Build(".")
}

// Decode 解析并校验问题文件，未给出的求解器参数取默认值
func Decode(r io.Reader) (*Document, error) {
	doc := &Document{Solver: gradient.DefaultConfig()}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("解析问题文件: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("校验问题文件: %w", err)
	}
	return doc, nil
}

// Build 通过注册表创建数据模块与正则化项
// dir 为数据文件的相对路径基准。
func (doc *Document) Build(dir string) (*Problem, error) {
	method, err := gradient.ParseMethod(doc.Method)
	if err != nil {
		return nil, err
	}
	n := len(doc.Initial)
	if len(doc.Names) > 0 && len(doc.Names) != n {
		return nil, fmt.Errorf("%d 个参数名称，需要 %d 个", len(doc.Names), n)
	}
	p := &Problem{
		Method:  method,
		Names:   doc.Names,
		Initial: doc.Initial,
		Config:  doc.Solver,
	}
	for i, d := range doc.Data {
		dm, err := d.build(dir, n)
		if err != nil {
			return nil, fmt.Errorf("data[%d] (%s): %w", i, d.Model, err)
		}
		p.DataModules = append(p.DataModules, dm)
	}
	for i, r := range doc.Regularizers {
		config, ok := types.GetRegularizer(r.Type)
		if !ok {
			return nil, fmt.Errorf("regularizers[%d]: 未知的正则化类型 '%s'，可选 %v", i, r.Type, types.RegularizerNames())
		}
		reg, err := config.Init(types.RegularizerValue{
			NumParams: n,
			Weight:    r.Weight,
			Reference: r.Reference,
			Options:   r.Options,
		})
		if err != nil {
			return nil, fmt.Errorf("regularizers[%d] (%s): %w", i, r.Type, err)
		}
		p.Regularizers = append(p.Regularizers, reg)
	}
	return p, nil
}

// build 创建数据模块并检查参数个数
func (d *Data) build(dir string, n int) (types.DataModule, error) {
	if d.File == "" && len(d.Y) == 0 {
		return nil, fmt.Errorf("需要 y 或 file")
	}
	config, ok := types.GetModel(d.Model)
	if !ok {
		return nil, fmt.Errorf("未知的模型类型，可选 %v", types.ModelNames())
	}
	value := types.ModelValue{X: d.X, Y: d.Y, Weights: d.Weights, Options: d.Options}
	if d.File != "" {
		if err := d.readFile(dir, &value); err != nil {
			return nil, err
		}
	}
	want, err := config.NumParams(value)
	if err != nil {
		return nil, err
	}
	if want != n {
		return nil, fmt.Errorf("模型需要 %d 个参数，初始参数有 %d 个", want, n)
	}
	return config.Init(value)
}

// readFile 从列式数据文件读取 x、y 与权重
// 有列名时按名称 x、y、weights 取列，否则按位置取前两列（第三列为权重）。
func (d *Data) readFile(dir string, value *types.ModelValue) error {
	path := d.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	tb, err := table.Parse(f)
	if err != nil {
		return fmt.Errorf("%s: %w", d.File, err)
	}
	if len(tb.Columns) > 0 {
		var ok bool
		if value.X, ok = tb.Named("x"); !ok {
			return fmt.Errorf("%s: 缺少 x 列", d.File)
		}
		if value.Y, ok = tb.Named("y"); !ok {
			return fmt.Errorf("%s: 缺少 y 列", d.File)
		}
		value.Weights, _ = tb.Named("weights")
		return nil
	}
	if tb.Width() < 2 {
		return fmt.Errorf("%s: 至少需要 x、y 两列", d.File)
	}
	value.X, _ = tb.Column(0)
	value.Y, _ = tb.Column(1)
	if tb.Width() > 2 {
		value.Weights, _ = tb.Column(2)
	}
	return nil
}
