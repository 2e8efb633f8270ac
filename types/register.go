package types

import (
	"fmt"
	"slices"
	"strings"
)

// ModelValue 数据模块构建参数
type ModelValue struct {
	X       []float64      // 观测位置
	Y       []float64      // 观测数据
	Weights []float64      // 数据权重，可为空
	Options map[string]any // 模型附加参数（如多项式阶数）
}

// RegularizerValue 正则化构建参数
type RegularizerValue struct {
	NumParams int            // 参数维度
	Weight    float64        // 正则化权重
	Reference []float64      // 参考模型，可为空
	Options   map[string]any // 附加参数
}

// ModelConfig 数据模块配置
type ModelConfig interface {
	NumParams(value ModelValue) (int, error)   // 参数数量
	Init(value ModelValue) (DataModule, error) // 创建数据模块
}

// RegularizerConfig 正则化配置
type RegularizerConfig interface {
	Init(value RegularizerValue) (Regularizer, error) // 创建正则化项
}

var (
	modelList       = map[string]ModelConfig{}
	regularizerList = map[string]RegularizerConfig{}
)

// ModelRegister 注册数据模块类型
func ModelRegister(name string, config ModelConfig) {
	name = strings.ToLower(name)
	if _, ok := modelList[name]; ok {
		panic(fmt.Errorf("指定数据模块已经注册: %s", name))
	}
	modelList[name] = config
}

// RegularizerRegister 注册正则化类型
func RegularizerRegister(name string, config RegularizerConfig) {
	name = strings.ToLower(name)
	if _, ok := regularizerList[name]; ok {
		panic(fmt.Errorf("指定正则化已经注册: %s", name))
	}
	regularizerList[name] = config
}

// GetModel 通过名称获取数据模块配置
func GetModel(name string) (ModelConfig, bool) {
	config, ok := modelList[strings.ToLower(name)]
	return config, ok
}

// GetRegularizer 通过名称获取正则化配置
func GetRegularizer(name string) (RegularizerConfig, bool) {
	config, ok := regularizerList[strings.ToLower(name)]
	return config, ok
}

// ModelNames 已注册的数据模块名称
func ModelNames() []string {
	names := make([]string, 0, len(modelList))
	for name := range modelList {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RegularizerNames 已注册的正则化名称
func RegularizerNames() []string {
	names := make([]string, 0, len(regularizerList))
	for name := range regularizerList {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// OptionInt 读取整数参数，缺省时返回 def
func OptionInt(options map[string]any, key string, def int) (int, error) {
	v, ok := options[key]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("参数 %s 不是整数: %v", key, v)
		}
		return int(n), nil
	}
	return 0, fmt.Errorf("参数 %s 类型错误: %T", key, v)
}
