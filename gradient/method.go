package gradient

import (
	"fmt"
	"strings"

	"inversion/types"
)

// Method 求解方法名称
type Method string

// 可选求解方法
const (
	MethodNewton  Method = "newton"
	MethodLevMarq Method = "levmarq"
)

// ParseMethod 解析方法名称，空字符串为 Newton
func ParseMethod(name string) (Method, error) {
	switch m := Method(strings.ToLower(name)); m {
	case "":
		return MethodNewton, nil
	case MethodNewton, MethodLevMarq:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown method %q", ErrInvalidArgument, name)
}

// New 按方法名称创建迭代器
func New(method Method, dms []types.DataModule, initial []float64, opts ...Option) (*Iterator, error) {
	switch method {
	case MethodNewton, "":
		return Newton(dms, initial, opts...)
	case MethodLevMarq:
		return LevMarq(dms, initial, opts...)
	}
	return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidArgument, method)
}
