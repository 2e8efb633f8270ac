package gradient

import (
	"errors"
	"fmt"

	"inversion/maths"
)

// 求解器错误，使用 errors.Is 判断
var (
	ErrInvalidArgument    = errors.New("gradient: invalid argument")
	ErrSingularSystem     = errors.New("gradient: singular linear system")
	ErrNoDescentDirection = errors.New("gradient: no descent direction")
)

// solveError 将线性求解错误映射到求解器错误
func solveError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, maths.ErrSingular):
		return fmt.Errorf("%w: %v", ErrSingularSystem, err)
	case errors.Is(err, maths.ErrDimension):
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return err
}

func isSingular(err error) bool { return errors.Is(err, ErrSingularSystem) }
