package factor

import (
	"errors"
	"fmt"
)

// ErrInvalidK is returned when k is not in 1..ncols.
var ErrInvalidK = errors.New("k must be positive and at most the number of columns")

// ErrConvergence indicates the iterative factorization exhausted its
// iteration budget without reaching the requested tolerance.
type ErrConvergence struct {
	Iters int
	Tol   float64
	Last  float64 // relative change at the final iteration
}

func (e *ErrConvergence) Error() string {
	return fmt.Sprintf("factorization did not converge after %d iterations (tolerance %g, last change %g)",
		e.Iters, e.Tol, e.Last)
}
