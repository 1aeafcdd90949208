// Package invariant reports broken engine invariants.
//
// A broken invariant is a programming error: the violation is logged at
// error level and the calling goroutine panics with a *Violation. Failures
// of external resources are returned as errors instead and never go through
// this package.
package invariant

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/warg/internal/logger"
)

// Violation describes a broken invariant.
type Violation struct {
	Op  string // operation that detected it, e.g. "scene.AddMesh"
	Msg string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: invariant violated: %s", v.Op, v.Msg)
}

// Fail logs and panics with a Violation.
func Fail(op, format string, args ...any) {
	v := &Violation{Op: op, Msg: fmt.Sprintf(format, args...)}
	logger.Log.Error("invariant violated", zap.String("op", op), zap.String("detail", v.Msg))
	panic(v)
}

// Check calls Fail when cond is false.
func Check(cond bool, op, format string, args ...any) {
	if !cond {
		Fail(op, format, args...)
	}
}

// Recover converts a recovered Violation into *err. Any other panic value
// is re-raised. Use it as a deferred call: defer invariant.Recover(&err).
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if v, ok := r.(*Violation); ok {
		*err = v
		return
	}
	panic(r)
}
