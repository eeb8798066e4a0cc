package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/fetchkit/fetch"
	"github.com/kbukum/fetchkit/logger"
)

// PanicError is returned by Recover when an inner layer panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("fetch: panic: %v", e.Value)
}

// Recover converts a panic in any inner layer into a *PanicError and logs
// the stack on the global logger.
func Recover() fetch.Middleware {
	return func(next fetch.Doer) fetch.Doer {
		return func(req *http.Request) (resp *http.Response, err error) {
			defer func() {
				if v := recover(); v != nil {
					pe := &PanicError{Value: v, Stack: debug.Stack()}
					logger.Error("Panic recovered", map[string]interface{}{
						"error":            fmt.Sprintf("%v", v),
						"stack":            string(pe.Stack),
						logger.FieldMethod: req.Method,
						logger.FieldURL:    redactURL(req),
					})
					resp, err = nil, pe
				}
			}()
			return next(req)
		}
	}
}
