// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"errors"
	"runtime"
	"sync"
	"weak"
)

// ExceptionInfo is the capture-point information preserved across re-raise
// boundaries: the stack trace at the moment [CaptureExceptionInfo] first
// wrapped the error.
type ExceptionInfo struct {
	Stack []byte
}

// capturedError is the wrapper allocated by [CaptureExceptionInfo]. Its
// identity (not the wrapped error's) is what the weak association table is
// keyed on: we control its allocation, so we can attach a cleanup that
// removes its own table entry once nothing references it anymore, keeping
// the table from growing without bound.
type capturedError struct {
	err  error
	info *ExceptionInfo
}

func (c *capturedError) Error() string { return c.err.Error() }
func (c *capturedError) Unwrap() error { return c.err }

var (
	exceptionInfoMu    sync.Mutex
	exceptionInfoTable = map[weak.Pointer[capturedError]]*ExceptionInfo{}
)

// CaptureExceptionInfo records the current call stack as err's capture
// point and returns a wrapped error wrapper that carries it. Calling it
// again on an already-captured error is a no-op — it returns the same
// wrapper so the original capture point survives re-raise boundaries that
// call CaptureExceptionInfo defensively without knowing whether the error
// has already been captured.
func CaptureExceptionInfo(err error) error {
	if err == nil {
		return nil
	}
	var existing *capturedError
	if errors.As(err, &existing) {
		return existing
	}
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	info := &ExceptionInfo{Stack: buf[:n]}
	box := &capturedError{err: err, info: info}
	wp := weak.Make(box)

	exceptionInfoMu.Lock()
	exceptionInfoTable[wp] = info
	exceptionInfoMu.Unlock()

	runtime.AddCleanup(box, func(w weak.Pointer[capturedError]) {
		exceptionInfoMu.Lock()
		delete(exceptionInfoTable, w)
		exceptionInfoMu.Unlock()
	}, wp)

	return box
}

// GetExceptionInfo retrieves the capture point associated with err, if any
// ancestor in its unwrap chain was produced by [CaptureExceptionInfo].
func GetExceptionInfo(err error) (*ExceptionInfo, bool) {
	var box *capturedError
	if errors.As(err, &box) {
		return box.info, true
	}
	return nil, false
}
