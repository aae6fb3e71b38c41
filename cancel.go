// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"context"
	"sync"
	"time"
)

// CancellationToken is a cooperative cancellation signal. It is a thin
// wrapper over [context.Context]: a token's Done channel closes exactly
// when the context is cancelled, and IsCancellationRequested is a
// non-blocking check of the same condition.
//
// Wrapping context.Context instead of inventing a bespoke token type makes
// linking a derived source ([Linked]) exactly
// [context.WithCancel] — a derived token is cancelled when either its
// parent or its own trigger fires, which is precisely the "linked
// sub-source" described by the design.
type CancellationToken struct {
	ctx context.Context
}

// IsCancellationRequested reports whether cancellation has been signalled.
func (t CancellationToken) IsCancellationRequested() bool {
	if t.ctx == nil {
		return false
	}
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}

// Done returns the channel that closes when cancellation is requested.
// A nil underlying context returns a nil channel, which blocks forever —
// consistent with "never cancelled".
func (t CancellationToken) Done() <-chan struct{} {
	if t.ctx == nil {
		return nil
	}
	return t.ctx.Done()
}

// Register calls f exactly once when cancellation is requested, always on
// a goroutine of its own; if the token is already cancelled at registration
// time, f is started immediately and may run concurrently with the code
// that registered it. The returned function unregisters the callback; calling it
// after f has already fired is a harmless no-op. Built directly on
// [context.AfterFunc], which provides exactly this one-shot
// registration/unregistration contract for a context's Done channel.
func (t CancellationToken) Register(f func()) (unregister func()) {
	if t.ctx == nil {
		return func() {}
	}
	stop := context.AfterFunc(t.ctx, f)
	return func() { stop() }
}

// Context exposes the underlying context.Context for interop with
// context-aware APIs.
func (t CancellationToken) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

// CancellationTokenSource owns a [CancellationToken] and can trigger it.
type CancellationTokenSource struct {
	token  CancellationToken
	cancel context.CancelFunc
}

// NewCancellationTokenSource creates a source with a fresh, independent
// token.
func NewCancellationTokenSource() *CancellationTokenSource {
	ctx, cancel := context.WithCancel(context.Background())
	return &CancellationTokenSource{token: CancellationToken{ctx: ctx}, cancel: cancel}
}

// Linked creates a source whose token is cancelled when either parent is
// cancelled or this source's Cancel is called — a linked sub-source in the
// vocabulary of the design.
func Linked(parent CancellationToken) *CancellationTokenSource {
	base := parent.ctx
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithCancel(base)
	return &CancellationTokenSource{token: CancellationToken{ctx: ctx}, cancel: cancel}
}

// LinkedWithTimeout creates a linked source that also cancels itself after
// d elapses.
func LinkedWithTimeout(parent CancellationToken, d time.Duration) *CancellationTokenSource {
	base := parent.ctx
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithTimeout(base, d)
	return &CancellationTokenSource{token: CancellationToken{ctx: ctx}, cancel: cancel}
}

// Token returns the source's token.
func (s *CancellationTokenSource) Token() CancellationToken { return s.token }

// Cancel signals cancellation. Idempotent.
func (s *CancellationTokenSource) Cancel() { s.cancel() }

// Dispose releases resources associated with the source. In this
// implementation Dispose and Cancel are the same operation, so disposing a
// source also cancels its token and every token derived from it;
// context.CancelFunc is idempotent and safe to call from any completion
// path.
func (s *CancellationTokenSource) Dispose() { s.cancel() }

var (
	defaultTokenMu sync.Mutex
	defaultSource  = NewCancellationTokenSource()
)

// DefaultCancellationToken returns the process-wide default token.
func DefaultCancellationToken() CancellationToken {
	defaultTokenMu.Lock()
	defer defaultTokenMu.Unlock()
	return defaultSource.Token()
}

// CancelDefaultToken cancels the process-wide default source and
// immediately publishes a fresh replacement. The replacement is published
// before the old source is cancelled so that a racing reader of
// [DefaultCancellationToken] never observes a steady-state where the
// "current" default token is permanently cancelled.
func CancelDefaultToken() {
	defaultTokenMu.Lock()
	old := defaultSource
	defaultSource = NewCancellationTokenSource()
	defaultTokenMu.Unlock()
	old.Cancel()
}

// CanceledError signals that a computation was cancelled. It carries the
// token that was observed cancelled.
type CanceledError struct {
	Token CancellationToken
}

// NewCanceledError constructs a CanceledError for the given token.
func NewCanceledError(token CancellationToken) *CanceledError {
	return &CanceledError{Token: token}
}

func (e *CanceledError) Error() string { return "async: computation was canceled" }

// TimeoutError signals that a synchronous boundary (RunSynchronously,
// StartChild) exceeded its deadline.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string { return "async: operation timed out" }
