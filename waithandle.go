// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import (
	"sync"
	"time"
)

// WaitHandle is the minimal host wait-primitive contract that
// [AwaitWaitHandle] and [ResultCell.GetWaitHandle] operate against. A
// negative timeout waits indefinitely; a zero timeout polls without
// blocking; a positive timeout waits up to that long.
type WaitHandle interface {
	Wait(timeout time.Duration) bool
}

// ManualResetEvent is a signal that, once set, stays set until reset —
// standing in for a host "wait handle" primitive without committing to any
// particular I/O reactor or UI toolkit.
type ManualResetEvent struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewManualResetEvent creates an event, optionally already signalled.
func NewManualResetEvent(initiallySignalled bool) *ManualResetEvent {
	e := &ManualResetEvent{ch: make(chan struct{})}
	if initiallySignalled {
		close(e.ch)
	}
	return e
}

// Set signals the event. Idempotent.
func (e *ManualResetEvent) Set() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.ch:
	default:
		close(e.ch)
	}
}

// Reset clears the event back to the unsignalled state.
func (e *ManualResetEvent) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	select {
	case <-e.ch:
		e.ch = make(chan struct{})
	default:
	}
}

// Close signals the event, waking every current and future waiter. There
// is nothing further to release — the event holds no other resources — so
// Close is simply a terminal Set.
func (e *ManualResetEvent) Close() { e.Set() }

// Wait blocks until the event is signalled or timeout elapses, per the
// sign convention documented on [WaitHandle].
func (e *ManualResetEvent) Wait(timeout time.Duration) bool {
	e.mu.Lock()
	ch := e.ch
	e.mu.Unlock()

	if timeout == 0 {
		select {
		case <-ch:
			return true
		default:
			return false
		}
	}
	if timeout < 0 {
		<-ch
		return true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}
