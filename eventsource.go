// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

import "sync"

// EventSource is a minimal multi-subscriber event, standing in for a host
// "event" primitive without committing to any concrete UI or I/O event
// model.
type EventSource[T any] struct {
	mu       sync.Mutex
	handlers []func(T)
}

// Subscribe registers h and returns a function that removes it. Removal
// after the handler has already fired is a harmless no-op.
func (e *EventSource[T]) Subscribe(h func(T)) (unsubscribe func()) {
	e.mu.Lock()
	idx := len(e.handlers)
	e.handlers = append(e.handlers, h)
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		if idx < len(e.handlers) {
			e.handlers[idx] = nil
		}
		e.mu.Unlock()
	}
}

// Fire invokes every currently registered handler with v.
func (e *EventSource[T]) Fire(v T) {
	e.mu.Lock()
	hs := make([]func(T), len(e.handlers))
	copy(hs, e.handlers)
	e.mu.Unlock()
	for _, h := range hs {
		if h != nil {
			h(v)
		}
	}
}
