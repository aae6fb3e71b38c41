// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// Option is a value that may or may not be present, used as the per-child
// result type of [Choice].
type Option[T any] struct {
	value T
	some  bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] { return Option[T]{value: v, some: true} }

// None is the absent value.
func None[T any]() Option[T] { return Option[T]{} }

// Get returns the wrapped value and true, or the zero value and false.
func (o Option[T]) Get() (T, bool) { return o.value, o.some }

// IsSome reports whether o wraps a value.
func (o Option[T]) IsSome() bool { return o.some }
