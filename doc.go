// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package async provides a compositional, continuation-passing model for
// describing non-blocking computations as first-class values, composing
// them with sequencing, parallelism, exception handling, and cancellation,
// and executing them against multiple scheduling strategies: the current
// goroutine, the default worker pool, a dedicated goroutine, or a
// host-provided synchronization context.
//
// # Design Philosophy
//
// async provides:
//   - A closed, fixed-arity continuation model (success, exception,
//     cancellation) rather than a user-extensible effect system — every
//     primitive knows exactly which of the three paths it may take.
//   - A per-goroutine trampoline that bounds synchronous recursion across
//     arbitrarily long bind chains without growing the call stack.
//   - A one-shot result cell that bridges arbitrary external completion
//     sources (timers, callbacks, wait handles, tasks, events) into the
//     continuation model without depending on any particular I/O reactor.
//
// # Core Type
//
// [Computation] represents a deferred, composable unit of work:
//
//	type Computation[T any] func(a *Activation[T]) Step
//
// Running a [Computation] invokes exactly one of the three continuations
// carried by its [Activation] — success, exception, or cancellation — and
// returns [Step], an opaque marker whose sole purpose is to keep every
// combinator boundary in tail position.
//
// # Constructors
//
//   - [Return]: lift a pure value
//   - [Delay]: defer construction of a computation until it runs
//   - [Bind]: sequence two computations, threading the first result
//   - [Sequential]: sequence, discarding the first result
//   - [Zero], [Combine]: builder-surface identities for empty/optional bodies
//   - [Using]: bind a disposable resource for the scope of a computation
//   - [While], [For]: looping combinators
//   - [TryFinally], [TryWith]: exception-safe composition
//   - [Catch]: convert exceptions into an [AsyncResult] value
//   - [Ignore]: discard a computation's result
//   - [Bracket]: exception-safe acquire/use/release with a computation release
//   - [OnError]: run cleanup only on the exception path, then re-raise
//   - [TryCancelled]: run a compensating action on cancellation without
//     consuming it
//
// # Cancellation
//
// [CancellationToken] and [CancellationTokenSource] wrap [context.Context]
// and its cancel function; a linked source is exactly [context.WithCancel]
// applied to a parent token, so a derived token is cancelled when either the
// parent or its own trigger fires.
//
// # Trampoline
//
//   - [Trampoline]: per-goroutine bind-counter and deferred-continuation slot
//   - [TrampolineHolder]: owns scheduling for one top-level execution step
//
// # Result Cells and Suspension
//
//   - [ResultCell]: one-shot rendezvous between producers and waiters
//   - [SuspendedContinuation]: a waiter snapshot used to resume a computation
//
// # Runners
//
//   - [RunSynchronously]: block the caller until the computation completes
//   - [Start]: fire-and-forget on the default worker pool
//   - [StartAsTask]: run and report completion through a [Task]
//   - [StartImmediate], [StartImmediateAsTask]: like the above, inline on the caller
//   - [StartChild]: structured child computation with linked cancellation
//   - [StartWithContinuations]: run inline, routing outcomes to user callbacks
//
// # Structured Concurrency
//
//   - [Parallel]: fan out N computations, cancelling the rest on first failure
//   - [Choice]: race N option-producing computations for the first success
//
// # Bridges
//
//   - [FromContinuations]: adapt an arbitrary three-continuation callback
//   - [Sleep]: suspend for a duration, cancellable
//   - [AwaitWaitHandle], [AwaitTask], [AwaitEvent]: await external completions
//   - [AwaitIOResult]: await an [IOResult] obtained independently of
//     [FromBeginEnd]
//   - [FromBeginEnd], [FromBeginEnd1], [FromBeginEnd2], [FromBeginEnd3],
//     [AsBeginEnd]: interop with begin/end async patterns of varying arity
//   - [SwitchToContext], [SwitchToThreadPool], [SwitchToNewThread]: migrate
//     the remainder of a computation onto a different scheduler
//   - [OnCancel]: register a callback that fires exactly once on cancellation
//   - [Task], [EventSource], [ManualResetEvent]/[WaitHandle]: minimal,
//     host-agnostic external completion sources that the bridges above
//     adapt into computations
//
// # Exception Identity
//
// [ExceptionInfo] preserves the original capture point (stack trace) of an
// error value across re-raise boundaries that would otherwise discard it,
// using a process-wide weak association so captured errors do not leak.
package async
