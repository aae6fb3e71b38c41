// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"testing"
	"time"

	"code.hybscloud.com/async"
)

func TestCancellationTokenSourceCancel(t *testing.T) {
	src := async.NewCancellationTokenSource()
	tok := src.Token()
	if tok.IsCancellationRequested() {
		t.Fatal("expected fresh token to not be cancelled")
	}
	src.Cancel()
	if !tok.IsCancellationRequested() {
		t.Fatal("expected token to be cancelled")
	}
	select {
	case <-tok.Done():
	default:
		t.Fatal("expected Done channel to be closed")
	}
}

func TestLinkedSubSourceCancelledByParent(t *testing.T) {
	parent := async.NewCancellationTokenSource()
	child := async.Linked(parent.Token())
	defer child.Dispose()

	parent.Cancel()
	if !child.Token().IsCancellationRequested() {
		t.Fatal("expected child token to observe parent cancellation")
	}
}

func TestLinkedSubSourceOwnTrigger(t *testing.T) {
	parent := async.NewCancellationTokenSource()
	child := async.Linked(parent.Token())

	child.Cancel()
	if parent.Token().IsCancellationRequested() {
		t.Fatal("expected parent token to remain uncancelled")
	}
	if !child.Token().IsCancellationRequested() {
		t.Fatal("expected child token to be cancelled")
	}
}

func TestLinkedWithTimeout(t *testing.T) {
	parent := async.NewCancellationTokenSource()
	child := async.LinkedWithTimeout(parent.Token(), 20*time.Millisecond)
	defer child.Dispose()

	select {
	case <-child.Token().Done():
	case <-time.After(time.Second):
		t.Fatal("expected timeout to cancel the derived token")
	}
}

func TestRegisterFiresOnCancellation(t *testing.T) {
	src := async.NewCancellationTokenSource()
	fired := make(chan struct{})
	src.Token().Register(func() { close(fired) })

	src.Cancel()
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expected registered callback to fire")
	}
}

func TestRegisterFiresImmediatelyIfAlreadyCancelled(t *testing.T) {
	src := async.NewCancellationTokenSource()
	src.Cancel()

	fired := make(chan struct{})
	src.Token().Register(func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expected callback registered on an already-cancelled token to fire")
	}
}

func TestDefaultCancellationTokenSurvivesCancel(t *testing.T) {
	before := async.DefaultCancellationToken()
	async.CancelDefaultToken()
	if !before.IsCancellationRequested() {
		t.Fatal("expected the old default token to be cancelled")
	}
	after := async.DefaultCancellationToken()
	if after.IsCancellationRequested() {
		t.Fatal("expected the new default token to not be cancelled")
	}
}
