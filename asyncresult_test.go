// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/async"
)

func TestOkResultVariant(t *testing.T) {
	r := async.OkResult(3)
	if !r.IsOk() || r.IsError() || r.IsCanceled() {
		t.Fatalf("expected only IsOk, got %+v", r)
	}
	v, ok := r.Get()
	if !ok || v != 3 {
		t.Fatalf("got (%d, %v), want (3, true)", v, ok)
	}
	if r.Err() != nil {
		t.Fatalf("expected nil Err, got %v", r.Err())
	}
}

func TestErrorResultVariant(t *testing.T) {
	boom := errors.New("boom")
	r := async.ErrorResult[int](boom)
	if !r.IsError() {
		t.Fatal("expected IsError")
	}
	if !errors.Is(r.Err(), boom) {
		t.Fatalf("expected boom, got %v", r.Err())
	}
	if _, ok := r.Get(); ok {
		t.Fatal("expected Get to fail for error variant")
	}
}

func TestCanceledResultVariant(t *testing.T) {
	src := async.NewCancellationTokenSource()
	ce := async.NewCanceledError(src.Token())
	r := async.CanceledResult[int](ce)
	if !r.IsCanceled() {
		t.Fatal("expected IsCanceled")
	}
	if r.Err() != error(ce) {
		t.Fatalf("expected Err to equal ce, got %v", r.Err())
	}
}

func TestMatchResultDispatchesToCorrectBranch(t *testing.T) {
	r := async.OkResult(5)
	out := async.MatchResult(r,
		func(v int) string { return "ok" },
		func(error) string { return "err" },
		func(*async.CanceledError) string { return "cancel" },
	)
	if out != "ok" {
		t.Fatalf("got %q, want ok", out)
	}
}

func TestMapResultTransformsSuccessOnly(t *testing.T) {
	r := async.MapResult(async.OkResult(4), func(v int) int { return v * 2 })
	v, ok := r.Get()
	if !ok || v != 8 {
		t.Fatalf("got (%d, %v), want (8, true)", v, ok)
	}

	boom := errors.New("boom")
	er := async.MapResult(async.ErrorResult[int](boom), func(v int) int { return v * 2 })
	if !er.IsError() || !errors.Is(er.Err(), boom) {
		t.Fatalf("expected error to pass through unchanged, got %+v", er)
	}
}
