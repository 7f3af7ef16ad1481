package transfer

import "testing"

func TestJobDoneInvokesCallback(t *testing.T) {
	var gotErr error
	called := false
	job := &Job{
		Callback: func(err error) {
			called = true
			gotErr = err
		},
	}

	job.done(ErrOverflow)

	if !called {
		t.Fatalf("callback was not invoked")
	}
	if gotErr != ErrOverflow {
		t.Errorf("callback error = %v, want %v", gotErr, ErrOverflow)
	}
}

func TestJobDoneNilCallbackIsSafe(t *testing.T) {
	job := &Job{}
	job.done(nil) // must not panic
}
