package batch

import (
	"errors"
	"testing"
)

func TestNewOK(t *testing.T) {
	r := NewOK(2, 41)
	if r.Index() != 2 || r.ID() != 41 {
		t.Errorf("Index() = %d, ID() = %d", r.Index(), r.ID())
	}
	if r.Status() != StatusOK {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusOK)
	}
	if r.Err() != nil {
		t.Errorf("Err() = %v, want nil", r.Err())
	}
}

func TestNewError(t *testing.T) {
	err := errors.New("something failed")
	r := NewError(1, err)
	if r.Index() != 1 || r.ID() != 0 {
		t.Errorf("Index() = %d, ID() = %d", r.Index(), r.ID())
	}
	if r.Status() != StatusError {
		t.Errorf("Status() = %q, want %q", r.Status(), StatusError)
	}
	if !errors.Is(r.Err(), err) {
		t.Errorf("Err() = %v, want %v", r.Err(), err)
	}
}

func TestFailed(t *testing.T) {
	results := []Result{NewOK(0, 1), NewError(1, errors.New("x")), NewError(2, errors.New("y"))}
	if got := Failed(results); got != 2 {
		t.Errorf("Failed() = %d, want 2", got)
	}
	if got := Failed(nil); got != 0 {
		t.Errorf("Failed(nil) = %d, want 0", got)
	}
}
