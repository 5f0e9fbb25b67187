package service

import (
	"sync/atomic"
	"testing"
)

func TestDispatcherRunsSubmittedJobs(t *testing.T) {
	d := NewDispatcher(2, 16)
	var ran int64
	for i := 0; i < 10; i++ {
		if ok := d.Submit(func() { atomic.AddInt64(&ran, 1) }); !ok {
			t.Fatal("Submit rejected a job with room in the queue")
		}
	}
	d.Close()
	if got := atomic.LoadInt64(&ran); got != 10 {
		t.Fatalf("ran %d jobs before Close returned, want 10", got)
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(1, 4)
	d.Close()
	if ok := d.Submit(func() {}); ok {
		t.Fatal("Submit accepted a job after Close")
	}
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(1, 4)
	d.Close()
	d.Close()
}
