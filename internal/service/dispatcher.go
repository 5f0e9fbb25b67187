package service

import (
	"sync"
)

// Dispatcher runs fire-and-forget jobs on a fixed worker pool. Notification
// fan-out goes through here so a slow client stream never runs on, or blocks,
// the request goroutine that raised the notification. Close drains the queue,
// which gives tests a deterministic "all dispatches finished" point.
type Dispatcher struct {
	jobs   chan func()
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func NewDispatcher(workers, queue int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{jobs: make(chan func(), queue)}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer d.wg.Done()
			for job := range d.jobs {
				job()
			}
		}()
	}
	return d
}

// Submit enqueues a job. It reports false when the queue is full or the
// dispatcher is closed; the caller decides whether that is worth logging.
func (d *Dispatcher) Submit(job func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.jobs <- job:
		return true
	default:
		return false
	}
}

// Close stops accepting jobs, then waits for queued work to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}
