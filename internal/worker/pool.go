// Package worker runs render passes off the caller's goroutine.
package worker

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of goroutines that run submitted passes.
//
// Workers share one queue, so a long pass on one worker never holds up
// work that another idle worker could pick up. Work accepted by Submit
// always runs, even if Close is called right after.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	queue   chan func()
	done    chan struct{}
	wg      sync.WaitGroup

	// mu orders Submit against Close: sends happen under the read lock,
	// so every accepted item is queued before done is closed.
	mu      sync.RWMutex
	running atomic.Bool
}

// NewPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		queue:   make(chan func(), max(workers*4, 8)),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case fn := <-p.queue:
			fn()
		case <-p.done:
			p.drain()
			return
		}
	}
}

// drain runs everything left in the queue.
func (p *Pool) drain() {
	for {
		select {
		case fn := <-p.queue:
			fn()
		default:
			return
		}
	}
}

// Submit queues fn. It blocks while the queue is full and reports false,
// without running fn, if the pool is closed.
func (p *Pool) Submit(fn func()) bool {
	if fn == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running.Load() {
		return false
	}
	p.queue <- fn
	return true
}

// Close stops accepting work, runs what is queued and waits for the
// workers to exit. Close is safe to call multiple times.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}
