// Package parallel splits rasterization work into row bands executed on a
// fixed set of worker goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// minBandRows is the smallest band handed to a worker.
const minBandRows = 16

// Pool runs band jobs on worker goroutines. Each worker owns a queue and
// steals from the others when its own is empty.
//
// Bands may be called from several goroutines at once, but not
// concurrently with Close.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// New starts a pool of workers goroutines. If workers is 0 or negative,
// GOMAXPROCS is used.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range p.queues {
		p.queues[i] = make(chan func(), 4)
	}
	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case job := <-own:
			job()
			continue
		case <-p.done:
			return
		default:
		}
		if job := p.steal(id); job != nil {
			job()
			continue
		}
		select {
		case job := <-own:
			job()
		case <-p.done:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := 1; i < p.workers; i++ {
		select {
		case job := <-p.queues[(id+i)%p.workers]:
			return job
		default:
		}
	}
	return nil
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Bands splits rows [0, height) into at most one band per worker and calls
// fn for each band, returning when all have finished. Bands never overlap,
// so fn may write the rows it is given without locking. A closed pool
// runs fn for the whole range on the calling goroutine.
func (p *Pool) Bands(height int, fn func(band, y0, y1 int)) {
	if height <= 0 {
		return
	}
	n := min(p.workers, (height+minBandRows-1)/minBandRows)
	if n <= 1 || !p.running.Load() {
		fn(0, 0, height)
		return
	}

	rows := (height + n - 1) / n
	var wg sync.WaitGroup
	for band := range n {
		y0 := band * rows
		y1 := min(y0+rows, height)
		if y0 >= y1 {
			break
		}
		wg.Add(1)
		job := func() {
			defer wg.Done()
			fn(band, y0, y1)
		}
		select {
		case p.queues[band%p.workers] <- job:
		case <-p.done:
			job()
		}
	}
	wg.Wait()
}

// Close stops the workers after the queued jobs have run. It is safe to
// call more than once.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
	for _, q := range p.queues {
		for len(q) > 0 {
			(<-q)()
		}
	}
}
