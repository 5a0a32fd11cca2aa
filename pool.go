// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

package viewfactor

import (
	"sync"
)

// pairTask is one ordered surface pair to compute.
type pairTask struct {
	// ID orders the results deterministically.
	ID       int
	Row, Col int
}

// pairResult is the outcome of a pairTask. The value itself is written to the
// arena cell of the task.
type pairResult struct {
	ID       int
	Stats    pairStats
	Warnings []Warning
	Error    error
}

// workerPool computes surface pairs in parallel.
type workerPool struct {
	taskQueue   chan pairTask
	resultQueue chan pairResult
	workers     []*worker
	wg          sync.WaitGroup
}

// worker runs pair tasks on the shared solver.
type worker struct {
	ID          int
	solver      *pairSolver
	taskQueue   chan pairTask
	resultQueue chan pairResult
}

// newWorkerPool creates a pool of numWorkers workers sized for numTasks
// tasks, so submitting never blocks.
func newWorkerPool(s *pairSolver, numTasks, numWorkers int) *workerPool {
	numWorkers = max(1, min(numWorkers, numTasks))
	wp := &workerPool{
		taskQueue:   make(chan pairTask, numTasks),
		resultQueue: make(chan pairResult, numTasks),
	}
	for i := range numWorkers {
		wp.workers = append(wp.workers, &worker{
			ID:          i,
			solver:      s,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}
	return wp
}

// Start begins all workers.
func (wp *workerPool) Start() {
	for _, w := range wp.workers {
		wp.wg.Add(1)
		go w.run(&wp.wg)
	}
}

// Stop waits for the submitted tasks to finish and shuts the workers down.
func (wp *workerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
}

// Submit queues a task.
func (wp *workerPool) Submit(t pairTask) {
	wp.taskQueue <- t
}

// Result retrieves a completed result; ok is false after Stop once all
// results were read.
func (wp *workerPool) Result() (pairResult, bool) {
	r, ok := <-wp.resultQueue
	return r, ok
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for t := range w.taskQueue {
		// Every task owns a distinct arena cell.
		st, warns, err := w.solver.solve(t.Row, t.Col)
		w.resultQueue <- pairResult{ID: t.ID, Stats: st, Warnings: warns, Error: err}
	}
}
