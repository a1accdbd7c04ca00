// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package queue implements the bounded job and result queues (C3): a
// single-producer-many-consumers job queue with blocking pop, and a
// many-producers-single-consumer done queue with non-blocking pop.
//
// A fixed-capacity ring buffer per queue, each with its own mutex
// (jobs.m, done.m), the job queue additionally paired with a
// condition variable for its blocking pop.
package queue

import (
	"sync"

	"github.com/gogpu/assetcore/assettypes"
	"github.com/gogpu/assetcore/handle"
	"github.com/gogpu/assetcore/modreg"
)

// Job is one unit of work submitted to a worker.
type Job struct {
	Handle handle.Handle
	Type   assettypes.Type
	Input  modreg.LoadInput
}

// Result is what a worker produces after attempting to load a Job.
type Result struct {
	Handle      handle.Handle
	OK          bool
	ModuleIndex int
	Asset       assettypes.AssetAny
}

// JobQueue is a bounded ring buffer of Jobs with blocking pop, used by
// the asset manager to hand work to its worker pool.
type JobQueue struct {
	mu           sync.Mutex
	cond         *sync.Cond
	buf          []Job
	head, count  int
	capacity     int
	shuttingDown func() bool
}

// NewJobQueue creates a queue with the given capacity. shuttingDown is
// consulted by PopBlocking to decide when to give up waiting; it
// should report the manager's shutdown flag.
func NewJobQueue(capacity int, shuttingDown func() bool) *JobQueue {
	if capacity <= 0 {
		capacity = 1
	}
	q := &JobQueue{
		buf:          make([]Job, capacity),
		capacity:     capacity,
		shuttingDown: shuttingDown,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues a job. Returns false (without blocking) if the queue is full.
func (q *JobQueue) Push(j Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count >= q.capacity {
		return false
	}
	tail := (q.head + q.count) % q.capacity
	q.buf[tail] = j
	q.count++
	q.cond.Signal()
	return true
}

// PopBlocking waits until the queue is non-empty or shutdown is
// signaled. Returns false without popping whenever shutdown is
// observed, even if items are still queued.
func (q *JobQueue) PopBlocking() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.count == 0 {
		if q.shuttingDown != nil && q.shuttingDown() {
			return Job{}, false
		}
		q.cond.Wait()
	}
	if q.shuttingDown != nil && q.shuttingDown() {
		return Job{}, false
	}
	j := q.buf[q.head]
	q.buf[q.head] = Job{}
	q.head = (q.head + 1) % q.capacity
	q.count--
	return j, true
}

// Broadcast wakes every goroutine blocked in PopBlocking, used by
// shutdown to make workers observe the shutdown flag promptly.
func (q *JobQueue) Broadcast() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cond.Broadcast()
}

// Drain empties the queue. Pointer-style job descriptors (PathIsPtr)
// are deliberately left to their module to
// release and are not touched here; only path-owned jobs have their
// (already Go-GC-managed) string discarded by this call — Drain exists
// to make the "no owned jobs remain queued" invariant explicit and
// auditable rather than to free anything Go wouldn't already collect.
func (q *JobQueue) Drain() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	dropped := make([]Job, 0, q.count)
	for q.count > 0 {
		dropped = append(dropped, q.buf[q.head])
		q.buf[q.head] = Job{}
		q.head = (q.head + 1) % q.capacity
		q.count--
	}
	return dropped
}

// Len reports the current queue occupancy.
func (q *JobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// DoneQueue is a bounded ring buffer of Results with non-blocking push/pop.
type DoneQueue struct {
	mu          sync.Mutex
	buf         []Result
	head, count int
	capacity    int
}

// NewDoneQueue creates a done queue with the given capacity.
func NewDoneQueue(capacity int) *DoneQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &DoneQueue{buf: make([]Result, capacity), capacity: capacity}
}

// Push enqueues a result. Returns false if the queue is full.
func (q *DoneQueue) Push(r Result) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count >= q.capacity {
		return false
	}
	tail := (q.head + q.count) % q.capacity
	q.buf[tail] = r
	q.count++
	return true
}

// Pop dequeues a result if one is available, without blocking.
func (q *DoneQueue) Pop() (Result, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return Result{}, false
	}
	r := q.buf[q.head]
	q.buf[q.head] = Result{}
	q.head = (q.head + 1) % q.capacity
	q.count--
	return r, true
}

// Len reports the current queue occupancy.
func (q *DoneQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}
