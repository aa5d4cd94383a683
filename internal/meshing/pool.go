package meshing

import (
	"context"
	"fmt"
	"sync"
)

// BuildFunc produces one geometry.
type BuildFunc func() (*Geometry, error)

// GeometryJob represents a geometry build request
type GeometryJob struct {
	Name  string
	Build BuildFunc
	// Result channel - will be sent the result when done
	ResultChan chan GeometryResult
}

// GeometryResult contains the result of a build
type GeometryResult struct {
	Name     string
	Geometry *Geometry
	Error    error
}

// WorkerPool manages goroutines for geometry generation
type WorkerPool struct {
	jobQueue chan GeometryJob
	workers  int
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewWorkerPool creates a new geometry worker pool
func NewWorkerPool(workers int, queueSize int) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		jobQueue: make(chan GeometryJob, queueSize),
		workers:  max(workers, 1),
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < pool.workers; i++ {
		pool.wg.Add(1)
		go pool.worker(i)
	}
	return pool
}

// SubmitJob submits a job to the pool.
// Returns true if job was submitted successfully, false if queue is full
func (p *WorkerPool) SubmitJob(job GeometryJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// SubmitJobBlocking submits a job and blocks until it's queued or the
// pool shuts down.
func (p *WorkerPool) SubmitJobBlocking(job GeometryJob) bool {
	select {
	case p.jobQueue <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobQueue:
			result := GeometryResult{Name: job.Name}
			result.Geometry, result.Error = runBuild(job)

			select {
			case job.ResultChan <- result:
			case <-p.ctx.Done():
				return
			}

		case <-p.ctx.Done():
			return
		}
	}
}

func runBuild(job GeometryJob) (g *Geometry, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("meshing: build %q panicked: %v", job.Name, r)
		}
	}()
	return job.Build()
}

// Shutdown stops the workers and waits for them to exit. Queued jobs that
// have not started are dropped.
func (p *WorkerPool) Shutdown() {
	p.stopOnce.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}

// QueueLength returns the current number of jobs in the queue
func (p *WorkerPool) QueueLength() int {
	return len(p.jobQueue)
}

// BuildAll runs every build on the pool and collects the results by name.
// done, when set, is called once per finished job from the calling
// goroutine. It waits for every submitted job and returns the first error.
func (p *WorkerPool) BuildAll(builds map[string]BuildFunc, done func(name string)) (map[string]*Geometry, error) {
	results := make(chan GeometryResult, len(builds))
	submitted := 0
	for name, build := range builds {
		if !p.SubmitJobBlocking(GeometryJob{Name: name, Build: build, ResultChan: results}) {
			break
		}
		submitted++
	}

	out := make(map[string]*Geometry, len(builds))
	var firstErr error
	for i := 0; i < submitted; i++ {
		var r GeometryResult
		select {
		case r = <-results:
		case <-p.ctx.Done():
			return out, p.ctx.Err()
		}
		if r.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf("meshing: %s: %w", r.Name, r.Error)
		}
		if r.Geometry != nil {
			out[r.Name] = r.Geometry
		}
		if done != nil {
			done(r.Name)
		}
	}
	if submitted < len(builds) && firstErr == nil {
		firstErr = p.ctx.Err()
	}
	return out, firstErr
}
