package scheduler

import (
	"context"
	"sync"

	"github.com/Faultbox/genesisforge/internal/engine/terrain"
)

// Future is the single-fulfillment result of a generation request.
type Future struct {
	id   uint64
	done chan struct{}
	once sync.Once
	mesh *terrain.Mesh
	err  error
}

// NewFuture returns an unfulfilled future for a correlation id.
func NewFuture(id uint64) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

// ID returns the correlation id.
func (f *Future) ID() uint64 {
	return f.id
}

// Done is closed once the future is fulfilled.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Ready reports, without blocking, whether a result is available.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Result returns the mesh or generation error. Only valid once Ready.
func (f *Future) Result() (*terrain.Mesh, error) {
	if !f.Ready() {
		return nil, nil
	}
	return f.mesh, f.err
}

// Wait blocks until the future is fulfilled or ctx ends.
func (f *Future) Wait(ctx context.Context) (*terrain.Mesh, error) {
	select {
	case <-f.done:
		return f.mesh, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Fulfill stores the result. Only the first call wins; later calls return false.
func (f *Future) Fulfill(mesh *terrain.Mesh, err error) bool {
	won := false
	f.once.Do(func() {
		f.mesh = mesh
		f.err = err
		close(f.done)
		won = true
	})
	return won
}
