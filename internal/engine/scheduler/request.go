// Package scheduler runs patch generation off the update path. Callers submit
// requests and receive one-shot futures keyed by a correlation id.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/Faultbox/genesisforge/internal/engine/terrain"
	"github.com/Faultbox/genesisforge/pkg/math"
)

var (
	// ErrInvalidRequest is returned by Submit for malformed requests.
	ErrInvalidRequest = errors.New("invalid generation request")
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("scheduler closed")
)

// Request is the message sent to a generation worker.
type Request struct {
	ID         uint64              `json:"id"`
	FaceNormal math.Vec3           `json:"faceNormal"`
	UV         terrain.UVRange     `json:"uv"`
	Resolution int                 `json:"resolution"`
	Radius     float64             `json:"radius"`
	Params     terrain.NoiseParams `json:"params"`
}

// Validate reports whether the request can be generated.
func (r Request) Validate() error {
	if err := terrain.ValidatePatch(r.FaceNormal, r.UV, r.Resolution, r.Radius, r.Params); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// Generator turns a request into a mesh. It runs on a worker goroutine.
type Generator func(ctx context.Context, req Request) (*terrain.Mesh, error)

// Synthesize is the default Generator backed by terrain.GeneratePatch.
func Synthesize(_ context.Context, req Request) (*terrain.Mesh, error) {
	return terrain.GeneratePatch(req.FaceNormal, req.UV, req.Resolution, req.Radius, req.Params)
}
