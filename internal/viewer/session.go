package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/genesisforge/internal/config"
	"github.com/Faultbox/genesisforge/internal/engine/camera"
	"github.com/Faultbox/genesisforge/internal/engine/quadtree"
	"github.com/Faultbox/genesisforge/internal/engine/terrain"
	"github.com/Faultbox/genesisforge/pkg/math"
)

// session owns one globe. Only run touches the globe and the sent set.
type session struct {
	id       string
	globe    *quadtree.Globe
	camera   *camera.OrbitCamera
	interval time.Duration
	log      *zap.Logger

	in  chan ClientMessage
	out chan []byte

	sent map[string]*terrain.Mesh
}

func newSession(id string, globe *quadtree.Globe, cfg config.ServerConfig, log *zap.Logger) *session {
	return &session{
		id:       id,
		globe:    globe,
		camera:   camera.NewOrbitCamera(),
		interval: cfg.UpdateInterval,
		log:      log,
		in:       make(chan ClientMessage, 16),
		out:      make(chan []byte, 256),
		sent:     make(map[string]*terrain.Mesh),
	}
}

// run drives the globe until ctx ends, then releases it.
func (s *session) run(ctx context.Context) {
	defer s.globe.Close()

	opts := s.globe.Options()
	s.send(ctx, HelloMessage{
		Type:            TypeHello,
		ProtocolVersion: ProtocolVersion,
		Session:         s.id,
		Radius:          opts.Radius,
		MaxLevel:        opts.MaxLevel,
		Params:          opts.Params,
		Presets:         presetInfos(),
		Biomes:          biomeInfos(),
	})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.in:
			if err := s.apply(msg); err != nil {
				s.reject(ctx, err.Error())
			}
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *session) apply(msg ClientMessage) error {
	switch msg.Type {
	case TypeCamera:
		if msg.Position == nil {
			return fmt.Errorf("camera: missing position")
		}
		p := msg.Position
		s.camera.LookFrom(math.Vec3{X: p[0], Y: p[1], Z: p[2]})
	case TypeOrbit:
		s.camera.SetOrbit(msg.Distance, msg.Pitch, msg.Yaw)
	case TypeRebuild:
		if msg.Params == nil {
			return fmt.Errorf("rebuild: missing params")
		}
		return s.rebuild(*msg.Params)
	case TypePreset:
		p, err := terrain.PresetByName(msg.Name)
		if err != nil {
			return err
		}
		return s.rebuild(p.Params)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (s *session) rebuild(params terrain.NoiseParams) error {
	if err := s.globe.Rebuild(params); err != nil {
		return err
	}
	s.log.Info("session rebuilt", zap.Int64("seed", params.Seed))
	return nil
}

// tick runs one LOD pass and sends what changed in the visible set.
func (s *session) tick(ctx context.Context) {
	pos := s.camera.Position()
	s.globe.Update(pos)

	visible := s.globe.Renderables()
	current := make(map[string]quadtree.Renderable, len(visible))
	for _, r := range visible {
		current[r.Key] = r
	}

	var removed []string
	for key, mesh := range s.sent {
		if r, ok := current[key]; !ok || r.Mesh != mesh {
			removed = append(removed, key)
			delete(s.sent, key)
		}
	}
	sort.Strings(removed)

	var added []quadtree.Renderable
	for _, r := range visible {
		if _, ok := s.sent[r.Key]; !ok {
			added = append(added, r)
			s.sent[r.Key] = r.Mesh
		}
	}

	if len(removed) == 0 && len(added) == 0 {
		return
	}
	if len(removed) > 0 {
		s.send(ctx, RemoveMessage{Type: TypeRemove, Keys: removed})
	}
	for _, r := range added {
		s.send(ctx, newAddMessage(r))
	}
	s.send(ctx, StatsMessage{
		Type:   TypeStats,
		Frame:  s.globe.Frames(),
		Camera: [3]float64{pos.X, pos.Y, pos.Z},
		Tree:   s.globe.Stats(),
	})
}

func (s *session) reject(ctx context.Context, reason string) {
	s.log.Debug("rejected client message", zap.String("reason", reason))
	s.send(ctx, ErrorMessage{Type: TypeError, Message: reason})
}

func (s *session) send(ctx context.Context, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encode message", zap.Error(err))
		return
	}
	select {
	case s.out <- b:
	case <-ctx.Done():
	}
}
