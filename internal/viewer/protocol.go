package viewer

import (
	"fmt"

	"github.com/Faultbox/genesisforge/internal/engine/quadtree"
	"github.com/Faultbox/genesisforge/internal/engine/terrain"
)

// ProtocolVersion is sent in the hello message.
const ProtocolVersion = 1

// Message types.
const (
	TypeCamera  = "camera"
	TypeOrbit   = "orbit"
	TypeRebuild = "rebuild"
	TypePreset  = "preset"

	TypeHello  = "hello"
	TypeAdd    = "add"
	TypeRemove = "remove"
	TypeStats  = "stats"
	TypeError  = "error"
)

// ClientMessage is any message a client may send. Fields are used
// according to Type.
type ClientMessage struct {
	Type     string               `json:"type"`
	Position *[3]float64          `json:"position,omitempty"` // camera
	Distance float64              `json:"distance,omitempty"` // orbit
	Pitch    float64              `json:"pitch,omitempty"`    // orbit
	Yaw      float64              `json:"yaw,omitempty"`      // orbit
	Params   *terrain.NoiseParams `json:"params,omitempty"`   // rebuild
	Name     string               `json:"name,omitempty"`     // preset
}

// PresetInfo describes a built-in planet preset.
type PresetInfo struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Params      terrain.NoiseParams `json:"params"`
}

// BiomeInfo is one entry of the biome legend.
type BiomeInfo struct {
	Name  string `json:"name"`
	Color string `json:"color"` // #rrggbb
}

// HelloMessage is sent once when a session opens.
type HelloMessage struct {
	Type            string              `json:"type"`
	ProtocolVersion int                 `json:"protocolVersion"`
	Session         string              `json:"session"`
	Radius          float64             `json:"radius"`
	MaxLevel        int                 `json:"maxLevel"`
	Params          terrain.NoiseParams `json:"params"`
	Presets         []PresetInfo        `json:"presets"`
	Biomes          []BiomeInfo         `json:"biomes"`
}

// AddMessage carries a node payload that became visible. Positions and
// colors are flattened xyz/rgb triples.
type AddMessage struct {
	Type      string     `json:"type"`
	Key       string     `json:"key"`
	Face      string     `json:"face"`
	Level     int        `json:"level"`
	LevelTint [3]float32 `json:"levelTint"`
	Positions []float32  `json:"positions"`
	Colors    []float32  `json:"colors,omitempty"`
	Indices   []uint32   `json:"indices"`
}

// RemoveMessage lists node keys the client should drop.
type RemoveMessage struct {
	Type string   `json:"type"`
	Keys []string `json:"keys"`
}

// StatsMessage reports the session tree after a change.
type StatsMessage struct {
	Type   string         `json:"type"`
	Frame  uint64         `json:"frame"`
	Camera [3]float64     `json:"camera"`
	Tree   quadtree.Stats `json:"tree"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func presetInfos() []PresetInfo {
	presets := terrain.Presets()
	out := make([]PresetInfo, len(presets))
	for i, p := range presets {
		out[i] = PresetInfo{Name: p.Name, Description: p.Description, Params: p.Params}
	}
	return out
}

func biomeInfos() []BiomeInfo {
	biomes := terrain.Biomes()
	out := make([]BiomeInfo, len(biomes))
	for i, b := range biomes {
		out[i] = BiomeInfo{Name: b.String(), Color: hexColor(b.LegendColor())}
	}
	return out
}

func hexColor(c uint32) string {
	return fmt.Sprintf("#%06x", c)
}

func newAddMessage(r quadtree.Renderable) AddMessage {
	m := r.Mesh
	msg := AddMessage{
		Type:      TypeAdd,
		Key:       r.Key,
		Face:      r.Face.String(),
		Level:     r.Level,
		LevelTint: quadtree.LevelColor(r.Level),
		Positions: flatten(m.Positions),
		Indices:   m.Indices,
	}
	if len(m.Colors) > 0 {
		msg.Colors = flatten(m.Colors)
	}
	return msg
}

func flatten(v [][3]float32) []float32 {
	out := make([]float32, 0, len(v)*3)
	for _, p := range v {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}
