package viewer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Faultbox/genesisforge/internal/config"
	"github.com/Faultbox/genesisforge/internal/engine/quadtree"
	"github.com/Faultbox/genesisforge/internal/engine/scheduler"
	"github.com/Faultbox/genesisforge/internal/engine/terrain"
)

type envelope struct {
	Type string `json:"type"`
	raw  []byte
}

func startServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	sched := scheduler.New(scheduler.Config{Workers: 2})
	sched.Start(context.Background())
	t.Cleanup(func() { sched.Close() })

	opts := quadtree.DefaultOptions()
	opts.Resolution = 2
	opts.SplitDistance = 30 // reach max level from the minimum orbit distance
	srv := NewServer(sched, opts, config.ServerConfig{UpdateInterval: 5 * time.Millisecond})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	env.raw = b
	return env
}

// readUntil reads messages until done returns true. A non-nil visible map
// tracks the client-side visible set.
func readUntil(t *testing.T, conn *websocket.Conn, visible map[string]bool, done func(env envelope) bool) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		env := readMessage(t, conn)
		if visible == nil {
			if done(env) {
				return
			}
			continue
		}
		switch env.Type {
		case TypeAdd:
			var m AddMessage
			if err := json.Unmarshal(env.raw, &m); err != nil {
				t.Fatal(err)
			}
			if visible[m.Key] {
				t.Errorf("add for already visible key %s", m.Key)
			}
			visible[m.Key] = true
		case TypeRemove:
			var m RemoveMessage
			if err := json.Unmarshal(env.raw, &m); err != nil {
				t.Fatal(err)
			}
			for _, k := range m.Keys {
				if !visible[k] {
					t.Errorf("remove for unknown key %s", k)
				}
				delete(visible, k)
			}
		}
		if done(env) {
			return
		}
	}
	t.Fatal("condition never reached")
}

func send(t *testing.T, conn *websocket.Conn, msg ClientMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
}

func statsOf(t *testing.T, env envelope) quadtree.Stats {
	t.Helper()
	var m StatsMessage
	if err := json.Unmarshal(env.raw, &m); err != nil {
		t.Fatal(err)
	}
	return m.Tree
}

func TestSessionHello(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)

	env := readMessage(t, conn)
	if env.Type != TypeHello {
		t.Fatalf("first message type = %q, want hello", env.Type)
	}
	var hello HelloMessage
	if err := json.Unmarshal(env.raw, &hello); err != nil {
		t.Fatal(err)
	}
	if hello.ProtocolVersion != ProtocolVersion || hello.Radius != 10 || hello.MaxLevel != 5 {
		t.Errorf("hello = %+v", hello)
	}
	if len(hello.Presets) != 6 || len(hello.Biomes) != len(terrain.Biomes()) {
		t.Errorf("hello has %d presets and %d biomes", len(hello.Presets), len(hello.Biomes))
	}
	if !strings.HasPrefix(hello.Biomes[0].Color, "#") || len(hello.Biomes[0].Color) != 7 {
		t.Errorf("biome color = %q", hello.Biomes[0].Color)
	}
}

// settled reports a stats message with no generation in flight.
func settled(t *testing.T, env envelope) bool {
	return env.Type == TypeStats && statsOf(t, env).Requested == 0
}

func TestSessionStreamsVisibleSet(t *testing.T) {
	srv, ts := startServer(t)
	conn := dial(t, ts)
	readMessage(t, conn) // hello

	visible := map[string]bool{}
	var stats quadtree.Stats
	readUntil(t, conn, visible, func(env envelope) bool {
		if !settled(t, env) {
			return false
		}
		stats = statsOf(t, env)
		return true
	})
	if len(visible) != stats.Visible || len(visible) < 6 {
		t.Errorf("client sees %d patches, server reports %d", len(visible), stats.Visible)
	}
	if srv.Sessions() != 1 {
		t.Errorf("Sessions() = %d, want 1", srv.Sessions())
	}

	send(t, conn, ClientMessage{Type: TypeCamera, Position: &[3]float64{12, 0, 0}})
	readUntil(t, conn, visible, func(env envelope) bool {
		if !settled(t, env) {
			return false
		}
		stats = statsOf(t, env)
		return stats.MaxDepth == 5
	})
	if visible["+x/"] {
		t.Error("+x root still visible after refinement")
	}
	if len(visible) != stats.Visible {
		t.Errorf("client sees %d patches, server reports %d", len(visible), stats.Visible)
	}
}

func TestSessionRebuildReplacesEverything(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)

	visible := map[string]bool{}
	readUntil(t, conn, visible, func(env envelope) bool { return settled(t, env) })
	before := len(visible)

	send(t, conn, ClientMessage{Type: TypePreset, Name: "Water World"})
	removed := 0
	readUntil(t, conn, visible, func(env envelope) bool {
		if env.Type == TypeRemove {
			var m RemoveMessage
			_ = json.Unmarshal(env.raw, &m)
			removed += len(m.Keys)
		}
		return removed >= before && settled(t, env)
	})
	if len(visible) < 6 {
		t.Errorf("visible after rebuild = %d, want at least the six roots", len(visible))
	}
}

func TestSessionRejectsBadMessages(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)
	readMessage(t, conn)

	tests := []struct {
		name string
		msg  string
		want string
	}{
		{"malformed json", `{"type":`, "bad message"},
		{"unknown type", `{"type":"teleport"}`, "unknown message type"},
		{"unknown preset", `{"type":"preset","name":"Venus"}`, "unknown planet preset"},
		{"invalid params", `{"type":"rebuild","params":{"frequency":0}}`, "invalid globe parameters"},
		{"camera without position", `{"type":"camera"}`, "missing position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.msg)); err != nil {
				t.Fatal(err)
			}
			readUntil(t, conn, nil, func(env envelope) bool {
				if env.Type != TypeError {
					return false
				}
				var m ErrorMessage
				_ = json.Unmarshal(env.raw, &m)
				if !strings.Contains(m.Message, tt.want) {
					t.Errorf("error = %q, want it to contain %q", m.Message, tt.want)
				}
				return true
			})
		})
	}
}

func TestPresetsEndpoint(t *testing.T) {
	_, ts := startServer(t)

	resp, err := http.Get(ts.URL + "/presets")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var presets []PresetInfo
	if err := json.NewDecoder(resp.Body).Decode(&presets); err != nil {
		t.Fatal(err)
	}
	if len(presets) != 6 || presets[0].Name != "Earth-like" {
		t.Errorf("presets = %+v", presets)
	}

	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestHexColor(t *testing.T) {
	if got := hexColor(0x2d5016); got != "#2d5016" {
		t.Errorf("hexColor() = %q", got)
	}
	if got := hexColor(0xff); got != "#0000ff" {
		t.Errorf("hexColor() = %q", got)
	}
}
