// Package viewer streams a live globe to rendering clients over WebSocket.
// Each connection gets its own globe driven by its own update loop; clients
// send camera moves and receive the visible patch set as add/remove diffs.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/genesisforge/internal/config"
	"github.com/Faultbox/genesisforge/internal/engine/quadtree"
	"github.com/Faultbox/genesisforge/internal/logger"
)

// Server accepts viewer sessions.
type Server struct {
	sched quadtree.Scheduler
	opts  quadtree.Options
	cfg   config.ServerConfig
	log   *zap.Logger

	upgrader websocket.Upgrader
	active   atomic.Int64
}

// NewServer creates a viewer server. Every session builds a globe from opts
// on the shared scheduler.
func NewServer(sched quadtree.Scheduler, opts quadtree.Options, cfg config.ServerConfig) *Server {
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = 50 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Server{
		sched: sched,
		opts:  opts,
		cfg:   cfg,
		log:   logger.Named("viewer"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// Handler returns the HTTP routes: /ws, /presets and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/presets", s.handlePresets)
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	return mux
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	return int(s.active.Load())
}

// ListenAndServe serves on cfg.Addr until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info("viewer listening", zap.String("addr", s.cfg.Addr))

	select {
	case err := <-errCh:
		return fmt.Errorf("viewer server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("viewer shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handlePresets(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(presetInfos())
}

func (s *Server) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	globe, err := quadtree.New(s.sched, s.opts)
	if err != nil {
		s.log.Error("create session globe", zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "globe unavailable"),
			time.Now().Add(time.Second))
		return
	}

	id := uuid.NewString()
	sess := newSession(id, globe, s.cfg, s.log.With(zap.String("session", id)))

	s.active.Add(1)
	defer s.active.Add(-1)
	sess.log.Info("session opened", zap.String("remote", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		sess.run(ctx)
	}()

	writeErr := make(chan error, 1)
	go func() {
		writeErr <- s.writeLoop(ctx, conn, sess.out)
	}()

	// Reader loop: decode client messages and hand them to the update loop.
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var cm ClientMessage
		if err := json.Unmarshal(msg, &cm); err != nil {
			sess.reject(ctx, fmt.Sprintf("bad message: %v", err))
			continue
		}
		select {
		case sess.in <- cm:
		case <-ctx.Done():
		}
	}

	cancel()
	<-loopDone
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))

	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
	sess.log.Info("session closed", zap.Uint64("frames", globe.Frames()))
}

func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b := <-out:
			_ = conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				// unblock the reader
				_ = conn.Close()
				return err
			}
		}
	}
}
