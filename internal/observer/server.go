// Package observer streams saved scene states to websocket clients. It is read-only: clients
// receive the latest scene on connect and every scene saved afterwards.
package observer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"hinge-builder/internal/scenestate"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
	queueSize  = 16
)

// Message is one frame sent to clients.
type Message struct {
	Type  string                 `json:"type"`
	Seq   uint64                 `json:"seq"`
	Scene *scenestate.SceneState `json:"scene"`
}

type client struct {
	id   uint64
	conn *websocket.Conn
	out  chan []byte
}

// Server fans saved scenes out to connected clients. Slow clients drop frames instead of
// stalling the publisher.
type Server struct {
	log      *log.Logger
	upgrader websocket.Upgrader

	mu       sync.Mutex
	clients  map[uint64]*client
	latest   []byte
	closing  bool
	handlers sync.WaitGroup
	nextID  atomic.Uint64
	seq     atomic.Uint64

	httpSrv *http.Server
}

// NewServer returns a server with no clients. A nil logger discards diagnostics.
func NewServer(logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]*client),
	}
}

// Publish sends s to every client and keeps it for clients that connect later.
func (s *Server) Publish(st *scenestate.SceneState) {
	b, err := json.Marshal(Message{Type: "SCENE", Seq: s.seq.Add(1), Scene: st})
	if err != nil {
		s.log.Printf("encode scene: %v", err)
		return
	}
	s.mu.Lock()
	s.latest = b
	for _, c := range s.clients {
		select {
		case c.out <- b:
		default:
			s.log.Printf("client %d is behind, dropping frame", c.id)
		}
	}
	s.mu.Unlock()
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Handler serves the websocket endpoint.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := &client{id: s.nextID.Add(1), conn: conn, out: make(chan []byte, queueSize)}
		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			return
		}
		if s.latest != nil {
			c.out <- s.latest
		}
		s.clients[c.id] = c
		s.handlers.Add(1)
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			delete(s.clients, c.id)
			s.mu.Unlock()
			s.handlers.Done()
		}()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// reader: only drains control frames and notices the close
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case b := <-c.out:
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}
}

// ListenAndServe serves /ws on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.Handler())
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("observer listen %s: %w", addr, err)
	}
	s.mu.Lock()
	s.httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	srv := s.httpSrv
	s.mu.Unlock()
	s.log.Printf("listening on %s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener started by ListenAndServe, closes every client connection and
// waits for their handlers to return. New connections are refused from then on.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	s.closing = true
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for _, c := range s.clients {
		conns = append(conns, c.conn)
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	// hijacked connections are not closed by http.Server.Shutdown
	bye := websocket.FormatCloseMessage(websocket.CloseGoingAway, "observer shutting down")
	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage, bye, time.Now().Add(writeWait))
		_ = conn.Close()
	}

	done := make(chan struct{})
	go func() {
		s.handlers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return err
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
}
