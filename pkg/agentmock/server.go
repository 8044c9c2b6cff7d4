// Package agentmock provides a local scripted stand-in for the Studio AI
// coding agent. Tests intercept the app's agent endpoint and point it here;
// the server streams deterministic SSE replies from YAML scripts.
package agentmock

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tmaxmax/go-sse"
)

// event types streamed to the editor's agent panel.
const (
	eventChunk = "chunk"
	eventCode  = "code"
	eventError = "error"
	eventDone  = "done"
)

// Server streams scripted agent replies over SSE.
type Server struct {
	scripts []Script
	httpSrv *http.Server
	addr    atomic.Value // string, set once listening

	requests atomic.Int64
}

// NewServer creates a Server for the given scripts.
func NewServer(scripts []Script) *Server {
	return &Server{scripts: scripts}
}

// Start begins listening on an ephemeral localhost port.
// returns the base URL, e.g. http://127.0.0.1:54321.
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /agent/stream", s.handleStream)
	mux.HandleFunc("GET /agent/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.httpSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	baseURL := "http://" + ln.Addr().String()
	s.addr.Store(baseURL)

	go func() {
		// ErrServerClosed on shutdown is the normal path
		_ = s.httpSrv.Serve(ln)
	}()

	return baseURL, nil
}

// URL returns the base URL once started, empty otherwise.
func (s *Server) URL() string {
	if v := s.addr.Load(); v != nil {
		return v.(string)
	}
	return ""
}

// Requests returns how many stream requests were served. tests use this to
// assert the app actually hit the mock rather than a real agent.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Close shuts the server down, waiting for in-flight streams.
func (s *Server) Close() error {
	if s.httpSrv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown agent mock: %w", err)
	}
	return nil
}

// streamRequest is the editor's agent call payload.
type streamRequest struct {
	Prompt string `json:"prompt"`
	AppID  string `json:"app_id,omitempty"`
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)

	var req streamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
		return
	}

	script, ok := match(s.scripts, req.Prompt)
	if !ok {
		http.Error(w, `{"error":"no script matches prompt"}`, http.StatusNotFound)
		return
	}

	sess, err := sse.Upgrade(w, r)
	if err != nil {
		http.Error(w, `{"error":"sse upgrade failed"}`, http.StatusInternalServerError)
		return
	}

	delay := time.Duration(script.DelayMs) * time.Millisecond

	if script.Fail != "" {
		_ = send(sess, eventError, script.Fail)
		return
	}

	for _, chunk := range script.Chunks {
		if err := send(sess, eventChunk, chunk); err != nil {
			return // client gone
		}
		if delay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(delay):
			}
		}
	}

	if script.Code != nil {
		data, err := json.Marshal(script.Code)
		if err != nil {
			_ = send(sess, eventError, "marshal code edit: "+err.Error())
			return
		}
		if err := send(sess, eventCode, string(data)); err != nil {
			return
		}
	}

	_ = send(sess, eventDone, "")
}

// send writes one SSE message and flushes it so the browser sees it immediately.
func send(sess *sse.Session, eventType, data string) error {
	m := &sse.Message{Type: sse.Type(eventType)}
	m.AppendData(data)
	if err := sess.Send(m); err != nil {
		return fmt.Errorf("send %s: %w", eventType, err)
	}
	if err := sess.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", eventType, err)
	}
	return nil
}
