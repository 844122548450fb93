// Package server exposes the generator over a websocket.
//
// Every connection owns one Scheduler. A client sends requests and receives
// batch, complete, warning and error messages; sending a new request
// supersedes the job that is still running on that connection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/marcusdavidalo/anychargen"
	"github.com/marcusdavidalo/anychargen/generator"
)

const shutdownTimeout = 5 * time.Second

// Message types sent to clients.
const (
	TypeBatch    = "batch"
	TypeComplete = "complete"
	TypeWarning  = "warning"
	TypeError    = "error"
)

// Request asks for every combination of Length characters over Alphabet.
// Length stays raw so non-numeric values can be reported instead of failing the decode.
type Request struct {
	Alphabet string          `json:"alphabet"`
	Length   json.RawMessage `json:"length"`
}

// Message is a server-to-client frame.
type Message struct {
	Type         string   `json:"type"`
	Job          uint64   `json:"job,omitempty"`
	Combinations []string `json:"combinations,omitempty"`
	Emitted      uint64   `json:"emitted,omitempty"`
	Error        string   `json:"error,omitempty"`
	Warning      string   `json:"warning,omitempty"`
}

// Server routes /ws and /healthz.
type Server struct {
	router         *mux.Router
	upgrader       websocket.Upgrader
	logger         *slog.Logger
	allowedOrigins []string
	opts           []anychargen.Option
}

// New builds a Server. Browsers may open /ws from the server's own host and from
// allowedOrigins ("*" admits any origin). opts configure the Scheduler created
// for every connection.
func New(logger *slog.Logger, allowedOrigins []string, opts ...anychargen.Option) *Server {
	s := &Server{
		router:         mux.NewRouter(),
		logger:         logger,
		allowedOrigins: allowedOrigins,
		opts:           append([]anychargen.Option{anychargen.WithLogger(logger)}, opts...),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 64 * 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.router.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// checkOrigin admits requests without an Origin header (non-browser clients),
// same-host origins and the configured allowed origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	s.logger.Warn("websocket origin rejected", slog.String("origin", origin))
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sched, err := anychargen.New(ctx, s.opts...)
	if err != nil {
		s.logger.Error("scheduler setup failed", slog.Any("error", err))
		_ = conn.WriteJSON(Message{Type: TypeError, Error: err.Error()})
		return
	}

	sess := &session{
		conn:   conn,
		sched:  sched,
		logger: s.logger.With(slog.String("remote", r.RemoteAddr)),
	}
	sess.logger.Info("session opened")

	// unblock ReadMessage on shutdown
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	written := make(chan struct{})
	go func() {
		defer close(written)
		sess.writeEvents()
	}()

	sess.readRequests()
	sched.Close()
	<-written
	sess.logger.Info("session closed")
}

// session serializes writes to one connection.
type session struct {
	conn   *websocket.Conn
	sched  *anychargen.Scheduler
	logger *slog.Logger

	writeMu sync.Mutex
}

func (ss *session) send(m Message) error {
	ss.writeMu.Lock()
	defer ss.writeMu.Unlock()
	return ss.conn.WriteJSON(m)
}

// readRequests handles requests until the connection fails or closes.
func (ss *session) readRequests() {
	for {
		_, data, err := ss.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ss.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}

		if err := ss.handle(data); err != nil {
			ss.logger.Warn("websocket write failed", slog.Any("error", err))
			return
		}
	}
}

func (ss *session) handle(data []byte) error {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return ss.send(Message{Type: TypeError, Error: "malformed request: " + err.Error()})
	}

	length, err := anychargen.ParseLength(string(req.Length))
	if err != nil {
		ss.logger.Error("invalid length", slog.String("length", string(req.Length)))
		return ss.send(Message{Type: TypeError, Error: err.Error()})
	}

	if dups := generator.Duplicates([]rune(req.Alphabet)); len(dups) > 0 {
		if err := ss.send(Message{Type: TypeWarning, Warning: "repeating characters detected: " + string(dups)}); err != nil {
			return err
		}
	}

	if _, err := ss.sched.Start(req.Alphabet, length); err != nil {
		return ss.send(Message{Type: TypeError, Error: err.Error()})
	}
	return nil
}

// writeEvents forwards events of the newest job until the Scheduler closes.
func (ss *session) writeEvents() {
	broken := false
	for ev := range ss.sched.Events() {
		if broken || ev.JobID != ss.sched.Current() {
			continue
		}

		m := Message{Job: uint64(ev.JobID), Combinations: ev.Batch}
		switch ev.Kind {
		case anychargen.EventBatch:
			m.Type = TypeBatch
		case anychargen.EventComplete:
			m.Type = TypeComplete
			m.Emitted = ev.Emitted
		}

		if err := ss.send(m); err != nil {
			// keep draining so producers are not left blocked
			ss.logger.Warn("websocket write failed", slog.Any("error", err))
			broken = true
		}
	}
}
