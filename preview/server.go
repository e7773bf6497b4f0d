// Package preview serves the live strip over HTTP: a websocket stream of
// displayed frames, the recent frame history, the log tail, the runtime
// config and single descriptor reads and writes.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/config"
	"lautenbacher.net/fcleds/driver"
	"lautenbacher.net/fcleds/logging"
	"lautenbacher.net/fcleds/strip"
)

const (
	// commandTimeout bounds how long a request waits for the control loop.
	commandTimeout  = 2 * time.Second
	defaultLogLines = 100
)

var ErrLoopBusy = errors.New("control loop did not answer")

type Server struct {
	listen   string
	hub      *Hub
	recorder *driver.Recorder
	commands chan *Command
	mux      *http.ServeMux
	srv      *http.Server
	addr     net.Addr
}

// NewServer wires the routes. cfile is the config file behind
// /api/config.
func NewServer(conf config.PreviewConfig, cfile string, recorder *driver.Recorder) *Server {
	s := &Server{
		listen:   conf.Listen,
		hub:      NewHub(),
		recorder: recorder,
		commands: make(chan *Command),
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /ws/frames", s.hub.HandleFramesWS)
	s.mux.HandleFunc("GET /api/frames", s.handleFrames)
	s.mux.HandleFunc("GET /api/logs", s.handleLogs)
	s.mux.Handle("/api/config", config.ConfigHandler(cfile))
	s.mux.HandleFunc("GET /api/led/{index}", s.commandHandler(GetLed))
	s.mux.HandleFunc("PUT /api/led/{index}", s.commandHandler(SetLed))
	s.mux.HandleFunc("GET /api/color/{index}", s.commandHandler(GetColor))
	s.mux.HandleFunc("PUT /api/color/{index}", s.commandHandler(SetColor))
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Hub is the frame sink feeding the websocket clients.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Commands delivers descriptor requests; the receiver must Execute each.
func (s *Server) Commands() <-chan *Command {
	return s.commands
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listen, err)
	}
	s.addr = ln.Addr()
	s.srv = &http.Server{Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	slog.Info("Preview server listening", "addr", s.addr.String())
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server failed", "error", err)
		}
	}()
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}

func (s *Server) Stop(ctx context.Context) error {
	s.hub.Close()
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// limit reads the optional "n" query parameter.
func limit(r *http.Request) (int, error) {
	text := r.URL.Query().Get("n")
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid n %q", text)
	}
	return n, nil
}

func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	n, err := limit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	frames := s.recorder.Frames()
	if n > 0 && n < len(frames) {
		frames = frames[len(frames)-n:]
	}
	ret := make([]FrameJSON, 0, len(frames))
	for i := range frames {
		ret = append(ret, newFrameJSON(&frames[i]))
	}
	writeJSON(w, ret)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	n, err := limit(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if n == 0 {
		n = defaultLogLines
	}
	writeJSON(w, logging.Tail(n))
}

func (s *Server) commandHandler(kind CommandKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(r.PathValue("index"))
		if err != nil {
			http.Error(w, "Invalid index", http.StatusBadRequest)
			return
		}
		var text string
		if kind == SetLed || kind == SetColor {
			body, err := io.ReadAll(io.LimitReader(r.Body, 256))
			if err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
			text = strings.TrimSpace(string(body))
		}

		reply, err := s.submit(r.Context(), newCommand(kind, index, text))
		if err != nil {
			slog.Warn("Descriptor request not executed", "command", kind, "index", index, "error", err)
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if reply.Err != nil {
			http.Error(w, reply.Err.Error(), statusFor(reply.Err))
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, reply.Text)
	}
}

func statusFor(err error) int {
	if errors.Is(err, strip.ErrIndexOutOfRange) || errors.Is(err, color.ErrIndexOutOfRange) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func (s *Server) submit(ctx context.Context, cmd *Command) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	select {
	case s.commands <- cmd:
	case <-ctx.Done():
		return Reply{}, ErrLoopBusy
	}
	select {
	case reply := <-cmd.reply:
		return reply, nil
	case <-ctx.Done():
		return Reply{}, ErrLoopBusy
	}
}
