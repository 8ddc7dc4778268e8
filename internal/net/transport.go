package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"Sketchpad/internal/board"
)

// InputPath is the websocket endpoint a remote pointer connects to.
const InputPath = "/input"

// InputServer accepts a single remote pointer over a websocket and forwards
// its events to the board. Events are handed to Post so that they run on the
// same event context as local input.
type InputServer struct {
	upgrader websocket.Upgrader
	dispatch func(board.Event) error
	log      *slog.Logger

	mu     sync.Mutex
	active string

	// Post runs fn on the UI event context. Defaults to a direct call.
	Post func(fn func())
	// OnConnect and OnDisconnect are called via Post with the peer address.
	OnConnect    func(addr string)
	OnDisconnect func(addr string)
}

// NewInputServer forwards every received event to dispatch.
func NewInputServer(dispatch func(board.Event) error, log *slog.Logger) *InputServer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &InputServer{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		dispatch: dispatch,
		log:      log,
		Post:     func(fn func()) { fn() },
	}
}

// Handler routes the input endpoint and a health probe.
func (s *InputServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(InputPath, s.serveInput)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Connected returns the address of the current remote pointer, if any.
func (s *InputServer) Connected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *InputServer) claim(addr string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != "" {
		return false
	}
	s.active = addr
	return true
}

func (s *InputServer) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
}

func (s *InputServer) serveInput(w http.ResponseWriter, r *http.Request) {
	addr := r.RemoteAddr
	if !s.claim(addr) {
		s.log.Info("remote pointer rejected, one already connected", slog.String("addr", addr))
		http.Error(w, "a remote pointer is already connected", http.StatusConflict)
		return
	}
	defer s.release()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", slog.String("addr", addr), slog.Any("err", err))
		return
	}
	defer conn.Close()

	s.log.Info("remote pointer connected", slog.String("addr", addr))
	s.notify(s.OnConnect, addr)
	if last, open := s.readLoop(conn, addr); open {
		// A dropped connection must not leave the remote's stroke dangling.
		s.forward(board.Event{Type: board.EventUp, X: last.X, Y: last.Y})
	}
	s.notify(s.OnDisconnect, addr)
	s.log.Info("remote pointer disconnected", slog.String("addr", addr))
}

// readLoop forwards events until the connection ends. It reports the last
// pointer event and whether the remote left a stroke open with a down.
func (s *InputServer) readLoop(conn *websocket.Conn, addr string) (last board.Event, open bool) {
	for {
		var ev board.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("remote pointer read ended", slog.String("addr", addr), slog.Any("err", err))
			}
			return last, open
		}
		if err := ev.Validate(); err != nil {
			s.log.Warn("remote event rejected", slog.String("addr", addr), slog.Any("err", err))
			msg := websocket.FormatCloseMessage(websocket.CloseUnsupportedData, err.Error())
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return last, open
		}
		switch ev.Type {
		case board.EventDown:
			last, open = ev, true
		case board.EventMove:
			last = ev
		case board.EventUp:
			last, open = ev, false
		}
		s.forward(ev)
	}
}

func (s *InputServer) forward(ev board.Event) {
	s.Post(func() {
		if err := s.dispatch(ev); err != nil {
			s.log.Warn("remote event failed", slog.String("type", string(ev.Type)), slog.Any("err", err))
		}
	})
}

func (s *InputServer) notify(fn func(string), addr string) {
	if fn == nil {
		return
	}
	s.Post(func() { fn(addr) })
}

// Serve runs an HTTP server for h on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return fmt.Errorf("remote input server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("remote input shutdown: %w", err)
		}
		return nil
	}
}

// Push streams events to a remote Sketchpad at addr (host:port), pausing
// pace between events.
func Push(ctx context.Context, addr string, events []board.Event, pace time.Duration) error {
	url := "ws://" + addr + InputPath
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return fmt.Errorf("dial %s: %w", url, ErrPointerBusy)
		}
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	for i, ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			return fmt.Errorf("send event %d: %w", i, err)
		}
		if pace > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pace):
			}
		}
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// ErrPointerBusy is returned by Push when another remote pointer is connected.
var ErrPointerBusy = errors.New("remote pointer already connected")
