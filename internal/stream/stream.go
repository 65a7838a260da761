package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"flux/internal/ast"
	"flux/internal/parser"
	"flux/internal/transform"
	"flux/internal/value"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with permissive settings for local development
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler realizes transformer programs for websocket clients: one-shot
// realizations and timed frame streams driven by a cycles-per-second clock.
// defaultCps applies when a play request omits its own rate.
type Handler struct {
	logger     *slog.Logger
	defaultCps float64
}

func NewHandler(logger *slog.Logger, defaultCps float64) *Handler {
	if defaultCps <= 0 {
		defaultCps = 0.5
	}
	return &Handler{logger: logger, defaultCps: defaultCps}
}

// WSMessage represents a client message
type WSMessage struct {
	Type    string          `json:"type"`    // "realize", "play", "stop", "ping"
	Payload json.RawMessage `json:"payload"` // Message-specific payload
}

// WSRealizePayload asks for a single realization at a fixed phase.
type WSRealizePayload struct {
	Program string            `json:"program"`
	NCycles float64           `json:"n_cycles"`
	Env     map[string]string `json:"env,omitempty"` // name -> expression source
}

// WSPlayPayload starts a frame stream; nCycles advances by elapsed time
// multiplied by cps.
type WSPlayPayload struct {
	Program string            `json:"program"`
	Cps     float64           `json:"cps"`
	FrameMs int               `json:"frame_ms,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// WSResponse represents a server message
type WSResponse struct {
	Type    string      `json:"type"` // "values", "frame", "error", "pong", "stopped"
	Payload interface{} `json:"payload"`
}

// WSFramePayload is one realized frame of a running stream.
type WSFramePayload struct {
	NCycles float64                `json:"n_cycles"`
	Values  map[string]interface{} `json:"values"`
}

// WSErrorPayload carries parse or protocol errors.
type WSErrorPayload struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// conn wraps a websocket connection with a write lock so the frame loop and
// the reader never interleave writes.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(resp WSResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(resp)
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(&conn{ws: ws})
}

func (h *Handler) handleConnection(c *conn) {
	defer c.ws.Close()

	h.logger.Info("websocket connection established", "remote", c.ws.RemoteAddr().String())

	var stopPlaying func()
	defer func() {
		if stopPlaying != nil {
			stopPlaying()
		}
	}()

	for {
		var msg WSMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("websocket read error", "error", err)
			} else {
				h.logger.Info("websocket connection closed")
			}
			return
		}

		switch msg.Type {
		case "ping":
			c.send(WSResponse{Type: "pong", Payload: nil})

		case "realize":
			var payload WSRealizePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(c, "invalid_payload", "invalid realize payload", nil)
				continue
			}
			h.handleRealize(c, payload)

		case "play":
			var payload WSPlayPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				h.sendError(c, "invalid_payload", "invalid play payload", nil)
				continue
			}
			if stopPlaying != nil {
				stopPlaying()
				stopPlaying = nil
			}
			stopPlaying = h.startFrameLoop(c, payload)

		case "stop":
			if stopPlaying != nil {
				stopPlaying()
				stopPlaying = nil
			}
			c.send(WSResponse{Type: "stopped", Payload: nil})

		default:
			h.sendError(c, "unknown_type", "unknown message type: "+msg.Type, nil)
		}
	}
}

func (h *Handler) handleRealize(c *conn, payload WSRealizePayload) {
	tf, env, errs := compile(payload.Program, payload.Env)
	if errs != nil {
		h.sendError(c, "parse_error", "program does not parse", errs)
		return
	}

	m := transform.Realize(payload.NCycles, env, tf)
	c.send(WSResponse{Type: "values", Payload: WSFramePayload{
		NCycles: payload.NCycles,
		Values:  ResultJSON(m),
	}})
}

// startFrameLoop pushes realized frames on a ticker until stopped. Each frame
// is an independent realization; only the phase advances between frames.
func (h *Handler) startFrameLoop(c *conn, payload WSPlayPayload) (stop func()) {
	tf, env, errs := compile(payload.Program, payload.Env)
	if errs != nil {
		h.sendError(c, "parse_error", "program does not parse", errs)
		return nil
	}

	cps := payload.Cps
	if cps <= 0 {
		cps = h.defaultCps
	}
	frame := time.Duration(payload.FrameMs) * time.Millisecond
	if frame <= 0 {
		frame = 50 * time.Millisecond
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(frame)
		defer ticker.Stop()
		start := time.Now()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				nCycles := now.Sub(start).Seconds() * cps
				m := transform.Realize(nCycles, env, tf)
				if err := c.send(WSResponse{Type: "frame", Payload: WSFramePayload{
					NCycles: nCycles,
					Values:  ResultJSON(m),
				}}); err != nil {
					h.logger.Error("frame write failed", "error", err)
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

func (h *Handler) sendError(c *conn, code, message string, errs []string) {
	c.send(WSResponse{Type: "error", Payload: WSErrorPayload{
		Code:    code,
		Message: message,
		Errors:  errs,
	}})
}

// compile parses a program plus optional expression snippets forming the
// semi-global environment.
func compile(program string, envSrc map[string]string) (*ast.Transformer, transform.Environment, []string) {
	tf, errs := parser.Parse(program)
	if errs != nil {
		return nil, nil, errs
	}

	env := transform.Environment{}
	for name, src := range envSrc {
		expr, errs := parser.ParseExpression(src)
		if errs != nil {
			return nil, nil, errs
		}
		env[name] = expr
	}

	return tf, env, nil
}

// ResultJSON converts a realized mapping into JSON-friendly native types.
// Error values surface as their inspect string; the client decides severity.
func ResultJSON(m transform.Result) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch v := v.(type) {
		case *value.Number:
			out[k] = v.Value
		case *value.Integer:
			out[k] = v.Value
		case *value.String:
			out[k] = v.Value
		case *value.Boolean:
			out[k] = v.Value
		default:
			out[k] = v.Inspect()
		}
	}
	return out
}
