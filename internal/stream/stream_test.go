package stream

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"flux/internal/transform"
	"flux/internal/value"

	"github.com/gorilla/websocket"
)

func dialTestHandler(t *testing.T) *websocket.Conn {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))
	srv := httptest.NewServer(NewHandler(logger, 0.5))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func send(t *testing.T, ws *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := ws.WriteJSON(WSMessage{Type: msgType, Payload: raw}); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func read(t *testing.T, ws *websocket.Conn) WSResponse {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp WSResponse
	if err := ws.ReadJSON(&resp); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return resp
}

func TestPingPong(t *testing.T) {
	ws := dialTestHandler(t)
	send(t, ws, "ping", nil)
	if resp := read(t, ws); resp.Type != "pong" {
		t.Errorf("expected pong, got %q", resp.Type)
	}
}

func TestRealize(t *testing.T) {
	ws := dialTestHandler(t)

	send(t, ws, "realize", WSRealizePayload{
		Program: "{ z = osc(1.0), n = 2 + 3 }",
		NCycles: 0.25,
	})

	resp := read(t, ws)
	if resp.Type != "values" {
		t.Fatalf("expected values, got %q: %+v", resp.Type, resp.Payload)
	}

	values := frameValues(t, resp)
	if z, ok := values["z"].(float64); !ok || z < 0.999 || z > 1.001 {
		t.Errorf("z: got %v, want 1.0", values["z"])
	}
	if n, ok := values["n"].(float64); !ok || n != 5 {
		// JSON numbers decode as float64
		t.Errorf("n: got %v, want 5", values["n"])
	}
}

func TestRealizeWithEnv(t *testing.T) {
	ws := dialTestHandler(t)

	send(t, ws, "realize", WSRealizePayload{
		Program: "{ depth = 3, out = lfo }",
		Env:     map[string]string{"lfo": "this.depth * 2"},
	})

	resp := read(t, ws)
	if resp.Type != "values" {
		t.Fatalf("expected values, got %q", resp.Type)
	}
	values := frameValues(t, resp)
	if out, ok := values["out"].(float64); !ok || out != 6 {
		t.Errorf("out: got %v, want 6", values["out"])
	}
}

func TestRealizeParseError(t *testing.T) {
	ws := dialTestHandler(t)

	send(t, ws, "realize", WSRealizePayload{Program: "{ x = osc(osc(1)) }"})

	resp := read(t, ws)
	if resp.Type != "error" {
		t.Fatalf("expected error, got %q", resp.Type)
	}
}

func TestPlayStreamsFramesUntilStop(t *testing.T) {
	ws := dialTestHandler(t)

	send(t, ws, "play", WSPlayPayload{
		Program: "{ w = range(0, 1, (osc(1.0))) }",
		Cps:     1,
		FrameMs: 10,
	})

	frames := 0
	for frames < 3 {
		resp := read(t, ws)
		if resp.Type != "frame" {
			t.Fatalf("expected frame, got %q", resp.Type)
		}
		values := frameValues(t, resp)
		w, ok := values["w"].(float64)
		if !ok || w < 0 || w > 1 {
			t.Errorf("w out of range: %v", values["w"])
		}
		frames++
	}

	send(t, ws, "stop", nil)
	for {
		resp := read(t, ws)
		if resp.Type == "stopped" {
			break
		}
		if resp.Type != "frame" {
			t.Fatalf("expected frame or stopped, got %q", resp.Type)
		}
	}
}

func frameValues(t *testing.T, resp WSResponse) map[string]interface{} {
	t.Helper()
	payload, ok := resp.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected payload shape: %T", resp.Payload)
	}
	values, ok := payload["values"].(map[string]interface{})
	if !ok {
		t.Fatalf("payload missing values: %+v", payload)
	}
	return values
}

func TestDefaultCps(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(testWriter{t}, nil))

	h := NewHandler(logger, 2.0)
	if h.defaultCps != 2.0 {
		t.Errorf("configured rate dropped: got %v", h.defaultCps)
	}

	// a non-positive configured rate falls back to the built-in default
	h = NewHandler(logger, 0)
	if h.defaultCps != 0.5 {
		t.Errorf("fallback rate: got %v, want 0.5", h.defaultCps)
	}
}

func TestResultJSON(t *testing.T) {
	m := transform.Result{
		"a": &value.Integer{Value: 3},
		"b": &value.Number{Value: 0.5},
		"c": &value.String{Value: "hat"},
		"d": &value.Boolean{Value: true},
		"e": value.NewError("division by zero"),
	}

	out := ResultJSON(m)
	if out["a"] != int64(3) || out["b"] != 0.5 || out["c"] != "hat" || out["d"] != true {
		t.Errorf("unexpected conversion: %+v", out)
	}
	if s, ok := out["e"].(string); !ok || !strings.Contains(s, "division by zero") {
		t.Errorf("error value must surface as its inspect string, got %v", out["e"])
	}
}
