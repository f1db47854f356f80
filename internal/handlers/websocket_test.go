package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"smart_kettle/internal/models"
	"smart_kettle/internal/service"
	"smart_kettle/internal/status"
	"smart_kettle/internal/thermal"

	"github.com/gorilla/websocket"
)

type testEnvelope struct {
	Type  string          `json:"type"`
	Cause string          `json:"cause"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialWS(t *testing.T, s *service.Service) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(newTestRouter(s))
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) testEnvelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env testEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

func TestWebSocket_StatusThenEvents(t *testing.T) {
	mon := &mockMonitoring{status: models.KettleStatus{Mode: "IDLE", Message: "Oczekiwanie na polecenie"}}
	broker := status.NewBroker(8)
	conn := dialWS(t, &service.Service{Monitoring: mon, Feed: broker})

	env := readEnvelope(t, conn)
	if env.Type != "status" {
		t.Fatalf("expected initial status, got %+v", env)
	}
	var st models.KettleStatus
	if err := json.Unmarshal(env.Data, &st); err != nil || st.Mode != "IDLE" {
		t.Fatalf("initial status: %+v err=%v", st, err)
	}

	// broker snapshot: no reading yet
	env = readEnvelope(t, conn)
	if env.Type != string(thermal.EventReading) || string(env.Data) == "" {
		t.Fatalf("expected snapshot reading, got %+v", env)
	}
	var rd struct {
		Degrees *int `json:"degrees"`
	}
	_ = json.Unmarshal(env.Data, &rd)
	if rd.Degrees != nil {
		t.Fatalf("snapshot degrees: %v", *rd.Degrees)
	}

	waitSubscribers(t, broker, 1)
	broker.Publish(thermal.Event{Kind: thermal.EventReading, Degrees: thermal.Some(55)})
	env = readEnvelope(t, conn)
	_ = json.Unmarshal(env.Data, &rd)
	if env.Type != "reading" || rd.Degrees == nil || *rd.Degrees != 55 {
		t.Fatalf("reading envelope: %+v", env)
	}

	heating := thermal.State{Mode: thermal.ModeHeating, HeaterOn: true, Target: thermal.Some(90), LastReading: thermal.Some(55)}
	broker.Publish(thermal.Event{Kind: thermal.EventModeChanged, Cause: thermal.CauseHeatStarted, State: heating})
	env = readEnvelope(t, conn)
	if env.Type != "mode_changed" || env.Cause != "heat_started" {
		t.Fatalf("mode envelope: %+v", env)
	}
	st = models.KettleStatus{}
	_ = json.Unmarshal(env.Data, &st)
	if st.Mode != "HEATING" || !st.HeaterOn || st.Message != "Podgrzewanie do 90 stopni" {
		t.Fatalf("mode status: %+v", st)
	}
}

func TestWebSocket_KeepAliveIsPingFrame(t *testing.T) {
	broker := status.NewBroker(8)
	conn := dialWS(t, &service.Service{Monitoring: &mockMonitoring{}, Feed: broker})

	pinged := make(chan struct{}, 1)
	conn.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})

	readEnvelope(t, conn) // status
	readEnvelope(t, conn) // snapshot
	waitSubscribers(t, broker, 1)
	broker.Publish(thermal.Event{Kind: thermal.EventKeepAlive})

	// control frames are handled inside ReadMessage
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping frame")
	}
}

func TestWebSocket_InitialStatusError_Closes(t *testing.T) {
	mon := &mockMonitoring{err: errors.New("boom")}
	broker := status.NewBroker(8)
	conn := dialWS(t, &service.Service{Monitoring: mon, Feed: broker})

	env := readEnvelope(t, conn)
	if env.Type != "error" || env.Error == "" {
		t.Fatalf("expected error envelope, got %+v", env)
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var raw json.RawMessage
	if err := conn.ReadJSON(&raw); err == nil {
		t.Fatalf("expected read error (closed), got message: %s", string(raw))
	}
	waitSubscribers(t, broker, 0)
}
