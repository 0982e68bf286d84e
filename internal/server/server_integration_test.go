package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/signscribe/internal/app"
	"github.com/ayusman/signscribe/internal/session"
	"github.com/ayusman/signscribe/internal/sign"
)

func TestAPI_ActionWorkflow(t *testing.T) {
	env := newTestServer(t)
	ts := httptest.NewServer(env.server)
	defer ts.Close()

	client := ts.Client()

	// 1. Create an action
	createBody := `{"sign": "HELLO", "plugin_name": "speech", "action_name": "say", "config": {"voice": "Alex"}}`
	resp, err := client.Post(ts.URL+"/api/actions", "application/json", bytes.NewBufferString(createBody))
	if err != nil {
		t.Fatalf("POST /api/actions error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		ID      string          `json:"id"`
		Sign    string          `json:"sign"`
		Config  json.RawMessage `json:"config"`
		Enabled bool            `json:"enabled"`
	}
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	if created.Sign != "HELLO" || !created.Enabled {
		t.Errorf("created = %+v", created)
	}

	// 2. The same binding twice conflicts
	resp, _ = client.Post(ts.URL+"/api/actions", "application/json", bytes.NewBufferString(createBody))
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate POST status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	resp.Body.Close()

	// 3. Unknown signs are rejected
	resp, _ = client.Post(ts.URL+"/api/actions", "application/json",
		bytes.NewBufferString(`{"sign": "Z", "plugin_name": "speech", "action_name": "say"}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown sign POST status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	resp.Body.Close()

	// 4. List actions
	resp, _ = client.Get(ts.URL + "/api/actions")
	var listed struct {
		Actions []struct {
			ID string `json:"id"`
		} `json:"actions"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Actions) != 1 {
		t.Fatalf("len(actions) = %d, want 1", len(listed.Actions))
	}

	// 5. Disable it
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/actions/"+created.ID,
		bytes.NewBufferString(`{"enabled": false}`))
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var updated struct {
		Enabled bool   `json:"enabled"`
		Sign    string `json:"sign"`
	}
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()
	if updated.Enabled || updated.Sign != "HELLO" {
		t.Errorf("updated = %+v", updated)
	}

	bound, err := env.store.Actions().ListBySign("HELLO")
	if err != nil {
		t.Fatalf("ListBySign() error = %v", err)
	}
	if len(bound) != 0 {
		t.Errorf("disabled action still bound: %+v", bound)
	}

	// 6. Delete it
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/actions/"+created.ID, nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	// 7. Verify deleted
	resp, _ = client.Get(ts.URL + "/api/actions/" + created.ID)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET deleted status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestAPI_Sessions(t *testing.T) {
	env := newTestServer(t)
	env.confirm(t)

	ts := httptest.NewServer(env.server)
	defer ts.Close()

	id := env.app.Session().ID()

	resp, err := http.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	var listed struct {
		Sessions []struct {
			ID        string  `json:"id"`
			EndedAt   *string `json:"ended_at"`
			SignCount int     `json:"sign_count"`
		} `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Sessions) != 1 || listed.Sessions[0].ID != id {
		t.Fatalf("sessions = %+v", listed.Sessions)
	}
	if listed.Sessions[0].EndedAt != nil || listed.Sessions[0].SignCount != 1 {
		t.Errorf("session = %+v", listed.Sessions[0])
	}

	resp, _ = http.Get(ts.URL + "/api/sessions/" + id + "/events")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET events status = %d", resp.StatusCode)
	}
	var events struct {
		SessionID string `json:"session_id"`
		Events    []struct {
			Sign string `json:"sign"`
		} `json:"events"`
	}
	json.NewDecoder(resp.Body).Decode(&events)
	resp.Body.Close()

	if events.SessionID != id || len(events.Events) != 1 || events.Events[0].Sign != "HELLO" {
		t.Errorf("events = %+v", events)
	}

	for _, path := range []string{"/api/sessions/missing", "/api/sessions/missing/events", "/api/sessions/" + id + "/other"} {
		resp, _ = http.Get(ts.URL + path)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

type fakeSource struct {
	mu    sync.Mutex
	frame []byte
	seq   uint64
}

func (f *fakeSource) Latest() ([]byte, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame, f.seq
}

func (f *fakeSource) set(frame []byte) {
	f.mu.Lock()
	f.frame = frame
	f.seq++
	f.mu.Unlock()
}

func TestStreamHandler(t *testing.T) {
	source := &fakeSource{}
	source.set([]byte("jpeg-1"))

	ts := httptest.NewServer(NewStreamHandler(source))
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	if err != nil {
		t.Fatalf("GET stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readPart := func() string {
		t.Helper()
		var headers []string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("reading part: %v", err)
			}
			line = strings.TrimRight(line, "\r\n")
			if line == "" {
				break
			}
			headers = append(headers, line)
		}
		if len(headers) != 3 || headers[0] != "--frame" || headers[1] != "Content-Type: image/jpeg" {
			t.Fatalf("part headers = %q", headers)
		}
		body := make([]byte, 6)
		if _, err := io.ReadFull(reader, body); err != nil {
			t.Fatalf("reading part body: %v", err)
		}
		reader.ReadString('\n')
		return string(body)
	}

	if got := readPart(); got != "jpeg-1" {
		t.Errorf("first frame = %q", got)
	}

	source.set([]byte("jpeg-2"))
	if got := readPart(); got != "jpeg-2" {
		t.Errorf("second frame = %q", got)
	}
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/stream", nil)
	rec := httptest.NewRecorder()

	NewStreamHandler(&fakeSource{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestLiveHandler(t *testing.T) {
	live := NewLiveHandler()
	ts := httptest.NewServer(live)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for live.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client was not registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	live.Publish(app.Update{
		Result:      session.Result{Sign: sign.V, Progress: 40},
		Status:      session.Status{Display: "V"},
		HandPresent: true,
		FPS:         30,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got app.Update
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Result.Sign != sign.V || got.Result.Progress != 40 || !got.HandPresent || got.Status.Display != "V" {
		t.Errorf("update = %+v", got)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for live.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was not removed after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServer_LiveReceivesPipelineUpdates(t *testing.T) {
	env := newTestServer(t)
	if env.server.live == nil {
		t.Fatal("expected a live handler")
	}

	ts := httptest.NewServer(env.server)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/live", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for env.server.live.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client was not registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	frame := newFrame(t)
	env.app.SetEnabled(true)
	if _, err := env.app.ProcessFrame(frame, time.Now()); err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got app.Update
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Status.SessionID != env.app.Session().ID() {
		t.Errorf("update session = %q", got.Status.SessionID)
	}
}
