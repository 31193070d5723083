package master

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(time.Minute, testLog())
	defer reg.Stop()

	id := reg.Register(SessionInfo{Name: "night", Address: "1.2.3.4:7373", MaxPlayers: 4})
	if id == "" {
		t.Fatal("empty id")
	}

	list := reg.List()
	if len(list) != 1 || list[0].ID != id || list[0].Name != "night" {
		t.Fatalf("list = %+v", list)
	}

	if !reg.Heartbeat(id, 3) {
		t.Fatal("heartbeat rejected for known id")
	}
	if got := reg.List()[0].Players; got != 3 {
		t.Fatalf("players = %d, want 3", got)
	}
	if reg.Heartbeat("nope", 1) {
		t.Fatal("heartbeat accepted for unknown id")
	}
}

func TestRegistryExpiry(t *testing.T) {
	reg := NewRegistry(10*time.Millisecond, testLog())
	defer reg.Stop()

	reg.Register(SessionInfo{Name: "stale", Address: "a:1"})
	reg.expireStale(time.Now().Add(time.Second))

	if got := reg.List(); len(got) != 0 {
		t.Fatalf("stale session survived: %+v", got)
	}
}

func TestHTTPRoundTrip(t *testing.T) {
	reg := NewRegistry(time.Minute, testLog())
	defer reg.Stop()
	srv := httptest.NewServer(NewMux(reg, testLog()))
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{
		"name": "night", "address": "1.2.3.4:7373", "maxPlayers": 4, "version": "0.4.1",
	})
	resp, err := http.Post(srv.URL+"/sessions/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	var reg1 struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reg1); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	hb, _ := json.Marshal(map[string]any{"id": reg1.ID, "players": 2})
	resp, err = http.Post(srv.URL+"/sessions/heartbeat", "application/json", bytes.NewReader(hb))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("heartbeat status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/sessions")
	if err != nil {
		t.Fatal(err)
	}
	var sessions []SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if len(sessions) != 1 || sessions[0].Players != 2 || sessions[0].Version != "0.4.1" {
		t.Fatalf("sessions = %+v", sessions)
	}
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry(time.Minute, testLog())
	defer reg.Stop()
	srv := httptest.NewServer(NewMux(reg, testLog()))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/sessions/register", "application/json",
		bytes.NewReader([]byte(`{"name":"","address":""}`)))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/sessions/heartbeat", "application/json",
		bytes.NewReader([]byte(`{"id":"ghost"}`)))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
