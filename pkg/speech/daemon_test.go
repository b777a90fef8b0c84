package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDaemon_Say(t *testing.T) {
	var gotPath string
	var gotText string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotText = body["text"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDaemon(srv.URL)
	if err := d.Say(context.Background(), "Green light!"); err != nil {
		t.Fatalf("say: %v", err)
	}
	if gotPath != "/api/tts/say" {
		t.Errorf("path = %q, want /api/tts/say", gotPath)
	}
	if gotText != "Green light!" {
		t.Errorf("text = %q, want %q", gotText, "Green light!")
	}
}

func TestDaemon_SayErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tts engine offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := NewDaemon(srv.URL)
	err := d.Say(context.Background(), "hello")
	if err == nil {
		t.Fatal("non-200 status must return an error")
	}

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Errorf("error should carry provider context, got %T: %v", err, err)
	}
}

func TestDaemon_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/daemon/status" {
			t.Errorf("path = %q, want /api/daemon/status", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDaemon(srv.URL)
	if err := d.Health(context.Background()); err != nil {
		t.Errorf("health: %v", err)
	}
}
