package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientGetReturnsNon2xxWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "UA" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("X-Extra"); got != "1" {
			t.Errorf("X-Extra = %q", got)
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("<html>busy</html>"))
	}))
	defer srv.Close()

	client := NewRestyClient(2*time.Second, map[string]string{"User-Agent": "UA"})
	resp, err := client.Get(context.Background(), srv.URL, map[string]string{"X-Extra": "1"})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	if string(resp.Body()) != "<html>busy</html>" {
		t.Fatalf("body = %q", resp.Body())
	}
}

func TestRestyClientPostSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]string
		if err := json.Unmarshal(raw, &payload); err != nil || payload["query"] != "cats" {
			t.Errorf("unexpected payload %s (%v)", raw, err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewRestyClient(2*time.Second, nil)
	resp, err := client.Post(context.Background(), srv.URL, map[string]string{"query": "cats"}, nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode())
	}
}

func TestRestyClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client := NewRestyClient(time.Second, nil)
	if _, err := client.Get(context.Background(), addr, nil); err == nil {
		t.Fatalf("expected error for closed server")
	}
}
