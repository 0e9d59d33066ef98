package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evanschultz/todo/internal/adapters/server/common"
)

// TestNewHandlerRoutesHealthAPIAndMCP verifies the composed mux mounts every surface.
func TestNewHandlerRoutesHealthAPIAndMCP(t *testing.T) {
	session := common.NewSession(nil, nil)
	handler, cfg, err := NewHandler(Config{}, session)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if cfg.HTTPBind != defaultBindAddress || cfg.APIEndpoint != "/api/v1" || cfg.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected normalized config %#v", cfg)
	}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("Get(/healthz) error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	resp, err = srv.Client().Post(srv.URL+"/api/v1/tasks", "application/json", strings.NewReader(`{"text":"A"}`))
	if err != nil {
		t.Fatalf("Post(/api/v1/tasks) error = %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if got := session.State().Tasks; len(got) != 1 || got[0].Text != "A" {
		t.Fatalf("unexpected session tasks %#v", got)
	}

	resp, err = srv.Client().Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatalf("Get(/readyz) error = %v", err)
	}
	var ready struct {
		Status string `json:"status"`
		Counts struct {
			Total     int `json:"total"`
			Remaining int `json:"remaining"`
		} `json:"counts"`
	}
	err = json.NewDecoder(resp.Body).Decode(&ready)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("Decode(/readyz) error = %v", err)
	}
	if ready.Status != "ready" || ready.Counts.Total != 1 || ready.Counts.Remaining != 1 {
		t.Fatalf("unexpected readiness payload %#v", ready)
	}

	body, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2025-03-26",
			"clientInfo":      map[string]any{"name": "todo-test", "version": "1.0.0"},
		},
	})
	resp, err = srv.Client().Post(srv.URL+"/mcp", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Post(/mcp) error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("mcp status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

// TestNormalizeConfigRejectsCollidingEndpoints verifies endpoint validation.
func TestNormalizeConfigRejectsCollidingEndpoints(t *testing.T) {
	if _, err := normalizeConfig(Config{APIEndpoint: "/x", MCPEndpoint: "x/"}); !errors.Is(err, ErrEndpointCollision) {
		t.Fatalf("expected ErrEndpointCollision, got %v", err)
	}
	if got := normalizeEndpoint("/", "/mcp"); got != "/mcp" {
		t.Fatalf("normalizeEndpoint(/) = %q, want /mcp", got)
	}
}

// TestNewHandlerRequiresSession verifies dependency validation.
func TestNewHandlerRequiresSession(t *testing.T) {
	if _, _, err := NewHandler(Config{}, nil); !errors.Is(err, ErrSessionRequired) {
		t.Fatalf("expected ErrSessionRequired, got %v", err)
	}
}

// TestRunStopsOnContextCancel verifies graceful shutdown.
func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{HTTPBind: "127.0.0.1:0"}, common.NewSession(nil, nil), nil)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}
