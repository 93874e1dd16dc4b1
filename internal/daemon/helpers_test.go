package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"mediajobs/internal/config"
	"mediajobs/internal/engine"
	"mediajobs/internal/events"
	"mediajobs/internal/history"
	"mediajobs/internal/logging"
	"mediajobs/internal/workflow"
)

func newTestDaemon(t *testing.T, cfg *config.Config) *Daemon {
	t.Helper()
	logger := logging.NewNop()
	store := history.New(cfg.History.Backend, logger)
	hub := events.NewHub()
	builder := engine.NewBuilder(engine.Tools{
		YtDlp:       cfg.Tools.YtDlp,
		FFmpeg:      cfg.Tools.FFmpeg,
		ImageMagick: cfg.Tools.ImageMagick,
	}, logger)
	mgr := workflow.NewManager(cfg, store, builder, hub, logger)
	d, err := New(cfg, store, mgr, hub, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func startTestDaemon(t *testing.T, cfg *config.Config) *Daemon {
	t.Helper()
	d := newTestDaemon(t, cfg)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return d
}

type apiClient struct {
	base  string
	token string
}

func newAPIClient(t *testing.T, d *Daemon) *apiClient {
	t.Helper()
	addr := d.api.addr()
	if addr == "" {
		t.Fatal("api server not listening")
	}
	return &apiClient{base: "http://" + addr}
}

func (c *apiClient) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}
