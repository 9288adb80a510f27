package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/domain/operation"
	"github.com/Yat-Muk/opsdeck/internal/domain/status"
	"github.com/Yat-Muk/opsdeck/internal/pkg/appctx"
	"github.com/Yat-Muk/opsdeck/internal/pkg/errors"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return c
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("not a url")
	assert.True(t, errors.IsValidation(err))
}

func TestStatusSummary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", respond(`{
		"hostname": "studio-mac",
		"windsurf": {"installed": true, "configs": 3},
		"vscode": {"installed": false, "configs": 0},
		"timestamp": "2025-03-01T11:59:58.123456"
	}`))
	c := newTestClient(t, mux)

	got, err := c.StatusSummary(context.Background())
	require.NoError(t, err)

	ws := got[status.Windsurf]
	assert.True(t, ws.Installed)
	assert.Equal(t, 3, ws.Count)
	assert.Equal(t, status.StateActive, ws.State)

	vs := got[status.VSCode]
	assert.False(t, vs.Installed)
	assert.Equal(t, status.StateInactive, vs.State)

	assert.Equal(t, "studio-mac", got[status.Host].Detail("hostname"))
	assert.Equal(t, 58, ws.UpdatedAt.Second())
}

func TestProfiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/configs/vscode", respond(`{"configs": [
		{"name": "work", "hostname": "mbp-1", "created": "2025-02-10 09:30:00", "description": "office"},
		{"name": "", "hostname": "skipped"},
		{"name": "home", "hostname": "mbp-2", "created": "garbage"}
	]}`))
	c := newTestClient(t, mux)

	got, err := c.Profiles(context.Background(), status.VSCode)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "work", got[0].Name)
	assert.Equal(t, 2025, got[0].Created.Year())
	assert.Equal(t, "office", got[0].Description)
	assert.Equal(t, "home", got[1].Name)
	assert.True(t, got[1].Created.IsZero())
}

func TestStealthStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stealth/status", respond(`{
		"stealth_monitor": true,
		"hostname": "h",
		"mac_address": "a4:83:e7:12:34:56",
		"hardware_uuid": "550E8400...44000000"
	}`))
	c := newTestClient(t, mux)

	v, err := c.StealthStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, v.Active)
	assert.Equal(t, status.StateActive, v.State)
	assert.Equal(t, "a4:83:e7:12:34:56", v.Detail("mac_address"))
	assert.Equal(t, fixedNow, v.UpdatedAt)
}

func TestMonitorProbes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/monitor/processes", respond(`{"success": true, "windsurf": 4, "vscode": 2}`))
	mux.HandleFunc("/api/monitor/network", respond(`{"success": true, "status": "offline"}`))
	mux.HandleFunc("/api/monitor/fingerprint", respond(`{"success": false, "message": "probe crashed"}`))
	c := newTestClient(t, mux)
	ctx := context.Background()

	procs, err := c.MonitorProcesses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, procs.Count)
	assert.Equal(t, "4", procs.Detail("windsurf"))

	net, err := c.MonitorNetwork(ctx)
	require.NoError(t, err)
	assert.Equal(t, status.StateOffline, net.State)

	_, err = c.MonitorFingerprint(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsBackend(err))
	assert.Equal(t, "probe crashed", errors.Reason(err))
}

func TestHistory(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/history", respond(`{"history": [
		{"timestamp": "2025-02-28T10:00:00Z", "message": "Restored windsurf config: work", "type": "success"},
		{"timestamp": "", "message": "legacy", "type": "mystery"}
	]}`))
	c := newTestClient(t, mux)

	got, err := c.History(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, console.LevelSuccess, got[0].Level)
	assert.Equal(t, 28, got[0].Timestamp.Day())
	assert.Equal(t, console.LevelInfo, got[1].Level)
	assert.Equal(t, fixedNow, got[1].Timestamp)
}

func TestRunOperation(t *testing.T) {
	var gotBody, gotRun string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stealth/monitor", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotRun = r.Header.Get(RunHeader)
		_, _ = io.WriteString(w, `{"success": true, "output": "monitor started\n"}`)
	})
	mux.HandleFunc("/api/cleanup/windsurf/full", respond(`{
		"success": false,
		"steps": [
			{"step": "Deep Cleanup", "status": "success", "output": "ok"},
			{"step": "Advanced Cleanup", "status": "failed"}
		],
		"message": "Advanced cleanup failed"
	}`))
	c := newTestClient(t, mux)

	t.Run("帶參數", func(t *testing.T) {
		ctx := appctx.WithRunID(context.Background(), "run-1")
		res, err := c.RunOperation(ctx, operation.Definition{
			Path: "/api/stealth/monitor",
			Args: map[string]string{"action": "start"},
		})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "monitor started", res.Message)
		assert.JSONEq(t, `{"action":"start"}`, gotBody)
		assert.Equal(t, "run-1", gotRun)
	})

	t.Run("後端報告失敗", func(t *testing.T) {
		res, err := c.RunOperation(context.Background(), operation.Definition{Path: "/api/cleanup/windsurf/full"})
		require.NoError(t, err)
		assert.False(t, res.Success)
		require.Len(t, res.Steps, 2)
		assert.Equal(t, "Deep Cleanup", res.Steps[0].Name)
		assert.Equal(t, operation.StepFailed, res.Steps[1].Status)
		assert.Equal(t, "Advanced cleanup failed", res.FailureReason())
	})
}

func TestRunOperation_HTTPErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/with-body", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"success": false, "error": "script missing"}`)
	})
	mux.HandleFunc("/api/no-body", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	res, err := c.RunOperation(ctx, operation.Definition{Path: "/api/with-body"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "script missing", res.FailureReason())

	_, err = c.RunOperation(ctx, operation.Definition{Path: "/api/no-body"})
	require.Error(t, err)
	assert.True(t, errors.IsBackend(err))
	assert.Contains(t, errors.Reason(err), "502")
}

func TestTransportErrors(t *testing.T) {
	t.Run("連接失敗", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := New(url)
		require.NoError(t, err)
		_, err = c.StatusSummary(context.Background())
		require.Error(t, err)
		assert.True(t, errors.IsTransport(err))
	})

	t.Run("超時", func(t *testing.T) {
		block := make(chan struct{})
		mux := http.NewServeMux()
		mux.HandleFunc("/api/cleanup/vscode", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-block:
			case <-r.Context().Done():
			}
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()
		defer close(block)

		c, err := New(srv.URL, WithTimeouts(time.Second, 50*time.Millisecond))
		require.NoError(t, err)

		_, err = c.RunOperation(context.Background(), operation.Definition{Path: "/api/cleanup/vscode"})
		require.Error(t, err)
		assert.True(t, errors.IsTransport(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("解析失敗", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/status", respond(`{"hostname": `))
		c := newTestClient(t, mux)

		_, err := c.StatusSummary(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrDecode)
		assert.False(t, errors.IsTransport(err))
	})
}

func TestRestore(t *testing.T) {
	var gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/restore/windsurf", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = io.WriteString(w, `{"success": true, "message": "Restored work"}`)
	})
	c := newTestClient(t, mux)

	ack, err := c.Restore(context.Background(), status.Windsurf, "work")
	require.NoError(t, err)
	assert.True(t, ack.Success)
	assert.JSONEq(t, `{"config":"work"}`, gotBody)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		ok   bool
		year int
	}{
		{"2025-03-01T10:00:00Z", true, 2025},
		{"2025-03-01T10:00:00.123456", true, 2025},
		{"2024-12-31 23:59:59", true, 2024},
		{"2023-05-06", true, 2023},
		{"20220102_030405", true, 2022},
		{"1700000000", true, 2023},
		{"", false, 0},
		{"yesterday", false, 0},
	}
	for _, tt := range tests {
		ts, ok := ParseTimestamp(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		if tt.ok {
			assert.Equal(t, tt.year, ts.Year(), tt.raw)
		}
	}
}
