package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcusdavidalo/anychargen"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var m Message
	require.NoError(t, conn.ReadJSON(&m))
	return m
}

// readUntilComplete collects combinations per job until the first completion.
func readUntilComplete(t *testing.T, conn *websocket.Conn) (uint64, map[uint64][]string) {
	t.Helper()
	byJob := make(map[uint64][]string)
	for {
		m := readMessage(t, conn)
		switch m.Type {
		case TypeBatch:
			byJob[m.Job] = append(byJob[m.Job], m.Combinations...)
		case TypeComplete:
			byJob[m.Job] = append(byJob[m.Job], m.Combinations...)
			return m.Job, byJob
		case TypeError:
			t.Fatalf("unexpected error message: %s", m.Error)
		}
	}
}

func newTestServer(t *testing.T, opts ...anychargen.Option) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(discardLogger(), nil, opts...).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServer_GeneratesCombinations(t *testing.T) {
	srv := newTestServer(t, anychargen.WithBatchSize(3), anychargen.WithYieldDelay(0))
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"alphabet":"ab","length":2}`)))

	job, byJob := readUntilComplete(t, conn)
	require.EqualValues(t, 1, job)
	require.Equal(t, []string{"aa", "ab", "ba", "bb"}, byJob[job])
}

func TestServer_RejectsInvalidLength(t *testing.T) {
	srv := newTestServer(t, anychargen.WithYieldDelay(0))
	conn := dial(t, srv)

	for _, body := range []string{
		`{"alphabet":"ab","length":"2"}`,
		`{"alphabet":"ab","length":0}`,
		`{"alphabet":"ab","length":2.5}`,
		`{"alphabet":"ab"}`,
		`{"alphabet":"","length":2}`,
		`not json`,
	} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(body)))
		m := readMessage(t, conn)
		assert.Equal(t, TypeError, m.Type, "body %s", body)
		assert.NotEmpty(t, m.Error, "body %s", body)
	}

	// the connection is still usable after errors
	require.NoError(t, conn.WriteJSON(map[string]any{"alphabet": "z", "length": 3}))
	job, byJob := readUntilComplete(t, conn)
	require.Equal(t, []string{"zzz"}, byJob[job])
}

func TestServer_WarnsOnRepeatingCharacters(t *testing.T) {
	srv := newTestServer(t, anychargen.WithYieldDelay(0))
	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(map[string]any{"alphabet": "aab", "length": 1}))

	m := readMessage(t, conn)
	require.Equal(t, TypeWarning, m.Type)
	require.Contains(t, m.Warning, "a")

	job, byJob := readUntilComplete(t, conn)
	require.Equal(t, []string{"a", "a", "b"}, byJob[job])
}

func TestServer_NewRequestSupersedes(t *testing.T) {
	srv := newTestServer(t, anychargen.WithBatchSize(4), anychargen.WithYieldDelay(20*time.Millisecond))
	conn := dial(t, srv)

	require.NoError(t, conn.WriteJSON(map[string]any{"alphabet": "ab", "length": 12}))
	require.NoError(t, conn.WriteJSON(map[string]any{"alphabet": "xy", "length": 2}))

	job, byJob := readUntilComplete(t, conn)
	require.EqualValues(t, 2, job)
	require.Equal(t, []string{"xx", "xy", "yx", "yy"}, byJob[job])
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))
}

func TestServer_ListenAndServe_StopsOnCancel(t *testing.T) {
	s := New(discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatalf("ListenAndServe did not return after cancel")
	}
}

func TestServer_RejectsOversizedLength(t *testing.T) {
	srv := newTestServer(t, anychargen.WithYieldDelay(0), anychargen.WithMaxCombinations(100))
	conn := dial(t, srv)

	// one character passes the combination bound; the length limit must still reject it
	require.NoError(t, conn.WriteJSON(map[string]any{"alphabet": "a", "length": int64(1) << 50}))
	m := readMessage(t, conn)
	require.Equal(t, TypeError, m.Type)
	require.NotEmpty(t, m.Error)

	// the server is still alive and serving the same connection
	require.NoError(t, conn.WriteJSON(map[string]any{"alphabet": "a", "length": 2}))
	job, byJob := readUntilComplete(t, conn)
	require.Equal(t, []string{"aa"}, byJob[job])
}

func TestServer_CheckOrigin(t *testing.T) {
	srv := httptest.NewServer(New(discardLogger(), []string{"http://app.example/"}).Handler())
	t.Cleanup(srv.Close)

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"no origin", "", true},
		{"same host", srv.URL, true},
		{"allowed origin", "http://app.example", true},
		{"foreign origin", "http://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}
			if !tt.ok {
				require.ErrorIs(t, err, websocket.ErrBadHandshake)
				require.Equal(t, http.StatusForbidden, resp.StatusCode)
				return
			}
			require.NoError(t, err)
			_ = conn.Close()
		})
	}
}

func TestServer_CheckOrigin_Wildcard(t *testing.T) {
	srv := httptest.NewServer(New(discardLogger(), []string{"*"}).Handler())
	t.Cleanup(srv.Close)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), http.Header{"Origin": {"http://anywhere.example"}})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	require.NoError(t, err)
	_ = conn.Close()
}
