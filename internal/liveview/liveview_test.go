package liveview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/logger"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/models"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	dir, err := os.MkdirTemp("", "liveview_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	log, err := logger.NewLogger(dir)
	require.NoError(t, err)
	t.Cleanup(log.Close)
	return log
}

func dialTestServer(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(s.handleWS))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastFrameReachesClient(t *testing.T) {
	s := NewServer(0, newTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(ctx)

	conn := dialTestServer(t, s)

	require.Eventually(t, func() bool { return s.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	s.BroadcastFrame([]byte{0xFF, 0xD8, 0xFF, 0xD9})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"type":"frame"`)
}

func TestBroadcastDetectionsReachesClient(t *testing.T) {
	s := NewServer(0, newTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.hub.Run(ctx)

	conn := dialTestServer(t, s)

	require.Eventually(t, func() bool { return s.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	s.BroadcastDetections([]models.DetectionRecord{
		{Symbology: models.SymbologyQRCode, Payload: "hello", Source: models.SourceCamera},
	})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"type":"detections"`)
	assert.Contains(t, string(msg), `"hello"`)
}

func TestShutdownReleasesClients(t *testing.T) {
	s := NewServer(0, newTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	go s.hub.Run(ctx)

	conn := dialTestServer(t, s)

	require.Eventually(t, func() bool { return s.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	cancel()

	require.Eventually(t, func() bool { return s.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)

	// The read goroutine unregisters the killed connection; that call must
	// return even though the hub loop has exited.
	done := make(chan struct{})
	go func() {
		s.hub.Unregister(conn)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unregister blocked after hub shutdown")
	}
}

func TestBroadcastWithoutClientsDoesNotBlock(t *testing.T) {
	s := NewServer(0, newTestLogger(t))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.BroadcastFrame([]byte("frame"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked with no connected clients")
	}
}
