package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBar(t *testing.T) {
	bar, err := ParseBar([]byte(`{"symbol":"SPY","close":512.3,"time":"2026-01-09T21:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, "SPY", bar.Symbol)
	assert.Equal(t, 512.3, bar.Close)

	_, err = ParseBar([]byte(`{"symbol":"SPY","close":0}`))
	assert.Error(t, err, "non-positive close must be rejected")

	_, err = ParseBar([]byte(`not json`))
	assert.Error(t, err)
}

func TestBarFeed_ReceivesBars(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Expect the subscribe request first.
		var sub subscribeMsg
		if err := conn.ReadJSON(&sub); err != nil || sub.Op != "subscribe" {
			return
		}
		_ = conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"symbol":"SPY","close":500.5,"time":"2026-01-09T21:00:00Z"}`))
		// Hold the connection open until the client walks away.
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	bars := make(chan Bar, 1)
	feed := NewBarFeed(wsURL, "test-key", []string{"SPY"}, func(b Bar) { bars <- b })
	require.NoError(t, feed.Start())
	defer feed.Stop()

	select {
	case bar := <-bars:
		assert.Equal(t, "SPY", bar.Symbol)
		assert.Equal(t, 500.5, bar.Close)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for bar")
	}
}

func TestBarFeed_RequiresURL(t *testing.T) {
	feed := NewBarFeed("", "", []string{"SPY"}, nil)
	assert.Error(t, feed.Start())
}
