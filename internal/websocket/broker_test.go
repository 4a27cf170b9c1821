package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/karen-369/spark/pkg/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, "0xw", w, r)
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readUpdate(t *testing.T, conn *websocket.Conn) LadderUpdate {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var u LadderUpdate
	require.NoError(t, json.Unmarshal(msg, &u))
	return u
}

func TestHubDeliversLastAndNewViews(t *testing.T) {
	hub, url := startHub(t)

	hub.PublishLadder("BTC-USDC", model.LadderView{Pair: "BTC/USDC", Loading: true})

	conn, _, err := websocket.DefaultDialer.Dial(url+"?topics=BTC-USDC", nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readUpdate(t, conn)
	assert.Equal(t, "ladder", first.Type)
	assert.Equal(t, "BTC-USDC", first.Topic)
	assert.True(t, first.View.Loading)

	hub.PublishLadder("ETH-USDC", model.LadderView{Pair: "ETH/USDC"})
	hub.PublishLadder("BTC-USDC", model.LadderView{Pair: "BTC/USDC", Mode: "compact"})

	second := readUpdate(t, conn)
	assert.Equal(t, "BTC-USDC", second.Topic)
	assert.Equal(t, "compact", second.View.Mode)
	assert.Greater(t, second.Seq, first.Seq)
}

func TestHubSubscribeCommand(t *testing.T) {
	hub, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "subscribe", "topic": "UNI-ETH"}))
	require.Eventually(t, func() bool {
		clients, _ := hub.Stats()
		return clients == 1
	}, time.Second, 5*time.Millisecond)

	// delivered either live or as the topic's last view on subscribe
	hub.PublishLadder("UNI-ETH", model.LadderView{Pair: "UNI/ETH"})
	u := readUpdate(t, conn)
	assert.Equal(t, "UNI/ETH", u.View.Pair)
}

func TestServeWSAfterHubStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)
	cancel()
	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	served := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(served)
		ServeWS(hub, "0xw", w, r)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"?topics=BTC-USDC", nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("ServeWS blocked on a stopped hub")
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestReadPumpExitsAfterHubStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, "0xw", w, r)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool {
		clients, _ := hub.Stats()
		return clients == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-hub.done

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	clients, _ := hub.Stats()
	assert.Equal(t, 0, clients)
}

func TestNextSeq(t *testing.T) {
	a := nextSeq("seq-test-a")
	assert.Equal(t, a+1, nextSeq("seq-test-a"))
	assert.Equal(t, uint64(1), nextSeq("seq-test-b"))
}
