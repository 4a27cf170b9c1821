package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/karen-369/spark/internal/infra/metrics"
	"github.com/karen-369/spark/pkg/model"
	"github.com/rs/zerolog"
)

const (
	writeWait           = 10 * time.Second
	pongWait            = 60 * time.Second
	pingPeriod          = (pongWait * 9) / 10
	maxMessageSize      = 64 * 1024
	defaultSendBuf      = 64
	defaultPublishBuf   = 1024
	maxConsecutiveDrops = 50
)

// LadderUpdate is the push payload for a rebuilt ladder view.
type LadderUpdate struct {
	Type  string           `json:"type"` // "ladder"
	Topic string           `json:"topic"`
	Seq   uint64           `json:"seq"`
	Ts    int64            `json:"ts"` // unix ms
	View  model.LadderView `json:"view"`
}

type publishMsg struct {
	Topic string
	Data  []byte
}

type subscription struct {
	client *Client
	topic  string
}

// Hub manages clients, subscriptions and publishes. Every topic keeps its
// last message so that new subscribers start from the current view.
type Hub struct {
	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	publish     chan publishMsg
	// closed when Run returns
	done chan struct{}

	clients map[*Client]struct{}
	topics  map[string]map[*Client]struct{}
	last    map[string][]byte

	sendBuf      int
	clientCount  atomic.Int64
	publishDrops atomic.Uint64

	logger zerolog.Logger
}

type Client struct {
	id     string
	wallet string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	subscribed map[string]struct{}

	// consecutive drops; the client is evicted past maxConsecutiveDrops
	drops int
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		publish:     make(chan publishMsg, defaultPublishBuf),
		done:        make(chan struct{}),
		clients:     make(map[*Client]struct{}),
		topics:      make(map[string]map[*Client]struct{}),
		last:        make(map[string][]byte),
		sendBuf:     defaultSendBuf,
		logger:      logger.With().Str("component", "ws_hub").Logger(),
	}
}

// Run runs the hub event loop until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info().Msg("ws hub started")
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setClientCount()

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; !ok {
				continue
			}
			subs := h.topics[sub.topic]
			if subs == nil {
				subs = make(map[*Client]struct{})
				h.topics[sub.topic] = subs
			}
			subs[sub.client] = struct{}{}
			sub.client.subscribed[sub.topic] = struct{}{}
			if data, ok := h.last[sub.topic]; ok {
				h.deliver(sub.client, data)
			}

		case sub := <-h.unsubscribe:
			h.leave(sub.client, sub.topic)

		case p := <-h.publish:
			h.last[p.Topic] = p.Data
			for c := range h.topics[p.Topic] {
				h.deliver(c, p.Data)
			}

		case <-ctx.Done():
			h.logger.Info().Msg("ws hub shutting down")
			for c := range h.clients {
				close(c.send)
				_ = c.conn.Close()
				delete(h.clients, c)
			}
			h.setClientCount()
			return
		}
	}
}

// enqueue hands v to the hub loop, or reports false once the hub has stopped.
func enqueue[T any](h *Hub, ch chan T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
		c.drops = 0
	default:
		h.publishDrops.Add(1)
		metrics.WSPublishDropsTotal.Inc()
		c.drops++
		if c.drops > maxConsecutiveDrops {
			h.logger.Warn().Str("client", c.id).Int("drops", c.drops).Msg("evicting slow client")
			h.drop(c)
			_ = c.conn.Close()
		}
	}
}

func (h *Hub) leave(c *Client, topic string) {
	if subs := h.topics[topic]; subs != nil {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	delete(c.subscribed, topic)
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	for t := range c.subscribed {
		h.leave(c, t)
	}
	close(c.send)
	h.setClientCount()
}

func (h *Hub) setClientCount() {
	h.clientCount.Store(int64(len(h.clients)))
	metrics.WSClients.Set(float64(len(h.clients)))
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin is not checked; access is gated by the wallet session token
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and registers a client for wallet.
// Initial topics can be passed as ?topics=BTC-USDC,ETH-USDC
func ServeWS(h *Hub, wallet string, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}

	client := &Client{
		id:         uuid.NewString(),
		wallet:     wallet,
		hub:        h,
		conn:       conn,
		send:       make(chan []byte, h.sendBuf),
		subscribed: make(map[string]struct{}),
	}

	if !enqueue(h, h.register, client) {
		_ = conn.Close()
		return
	}
	if s := r.URL.Query().Get("topics"); s != "" {
		for _, topic := range strings.Split(s, ",") {
			if topic = strings.TrimSpace(topic); topic != "" {
				enqueue(h, h.subscribe, subscription{client: client, topic: topic})
			}
		}
	}
	h.logger.Debug().Str("client", client.id).Str("wallet", wallet).Msg("client connected")

	go client.writePump()
	go client.readPump()
}

// readPump turns client commands into subscribe/unsubscribe requests.
func (c *Client) readPump() {
	defer func() {
		enqueue(c.hub, c.hub.unregister, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn().Err(err).Str("client", c.id).Msg("read error")
			}
			return
		}

		var cmd struct {
			Type  string `json:"type"`  // "subscribe" | "unsubscribe"
			Topic string `json:"topic"` // e.g. "BTC-USDC"
		}
		if err := json.Unmarshal(message, &cmd); err != nil || cmd.Topic == "" {
			c.hub.logger.Debug().Str("client", c.id).Msg("invalid client message")
			continue
		}

		switch cmd.Type {
		case "subscribe":
			enqueue(c.hub, c.hub.subscribe, subscription{client: c, topic: cmd.Topic})
		case "unsubscribe":
			enqueue(c.hub, c.hub.unsubscribe, subscription{client: c, topic: cmd.Topic})
		}
	}
}

// writePump serializes all writes to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// PublishLadder publishes a rebuilt view to subscribers of topic.
// It never blocks; when the publish buffer is full the view is dropped.
func (h *Hub) PublishLadder(topic string, view model.LadderView) {
	b, err := json.Marshal(LadderUpdate{
		Type:  "ladder",
		Topic: topic,
		Seq:   nextSeq(topic),
		Ts:    time.Now().UnixMilli(),
		View:  view,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("topic", topic).Msg("marshal ladder")
		return
	}

	select {
	case h.publish <- publishMsg{Topic: topic, Data: b}:
	default:
		h.publishDrops.Add(1)
		metrics.WSPublishDropsTotal.Inc()
		h.logger.Warn().Str("topic", topic).Msg("publish channel full, dropping ladder")
	}
}

// Stats returns the connected client count and publish drops.
func (h *Hub) Stats() (clients int, drops uint64) {
	return int(h.clientCount.Load()), h.publishDrops.Load()
}
