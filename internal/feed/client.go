package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/karen-369/spark/internal/infra/metrics"
	"github.com/karen-369/spark/pkg/model"
	"github.com/rs/zerolog"
)

const (
	pongWait       = 30 * time.Second
	pingPeriod     = 10 * time.Second
	reconnectDelay = time.Second
)

const (
	EventSnapshot = "snapshot"
	EventUpsert   = "upsert"
	EventRemove   = "remove"
)

var ErrUnknownEvent = errors.New("unknown feed event")

// Event is one message of the upstream order feed.
//
//	{"type":"snapshot","orders":[...]}
//	{"type":"upsert","order":{...}}
//	{"type":"remove","id":"..."}
type Event struct {
	Type   string        `json:"type"`
	Orders []model.Order `json:"orders,omitempty"`
	Order  *model.Order  `json:"order,omitempty"`
	ID     string        `json:"id,omitempty"`
}

// Sink receives decoded feed events. *store.Store implements it.
type Sink interface {
	Replace(orders []model.Order)
	Upsert(o model.Order)
	Remove(id string) bool
}

type Client struct {
	url    string
	sink   Sink
	dialer *websocket.Dialer
	logger zerolog.Logger
}

func NewClient(url string, sink Sink, logger zerolog.Logger) *Client {
	return &Client{
		url:    url,
		sink:   sink,
		dialer: websocket.DefaultDialer,
		logger: logger.With().Str("component", "feed").Str("url", url).Logger(),
	}
}

// Run connects to the feed and applies its events until ctx is done,
// reconnecting after every disconnect.
func (c *Client) Run(ctx context.Context) error {
	for {
		err := c.serve(ctx)
		if ctx.Err() != nil {
			c.logger.Info().Msg("feed stopped")
			return nil
		}
		metrics.FeedReconnectsTotal.Inc()
		c.logger.Warn().Err(err).Msg("feed disconnected; reconnecting")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) serve(ctx context.Context) error {
	ws, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer ws.Close()
	c.logger.Info().Msg("feed connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				_ = ws.Close()
				return
			case <-ticker.C:
				deadline := time.Now().Add(pingPeriod)
				if err := ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			}
		}
	}()

	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		if err := c.Apply(raw); err != nil {
			metrics.FeedBadEventsTotal.Inc()
			c.logger.Warn().Err(err).Msg("skipping feed event")
		}
	}
}

// Apply decodes one raw event and hands it to the sink.
func (c *Client) Apply(raw []byte) error {
	var ev Event
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	switch ev.Type {
	case EventSnapshot:
		c.sink.Replace(c.validSnapshot(ev.Orders))
	case EventUpsert:
		if ev.Order == nil || ev.Order.ID == "" {
			return fmt.Errorf("upsert without order id")
		}
		c.sink.Upsert(*ev.Order)
	case EventRemove:
		if ev.ID == "" {
			return fmt.Errorf("remove without id")
		}
		c.sink.Remove(ev.ID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}

// validSnapshot drops orders without an id and every repeat of an id after
// its first occurrence.
func (c *Client) validSnapshot(orders []model.Order) []model.Order {
	seen := make(map[string]struct{}, len(orders))
	valid := orders[:0:0]
	for i, o := range orders {
		if o.ID == "" {
			c.skipOrder(i, o.ID, "missing id")
			continue
		}
		if _, dup := seen[o.ID]; dup {
			c.skipOrder(i, o.ID, "repeated id")
			continue
		}
		seen[o.ID] = struct{}{}
		valid = append(valid, o)
	}
	return valid
}

func (c *Client) skipOrder(index int, id, reason string) {
	metrics.FeedSkippedOrdersTotal.Inc()
	c.logger.Warn().Int("index", index).Str("order", id).Str("reason", reason).Msg("skipping snapshot order")
}
