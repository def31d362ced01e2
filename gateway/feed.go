// Package gateway connects the live runner to an external daily-bar stream.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Bar is one daily close message from the stream.
type Bar struct {
	Symbol string    `json:"symbol"`
	Close  float64   `json:"close"`
	Time   time.Time `json:"time"`
}

// subscribeMsg is the subscription request sent after connecting.
type subscribeMsg struct {
	Op      string   `json:"op"`
	Symbols []string `json:"symbols"`
}

// BarFeed consumes a daily-bar websocket stream with automatic reconnect.
type BarFeed struct {
	URL     string
	APIKey  string
	Symbols []string

	OnBar   func(Bar)
	OnError func(error)

	conn         *websocket.Conn
	mu           sync.Mutex
	ctx          context.Context
	cancel       context.CancelFunc
	maxRetries   int
	retryBackoff time.Duration
}

// NewBarFeed creates a feed client.
func NewBarFeed(url, apiKey string, symbols []string, onBar func(Bar)) *BarFeed {
	return &BarFeed{
		URL:          url,
		APIKey:       apiKey,
		Symbols:      symbols,
		OnBar:        onBar,
		maxRetries:   5,
		retryBackoff: 3 * time.Second,
	}
}

// Start connects and begins delivering bars in a background goroutine.
func (f *BarFeed) Start() error {
	if f.URL == "" {
		return fmt.Errorf("gateway: feed URL is required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	f.ctx = ctx
	f.cancel = cancel
	go f.run()
	return nil
}

// Stop closes the connection and ends the delivery goroutine.
func (f *BarFeed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
	f.mu.Lock()
	if f.conn != nil {
		_ = f.conn.Close()
		f.conn = nil
	}
	f.mu.Unlock()
}

func (f *BarFeed) run() {
	retries := 0
	for {
		select {
		case <-f.ctx.Done():
			return
		default:
		}

		if err := f.connectAndRead(); err != nil {
			if f.ctx.Err() != nil {
				return
			}
			retries++
			f.reportError(fmt.Errorf("feed connection lost (attempt %d): %w", retries, err))
			if f.maxRetries > 0 && retries >= f.maxRetries {
				f.reportError(fmt.Errorf("feed giving up after %d attempts", retries))
				return
			}
			select {
			case <-f.ctx.Done():
				return
			case <-time.After(f.retryBackoff):
			}
			continue
		}
		retries = 0
	}
}

func (f *BarFeed) connectAndRead() error {
	header := http.Header{}
	if f.APIKey != "" {
		header.Set("X-API-Key", f.APIKey)
	}
	conn, _, err := websocket.DefaultDialer.Dial(f.URL, header)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	if err := conn.WriteJSON(subscribeMsg{Op: "subscribe", Symbols: f.Symbols}); err != nil {
		_ = conn.Close()
		return fmt.Errorf("subscribe: %w", err)
	}

	for {
		select {
		case <-f.ctx.Done():
			_ = conn.Close()
			return nil
		default:
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			return err
		}
		bar, err := ParseBar(raw)
		if err != nil {
			f.reportError(err)
			continue
		}
		if f.OnBar != nil {
			f.OnBar(bar)
		}
	}
}

// ParseBar decodes and validates one stream message.
func ParseBar(raw []byte) (Bar, error) {
	var bar Bar
	if err := json.Unmarshal(raw, &bar); err != nil {
		return Bar{}, fmt.Errorf("parse bar: %w", err)
	}
	if bar.Symbol == "" || bar.Close <= 0 {
		return Bar{}, fmt.Errorf("invalid bar: symbol=%q close=%v", bar.Symbol, bar.Close)
	}
	return bar, nil
}

func (f *BarFeed) reportError(err error) {
	if f.OnError != nil {
		f.OnError(err)
		return
	}
	log.Printf("gateway: %v", err)
}
