package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultBithumbWSURL  = "wss://pubwss.bithumb.com/pub/ws"
	bithumbWSReadTimeout = 30 * time.Second
	bithumbWSMaxRetries  = 10
)

// Tick is one live trade-price observation from the domestic feed.
type Tick struct {
	Symbol string
	Price  float64
	At     time.Time
}

// BithumbWSWorker streams live ticker updates for a fixed symbol set.
// Reconnects automatically with exponential backoff.
type BithumbWSWorker struct {
	wsURL    string
	symbols  []string
	tickChan chan<- Tick

	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewBithumbWSWorker creates a worker that publishes ticks for the given
// markets, e.g. []string{"BTC_KRW", "XRP_KRW"}.
func NewBithumbWSWorker(cfg *Config, symbols []string, tickChan chan<- Tick) *BithumbWSWorker {
	wsURL := cfg.API.Bithumb.WSURL
	if wsURL == "" {
		wsURL = defaultBithumbWSURL
	}
	return &BithumbWSWorker{
		wsURL:    wsURL,
		symbols:  symbols,
		tickChan: tickChan,
	}
}

// Connect starts the WebSocket connection with automatic reconnection
func (w *BithumbWSWorker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.connectionLoop(ctx)

	return nil
}

func (w *BithumbWSWorker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Bithumb WS panic recovered", slog.Any("panic", r))
		}
	}()

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			slog.Info("Bithumb WS connection loop stopped")
			return
		default:
		}

		err := w.connect(ctx)
		if err != nil {
			slog.Warn("Bithumb WS connection failed",
				slog.Any("error", err),
				slog.Int("retry", retryCount),
			)

			delay := CalculateBackoff(retryCount)
			retryCount++
			if retryCount > bithumbWSMaxRetries {
				retryCount = 0
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retryCount = 0
		w.readLoop(ctx)
	}
}

func (w *BithumbWSWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	header := make(http.Header)
	header.Add("User-Agent", DefaultUserAgent)

	conn, _, err := dialer.DialContext(ctx, w.wsURL, header)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	if err := w.subscribe(); err != nil {
		w.closeConnection()
		return fmt.Errorf("subscribe failed: %w", err)
	}

	slog.Info("Bithumb WS connected", slog.Int("symbols", len(w.symbols)))
	return nil
}

type bithumbWSSubscribe struct {
	Type      string   `json:"type"`
	Symbols   []string `json:"symbols"`
	TickTypes []string `json:"tickTypes"`
}

func (w *BithumbWSWorker) subscribe() error {
	req := bithumbWSSubscribe{
		Type:      "ticker",
		Symbols:   w.symbols,
		TickTypes: []string{"24H"},
	}
	msgBytes, err := json.Marshal(req)
	if err != nil {
		return err
	}
	return w.threadSafeWrite(websocket.TextMessage, msgBytes)
}

func (w *BithumbWSWorker) threadSafeWrite(messageType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.RLock()
	conn := w.conn
	w.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("connection is nil")
	}
	return conn.WriteMessage(messageType, data)
}

func (w *BithumbWSWorker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()

		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(bithumbWSReadTimeout))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Bithumb WS read error", slog.Any("error", err))
			}
			w.closeConnection()
			return
		}

		w.handleMessage(message)
	}
}

type bithumbWSMessage struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Content struct {
		Symbol     string `json:"symbol"`
		ClosePrice string `json:"closePrice"`
	} `json:"content"`
}

func (w *BithumbWSWorker) handleMessage(message []byte) {
	var msg bithumbWSMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}

	// Subscription acks carry a status field instead of content.
	if msg.Status != "" {
		if msg.Status != "0000" {
			slog.Warn("Bithumb WS subscription rejected", slog.String("status", msg.Status))
		}
		return
	}

	if msg.Type != "ticker" || msg.Content.Symbol == "" {
		return
	}

	price, err := strconv.ParseFloat(msg.Content.ClosePrice, 64)
	if err != nil || price <= 0 {
		return
	}

	if w.tickChan != nil {
		select {
		case w.tickChan <- Tick{Symbol: msg.Content.Symbol, Price: price, At: time.Now()}:
		default:
			slog.Warn("Bithumb WS tick channel full, dropping data")
		}
	}
}

func (w *BithumbWSWorker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}

// Disconnect closes the connection
func (w *BithumbWSWorker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
	slog.Info("Bithumb WS disconnected")
}

// IsConnected returns connection status
func (w *BithumbWSWorker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}
