package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/metrics"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
)

// StreamClient maintains a WebSocket connection to a push-based odds feed
// and folds line movements into the quote cache between polls.
type StreamClient struct {
	url             string
	cache           *QuoteCache
	conn            *websocket.Conn
	mu              sync.RWMutex
	isConnected     bool
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *logrus.Logger
}

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// streamMessage represents one odds update pushed by the feed
type streamMessage struct {
	Type         string `json:"type"`
	GameID       string `json:"game_id"`
	Market       string `json:"market"`
	Provider     string `json:"provider"`
	Side         string `json:"side"`
	AmericanOdds int    `json:"american_odds"`
	CapturedAt   string `json:"captured_at"`
}

// NewStreamClient creates a new stream client
func NewStreamClient(url string, cache *QuoteCache, logger *logrus.Logger) *StreamClient {
	return &StreamClient{
		url:             url,
		cache:           cache,
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// Connect establishes the WebSocket connection
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	s.logger.WithField("url", s.url).Info("Connecting to odds stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()

	return nil
}

// Run connects and consumes the stream until the context is cancelled,
// reconnecting with exponential backoff on failure.
func (s *StreamClient) Run(ctx context.Context) error {
	backoff := s.reconnectConfig.InitialBackoff
	retries := 0

	for {
		if err := s.Connect(ctx); err != nil {
			retries++
			if s.reconnectConfig.MaxRetries > 0 && retries > s.reconnectConfig.MaxRetries {
				return fmt.Errorf("stream reconnect attempts exhausted: %w", err)
			}

			s.logger.WithFields(logrus.Fields{
				"attempt": retries,
				"backoff": backoff.String(),
				"error":   err.Error(),
			}).Warn("Stream connect failed, retrying")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}

			backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
			if backoff > s.reconnectConfig.MaxBackoff {
				backoff = s.reconnectConfig.MaxBackoff
			}
			continue
		}

		// Connected, reset backoff
		backoff = s.reconnectConfig.InitialBackoff
		retries = 0

		err := s.readMessages(ctx)
		s.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		metrics.StreamReconnectsTotal.Inc()
		s.logger.WithField("error", fmt.Sprintf("%v", err)).Warn("Stream disconnected, reconnecting")
	}
}

// readMessages reads messages from the WebSocket connection until it fails
func (s *StreamClient) readMessages(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var raw json.RawMessage
		if err := s.conn.ReadJSON(&raw); err != nil {
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()
			return err
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		if err := s.handleMessage(raw); err != nil {
			s.logger.WithField("error", err.Error()).Warn("Dropping malformed stream message")
		}
	}
}

// handleMessage folds one odds update into the quote cache
func (s *StreamClient) handleMessage(raw json.RawMessage) error {
	var msg streamMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("failed to parse stream message: %w", err)
	}

	if msg.Type != "odds_update" {
		return nil
	}
	if msg.GameID == "" || msg.Provider == "" || msg.AmericanOdds == 0 {
		return fmt.Errorf("incomplete odds update for game %q", msg.GameID)
	}

	capturedAt, err := time.Parse(time.RFC3339, msg.CapturedAt)
	if err != nil {
		capturedAt = time.Now().UTC()
	}

	market := models.MarketType(msg.Market)
	if market == "" {
		market = models.MarketTypeMoneyline
	}

	s.cache.Append(msg.GameID, market, []models.Quote{{
		ProviderID:   msg.Provider,
		Side:         models.Side(msg.Side),
		AmericanOdds: msg.AmericanOdds,
		CapturedAt:   capturedAt,
	}})

	return nil
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	s.isConnected = false
	return s.conn.Close()
}
