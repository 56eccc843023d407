package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeCorrection is emitted after each correction request
	EventTypeCorrection EventType = "correction"
	// EventTypeRequestLog represents a request logging event
	EventTypeRequestLog EventType = "request_log"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
	// EventTypePong answers a client ping
	EventTypePong EventType = "pong"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// CorrectionEvent summarizes one correction. It carries counts only, never
// the submitted or corrected text.
type CorrectionEvent struct {
	RequestID       string  `json:"request_id"`
	ClientIP        string  `json:"client_ip"`
	SpellCheck      bool    `json:"spell_check"`
	GrammarCheck    bool    `json:"grammar_check"`
	InputLength     int     `json:"input_length"`
	SpellingChanges int     `json:"spelling_changes"`
	GrammarChanges  int     `json:"grammar_changes"`
	CacheHit        bool    `json:"cache_hit"`
	ProcessingMS    float64 `json:"processing_ms"`
}

// RequestLogEvent represents a request logging event
type RequestLogEvent struct {
	RequestID  string            `json:"request_id"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	StatusCode int               `json:"status_code"`
	ClientIP   string            `json:"client_ip"`
	UserAgent  string            `json:"user_agent,omitempty"`
	DurationMS float64           `json:"duration_ms"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action    string `json:"action"` // "connected", "disconnected"
	ClientID  string `json:"client_id"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SubscriptionRequest represents a client subscription request
type SubscriptionRequest struct {
	Events []EventType  `json:"events"`
	Filter *EventFilter `json:"filter,omitempty"`
}

// EventFilter narrows the events a subscribed client receives
type EventFilter struct {
	ExcludeHealth bool     `json:"exclude_health,omitempty"`
	PathPrefixes  []string `json:"path_prefixes,omitempty"`
	OnlyChanged   bool     `json:"only_changed,omitempty"` // skip corrections with no changes
}

// Client represents a WebSocket client connection
type Client struct {
	ID           string
	Conn         *websocket.Conn
	Send         chan Event
	Subscription *SubscriptionRequest
	ConnectedAt  time.Time
	LastPing     time.Time
	IP           string
	UserAgent    string
}
