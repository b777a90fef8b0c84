// Package protocol defines the websocket message types exchanged
// between the detector, the arbiter, and state observers.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageType identifies the type of websocket message
type MessageType string

const (
	// Detector → Arbiter messages
	TypeDetections MessageType = "detections" // One camera frame's bounding boxes

	// Arbiter → Observer messages
	TypeState MessageType = "state" // Phase/result change

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all websocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Detector → Arbiter
// =============================================================================

// DetectionData is one bounding box within a frame. Coordinates and
// sizes are pixels in the detector's image space.
type DetectionData struct {
	ClassID int     `json:"class_id"`
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	SizeX   float64 `json:"size_x"`
	SizeY   float64 `json:"size_y"`
}

// DetectionsData is one camera frame's worth of detections. Frames may
// be empty.
type DetectionsData struct {
	FrameID    uint64          `json:"frame_id,omitempty"`
	CapturedAt int64           `json:"captured_at,omitempty"` // Unix milliseconds
	Detections []DetectionData `json:"detections"`
}

// =============================================================================
// Arbiter → Observers
// =============================================================================

// StateData announces a phase change (and the result at game over).
type StateData struct {
	Session        string  `json:"session"`
	Phase          string  `json:"phase"`
	Result         string  `json:"result,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}
