package vision

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-redlight/pkg/protocol"
)

// Publisher ships detection frames to the arbiter over a websocket.
type Publisher struct {
	url string

	ws      *websocket.Conn
	wsMutex sync.Mutex
}

// NewPublisher creates a publisher for the arbiter at the given
// websocket URL, e.g. ws://localhost:8090/ws/detections.
func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// Connect dials the arbiter. Call again after Close to reconnect.
func (p *Publisher) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(p.url, nil)
	if err != nil {
		return fmt.Errorf("arbiter connect failed: %w", err)
	}

	p.wsMutex.Lock()
	p.ws = conn
	p.wsMutex.Unlock()
	return nil
}

// Publish sends one frame's detections. An empty frame is still sent:
// the arbiter needs to know the player left the view.
func (p *Publisher) Publish(frame protocol.DetectionsData) error {
	msg, err := protocol.NewMessage(protocol.TypeDetections, frame)
	if err != nil {
		return fmt.Errorf("encode detections: %w", err)
	}
	data, err := msg.Bytes()
	if err != nil {
		return fmt.Errorf("encode detections: %w", err)
	}

	p.wsMutex.Lock()
	defer p.wsMutex.Unlock()

	if p.ws == nil {
		return fmt.Errorf("not connected")
	}

	p.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := p.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("publish detections: %w", err)
	}
	return nil
}

// Close closes the connection
func (p *Publisher) Close() {
	p.wsMutex.Lock()
	defer p.wsMutex.Unlock()
	if p.ws != nil {
		p.ws.Close()
		p.ws = nil
	}
}
