package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-redlight/internal/log"
	"github.com/teslashibe/go-redlight/pkg/detect"
	"github.com/teslashibe/go-redlight/pkg/game"
	"github.com/teslashibe/go-redlight/pkg/hub"
	"github.com/teslashibe/go-redlight/pkg/protocol"
)

// StatusResponse is the /api/status payload.
type StatusResponse struct {
	Session        string  `json:"session"`
	Phase          string  `json:"phase"`
	Result         string  `json:"result,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	PlayerMoved    bool    `json:"player_moved"`
	FinishLine     bool    `json:"finish_line"`
	StateObservers int     `json:"state_observers"`
}

// handleStatus returns the current game state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	resp := StatusResponse{
		Session:        s.session,
		Phase:          s.machine.Phase().String(),
		ElapsedSeconds: s.machine.Elapsed().Seconds(),
		PlayerMoved:    s.tracker.Moved(),
		FinishLine:     s.tracker.ReachedFinishLine(),
		StateObservers: s.stateHub.ClientCount(),
	}
	if r := s.machine.Result(); r != game.ResultUnset {
		resp.Result = r.String()
	}
	return c.JSON(resp)
}

// handleStateWS serves the observer state feed. Observers only
// receive; the client read pump exists to detect disconnection.
func (s *Server) handleStateWS(c *websocket.Conn) {
	client := hub.NewClient(s.stateHub, c)
	client.Run()
}

// handleDetectionsWS is the detector's ingest endpoint. Each message
// carries one camera frame's detections; malformed payloads are logged
// and skipped so one bad frame never kills the stream.
func (s *Server) handleDetectionsWS(c *websocket.Conn) {
	log.Info("detector connected", "remote", c.RemoteAddr().String())
	defer log.Info("detector disconnected", "remote", c.RemoteAddr().String())

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Warn("malformed detector message", "error", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeDetections:
			var frame protocol.DetectionsData
			if err := msg.ParseData(&frame); err != nil {
				log.Warn("malformed detections payload", "error", err)
				continue
			}
			s.tracker.Ingest(frameDetections(frame))

		case protocol.TypePing:
			pong, err := protocol.NewMessage(protocol.TypePong, nil)
			if err != nil {
				continue
			}
			if data, err := pong.Bytes(); err == nil {
				c.WriteMessage(websocket.TextMessage, data)
			}

		default:
			log.Warn("unexpected detector message", "type", msg.Type)
		}
	}
}

// frameDetections converts a wire frame into tracker detections.
func frameDetections(frame protocol.DetectionsData) []detect.Detection {
	capturedAt := time.Now()
	if frame.CapturedAt > 0 {
		capturedAt = time.UnixMilli(frame.CapturedAt)
	}

	out := make([]detect.Detection, 0, len(frame.Detections))
	for _, d := range frame.Detections {
		out = append(out, detect.Detection{
			ClassID:   d.ClassID,
			CenterX:   d.CenterX,
			CenterY:   d.CenterY,
			SizeX:     d.SizeX,
			SizeY:     d.SizeY,
			Timestamp: capturedAt,
		})
	}
	return out
}
