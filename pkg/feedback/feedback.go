// Package feedback wires the game's boundary actions (speech, sound
// cues, the 180 degree turn) to the robot daemon.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/teslashibe/go-redlight/internal/clock"
	"github.com/teslashibe/go-redlight/internal/httpc"
	"github.com/teslashibe/go-redlight/pkg/game"
	"github.com/teslashibe/go-redlight/pkg/robot"
	"github.com/teslashibe/go-redlight/pkg/speech"
)

// Actions implements game.Feedback against real hardware.
type Actions struct {
	speaker       speech.Provider
	actuator      robot.Actuator
	sounds        *SoundPlayer
	clock         clock.Clock
	rotationSpeed float64
}

// New assembles the production feedback actions.
func New(speaker speech.Provider, actuator robot.Actuator, sounds *SoundPlayer, c clock.Clock, rotationSpeed float64) *Actions {
	return &Actions{
		speaker:       speaker,
		actuator:      actuator,
		sounds:        sounds,
		clock:         c,
		rotationSpeed: rotationSpeed,
	}
}

// Speak blocks until the utterance completes.
func (a *Actions) Speak(text string) error {
	return a.speaker.Say(context.Background(), text)
}

// PlaySound triggers the named clip on the daemon.
func (a *Actions) PlaySound(clip game.Clip) error {
	return a.sounds.Play(string(clip))
}

// Rotate180 performs the timed open-loop turn.
func (a *Actions) Rotate180() error {
	return robot.Rotate180(a.clock, a.actuator, a.rotationSpeed)
}

// Verify Actions implements game.Feedback at compile time.
var _ game.Feedback = (*Actions)(nil)

// SoundPlayer triggers named clips on the robot daemon. Clips are
// stored daemon-side; this only names them.
type SoundPlayer struct {
	BaseURL string
	client  *http.Client
}

// NewSoundPlayer creates a player for the daemon at the given base URL.
func NewSoundPlayer(baseURL string) *SoundPlayer {
	return &SoundPlayer{
		BaseURL: baseURL,
		client:  httpc.NewClient(5 * time.Second),
	}
}

// Play triggers the clip and returns once the daemon has accepted it.
func (p *SoundPlayer) Play(name string) error {
	payload, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return fmt.Errorf("marshal sound trigger: %w", err)
	}

	resp, err := p.client.Post(p.BaseURL+"/api/audio/play", "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("sound trigger failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sound trigger returned status %d", resp.StatusCode)
	}
	return nil
}
