// Package robot drives the mobile base through the robot daemon's HTTP
// API. The game only ever commands rotation: a timed open-loop 180
// degree turn at a fixed angular speed, followed by a zero-velocity
// stop.
package robot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/teslashibe/go-redlight/internal/clock"
	"github.com/teslashibe/go-redlight/internal/httpc"
)

// Actuator sends velocity commands to the mobile base.
type Actuator interface {
	// SetVelocity commands the base. linear is m/s along x, angular is
	// rad/s about z. Zero both to stop.
	SetVelocity(linear, angular float64) error
}

// Daemon is an Actuator backed by the on-robot daemon HTTP API.
type Daemon struct {
	BaseURL string
	client  *http.Client
}

// NewDaemon creates an actuator for the daemon at the given base URL.
func NewDaemon(baseURL string) *Daemon {
	return &Daemon{
		BaseURL: baseURL,
		client:  httpc.NewClient(2 * time.Second),
	}
}

// SetVelocity posts a velocity command to the daemon.
func (d *Daemon) SetVelocity(linear, angular float64) error {
	payload := map[string]float64{
		"linear_x":  linear,
		"angular_z": angular,
	}
	return d.post("/api/cmd_vel", payload)
}

func (d *Daemon) post(path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal velocity command: %w", err)
	}

	resp, err := d.client.Post(d.BaseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("velocity command failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("velocity command returned status %d", resp.StatusCode)
	}
	return nil
}

var _ Actuator = (*Daemon)(nil)

// Rotate180 turns the base half a revolution open-loop: command the
// given angular speed, hold for pi/speed seconds on the injected clock,
// then stop. No cancellation; once started it runs to completion.
func Rotate180(c clock.Clock, a Actuator, speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("rotate: angular speed must be positive, got %v", speed)
	}
	if err := a.SetVelocity(0, speed); err != nil {
		return fmt.Errorf("rotate: start: %w", err)
	}
	c.Sleep(time.Duration(math.Pi / speed * float64(time.Second)))
	if err := a.SetVelocity(0, 0); err != nil {
		return fmt.Errorf("rotate: stop: %w", err)
	}
	return nil
}
