// Package config holds the game tunables.
//
// Values are resolved in three layers: compiled defaults, environment
// variables (REDLIGHT_* — a .env file is honored when present), and
// command-line flags applied by the binaries. The resulting Config is
// immutable after startup.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default robot daemon port (velocity, audio, and TTS endpoints).
const DefaultRobotPort = "8000"

// Config is the full set of game tunables.
type Config struct {
	// TimeLimit is the total game duration. Reaching it during a light
	// phase is an immediate loss.
	TimeLimit time.Duration

	// MovementThreshold is the per-delta displacement (pixels) above
	// which motion during red light eliminates the player.
	MovementThreshold float64

	// FinishLineSizeY is the bounding-box height (pixels) at or above
	// which the player counts as having reached the finish line.
	FinishLineSizeY float64

	// IntervalMin and IntervalMax bound each light phase's random duration.
	IntervalMin time.Duration
	IntervalMax time.Duration

	// RotationSpeed is the angular speed (rad/s) of the open-loop
	// 180-degree turn.
	RotationSpeed float64

	// TickPeriod is the control-loop cadence.
	TickPeriod time.Duration

	// PersonClassID is the detector category id of the tracked player.
	PersonClassID int

	// RobotIP is the robot daemon address. Empty disables feedback
	// hardware (speech, sounds, rotation become no-ops).
	RobotIP string

	// ListenAddr is the arbiter's HTTP/websocket listen address.
	ListenAddr string

	// Seed seeds the light scheduler. Zero means derive from the clock.
	Seed int64
}

// Default returns the compiled defaults. The game constants match the
// original robot deployment: 120s limit, 10px movement threshold,
// 400px finish line, 2-5s light phases, 0.5 rad/s turns, 100ms ticks.
func Default() Config {
	return Config{
		TimeLimit:         120 * time.Second,
		MovementThreshold: 10.0,
		FinishLineSizeY:   400.0,
		IntervalMin:       2 * time.Second,
		IntervalMax:       5 * time.Second,
		RotationSpeed:     0.5,
		TickPeriod:        100 * time.Millisecond,
		PersonClassID:     15,
		ListenAddr:        ":8090",
	}
}

// FromEnv returns Default overridden by any REDLIGHT_* environment
// variables that are set.
func FromEnv() Config {
	c := Default()
	c.TimeLimit = envDuration("REDLIGHT_TIME_LIMIT", c.TimeLimit)
	c.MovementThreshold = envFloat("REDLIGHT_MOVEMENT_THRESHOLD", c.MovementThreshold)
	c.FinishLineSizeY = envFloat("REDLIGHT_FINISH_LINE_SIZE_Y", c.FinishLineSizeY)
	c.IntervalMin = envDuration("REDLIGHT_INTERVAL_MIN", c.IntervalMin)
	c.IntervalMax = envDuration("REDLIGHT_INTERVAL_MAX", c.IntervalMax)
	c.RotationSpeed = envFloat("REDLIGHT_ROTATION_SPEED", c.RotationSpeed)
	c.TickPeriod = envDuration("REDLIGHT_TICK_PERIOD", c.TickPeriod)
	c.PersonClassID = envInt("REDLIGHT_PERSON_CLASS_ID", c.PersonClassID)
	c.RobotIP = envString("ROBOT_IP", c.RobotIP)
	c.ListenAddr = envString("REDLIGHT_LISTEN", c.ListenAddr)
	c.Seed = int64(envInt("REDLIGHT_SEED", int(c.Seed)))
	return c
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.TimeLimit <= 0 {
		return fmt.Errorf("config: time limit must be positive, got %v", c.TimeLimit)
	}
	if c.MovementThreshold <= 0 {
		return fmt.Errorf("config: movement threshold must be positive, got %v", c.MovementThreshold)
	}
	if c.FinishLineSizeY <= 0 {
		return fmt.Errorf("config: finish line size must be positive, got %v", c.FinishLineSizeY)
	}
	if c.IntervalMin <= 0 || c.IntervalMax < c.IntervalMin {
		return fmt.Errorf("config: invalid light interval bounds [%v, %v]", c.IntervalMin, c.IntervalMax)
	}
	if c.RotationSpeed <= 0 {
		return fmt.Errorf("config: rotation speed must be positive, got %v", c.RotationSpeed)
	}
	if c.TickPeriod <= 0 {
		return fmt.Errorf("config: tick period must be positive, got %v", c.TickPeriod)
	}
	return nil
}

// RobotAPIURL returns the robot daemon base URL for the given IP.
func RobotAPIURL(robotIP string) string {
	return fmt.Sprintf("http://%s:%s", robotIP, DefaultRobotPort)
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
