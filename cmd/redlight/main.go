// Red Light, Green Light arbiter.
//
// Runs the game loop against a robot daemon, ingests detection frames
// from the detector over a websocket, and broadcasts phase changes to
// observers.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/teslashibe/go-redlight/internal/clock"
	"github.com/teslashibe/go-redlight/internal/config"
	"github.com/teslashibe/go-redlight/internal/log"
	"github.com/teslashibe/go-redlight/pkg/detect"
	"github.com/teslashibe/go-redlight/pkg/feedback"
	"github.com/teslashibe/go-redlight/pkg/game"
	"github.com/teslashibe/go-redlight/pkg/robot"
	"github.com/teslashibe/go-redlight/pkg/speech"
	"github.com/teslashibe/go-redlight/pkg/web"
)

func main() {
	cfg, debug := parseFlags()

	if debug {
		log.Init("debug")
	} else {
		log.Init("info")
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	session := uuid.New().String()
	log.Info("starting game session",
		"session", session,
		"time_limit", cfg.TimeLimit,
		"listen", cfg.ListenAddr,
		"robot_ip", cfg.RobotIP,
	)

	tracker := detect.NewTracker(cfg.PersonClassID, cfg.MovementThreshold, cfg.FinishLineSizeY)
	scheduler := game.NewScheduler(rand.NewSource(seed), cfg.IntervalMin, cfg.IntervalMax)

	machine := game.New(game.Config{
		Clock:      clock.Real{},
		Tracker:    tracker,
		Scheduler:  scheduler,
		Feedback:   buildFeedback(cfg),
		TimeLimit:  cfg.TimeLimit,
		TickPeriod: cfg.TickPeriod,
	})

	server := web.NewServer(cfg.ListenAddr, session, machine, tracker)
	machine.OnPhaseChange(func(phase game.Phase, result game.Result, elapsed time.Duration) {
		server.BroadcastState(phase, result, elapsed.Seconds())
	})
	server.StartAsync()
	defer server.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := machine.Run(ctx); err != nil {
		log.Error("game loop failed", "error", err)
		os.Exit(1)
	}

	log.Info("game over",
		"session", session,
		"result", machine.Result().String(),
		"elapsed", machine.Elapsed(),
	)
}

// buildFeedback wires speech, sound, and movement to the robot daemon.
// Without a robot IP the game runs headless with no-op feedback.
func buildFeedback(cfg config.Config) game.Feedback {
	if cfg.RobotIP == "" {
		log.Warn("no robot configured, feedback disabled")
		return game.NopFeedback{}
	}

	baseURL := config.RobotAPIURL(cfg.RobotIP)
	return feedback.New(
		speech.NewDaemon(baseURL),
		robot.NewDaemon(baseURL),
		feedback.NewSoundPlayer(baseURL),
		clock.Real{},
		cfg.RotationSpeed,
	)
}

// parseFlags resolves configuration: defaults, then .env/environment,
// then command-line flags.
func parseFlags() (config.Config, bool) {
	godotenv.Load()
	cfg := config.FromEnv()

	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	listen := flag.String("listen", cfg.ListenAddr, "HTTP/websocket listen address")
	robotIP := flag.String("robot-ip", cfg.RobotIP, "Robot daemon IP address (empty disables feedback)")
	seed := flag.Int64("seed", cfg.Seed, "Light scheduler seed (0 derives from the clock)")
	timeLimit := flag.Duration("time-limit", cfg.TimeLimit, "Total game duration")
	movement := flag.Float64("movement-threshold", cfg.MovementThreshold, "Movement threshold in pixels")
	finishLine := flag.Float64("finish-line", cfg.FinishLineSizeY, "Finish line bounding-box height in pixels")
	flag.Parse()

	cfg.ListenAddr = *listen
	cfg.RobotIP = *robotIP
	cfg.Seed = *seed
	cfg.TimeLimit = *timeLimit
	cfg.MovementThreshold = *movement
	cfg.FinishLineSizeY = *finishLine
	return cfg, *debug
}
