// Person detector for the Red Light, Green Light arbiter.
//
// Captures camera frames, runs MobileNet-SSD person detection, and
// publishes bounding boxes to the arbiter's websocket ingest endpoint.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-redlight/internal/log"
	"github.com/teslashibe/go-redlight/pkg/protocol"
	"github.com/teslashibe/go-redlight/pkg/vision"
)

func main() {
	arbiterURL := flag.String("arbiter", "ws://localhost:8090/ws/detections", "Arbiter detections websocket URL")
	device := flag.Int("device", 0, "Camera device ID")
	fps := flag.Int("fps", 10, "Target capture rate")
	debug := flag.Bool("debug", false, "Enable verbose debug logging")

	detCfg := vision.DefaultDetectorConfig()
	flag.StringVar(&detCfg.ModelPath, "model", detCfg.ModelPath, "SSD caffemodel path")
	flag.StringVar(&detCfg.ConfigPath, "model-config", detCfg.ConfigPath, "SSD prototxt path")
	confidence := flag.Float64("confidence", float64(detCfg.ConfidenceThresh), "Detection confidence threshold")
	flag.Parse()
	detCfg.ConfidenceThresh = float32(*confidence)

	if *debug {
		log.Init("debug")
	} else {
		log.Init("info")
	}

	detector, err := vision.NewDetector(detCfg)
	if err != nil {
		log.Error("load detector", "error", err)
		os.Exit(1)
	}
	defer detector.Close()

	webcam, err := gocv.OpenVideoCapture(*device)
	if err != nil {
		log.Error("open camera", "device", *device, "error", err)
		os.Exit(1)
	}
	defer webcam.Close()

	publisher := vision.NewPublisher(*arbiterURL)
	defer publisher.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("detector running", "arbiter", *arbiterURL, "device", *device, "fps", *fps)
	if err := run(ctx, webcam, detector, publisher, *fps); err != nil {
		log.Error("detector loop failed", "error", err)
		os.Exit(1)
	}
}

// run is the capture/detect/publish loop. It reconnects to the arbiter
// with backoff when publishing fails.
func run(ctx context.Context, webcam *gocv.VideoCapture, detector *vision.Detector, publisher *vision.Publisher, fps int) error {
	if err := connectWithBackoff(ctx, publisher); err != nil {
		return err
	}

	img := gocv.NewMat()
	defer img.Close()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	var frameID uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if ok := webcam.Read(&img); !ok || img.Empty() {
			log.Warn("camera read failed, skipping frame")
			continue
		}
		capturedAt := time.Now()
		frameID++

		boxes, err := detector.Detect(img)
		if err != nil {
			log.Warn("inference failed", "frame", frameID, "error", err)
			continue
		}

		frame := protocol.DetectionsData{
			FrameID:    frameID,
			CapturedAt: capturedAt.UnixMilli(),
			Detections: boxes,
		}
		if err := publisher.Publish(frame); err != nil {
			log.Warn("publish failed, reconnecting", "error", err)
			publisher.Close()
			if err := connectWithBackoff(ctx, publisher); err != nil {
				return err
			}
		}
	}
}

// connectWithBackoff dials the arbiter until it succeeds or the
// context is cancelled. Backoff doubles from 1s up to 30s.
func connectWithBackoff(ctx context.Context, publisher *vision.Publisher) error {
	backoff := time.Second
	for {
		err := publisher.Connect()
		if err == nil {
			log.Info("connected to arbiter")
			return nil
		}
		log.Warn("arbiter connect failed", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}
