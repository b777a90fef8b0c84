// Package vision runs person detection on camera frames and publishes
// the resulting bounding boxes to the arbiter.
package vision

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-redlight/pkg/protocol"
)

// DetectorConfig holds SSD detector configuration
type DetectorConfig struct {
	ModelPath        string
	ConfigPath       string
	ConfidenceThresh float32
	PersonClassID    int
	InputWidth       int
	InputHeight      int
}

// DefaultDetectorConfig returns production defaults for MobileNet-SSD
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		ModelPath:        "models/mobilenet_ssd.caffemodel",
		ConfigPath:       "models/mobilenet_ssd.prototxt",
		ConfidenceThresh: 0.5,
		PersonClassID:    15, // person in the VOC label set
		InputWidth:       300,
		InputHeight:      300,
	}
}

// Detector runs MobileNet-SSD inference and keeps only person boxes
type Detector struct {
	net       gocv.Net
	config    DetectorConfig
	mu        sync.Mutex
	inputSize image.Point
}

// NewDetector loads the SSD model
func NewDetector(cfg DetectorConfig) (*Detector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}
	if _, err := os.Stat(cfg.ConfigPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model config not found: %s", cfg.ConfigPath)
	}

	net := gocv.ReadNet(cfg.ModelPath, cfg.ConfigPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load SSD model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &Detector{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Detect runs inference on one frame and returns the person boxes in
// pixel coordinates (center + size, matching the wire format).
func (d *Detector) Detect(img gocv.Mat) ([]protocol.DetectionData, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if img.Empty() {
		return nil, fmt.Errorf("empty image")
	}

	imgW := float32(img.Cols())
	imgH := float32(img.Rows())

	// MobileNet-SSD expects 300x300 inputs scaled to [-1, 1]
	blob := gocv.BlobFromImage(img, 1.0/127.5, d.inputSize, gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	return d.parseSSDOutput(output, imgW, imgH), nil
}

// parseSSDOutput parses the SSD output tensor.
// Each detection is 7 floats: [batch, class_id, confidence, x1, y1, x2, y2]
// with corners normalized to [0, 1].
func (d *Detector) parseSSDOutput(output gocv.Mat, imgW, imgH float32) []protocol.DetectionData {
	var detections []protocol.DetectionData

	results := output.Reshape(1, output.Total()/7)
	defer results.Close()

	for i := 0; i < results.Rows(); i++ {
		confidence := results.GetFloatAt(i, 2)
		if confidence < d.config.ConfidenceThresh {
			continue
		}

		classID := int(results.GetFloatAt(i, 1))
		if classID != d.config.PersonClassID {
			continue
		}

		x1 := results.GetFloatAt(i, 3) * imgW
		y1 := results.GetFloatAt(i, 4) * imgH
		x2 := results.GetFloatAt(i, 5) * imgW
		y2 := results.GetFloatAt(i, 6) * imgH

		detections = append(detections, protocol.DetectionData{
			ClassID: classID,
			CenterX: float64((x1 + x2) / 2),
			CenterY: float64((y1 + y2) / 2),
			SizeX:   float64(x2 - x1),
			SizeY:   float64(y2 - y1),
		})
	}

	return detections
}

// Close releases the detector resources
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
