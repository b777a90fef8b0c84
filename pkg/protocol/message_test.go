package protocol

import (
	"testing"
)

func TestMessage_DetectionsRoundTrip(t *testing.T) {
	frame := DetectionsData{
		FrameID: 42,
		Detections: []DetectionData{
			{ClassID: 15, CenterX: 100, CenterY: 120, SizeX: 50, SizeY: 80},
			{ClassID: 7, CenterX: 10, CenterY: 20, SizeX: 5, SizeY: 8},
		},
	}

	msg, err := NewMessage(TypeDetections, frame)
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	data, err := msg.Bytes()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	parsed, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.Type != TypeDetections {
		t.Errorf("type = %q, want %q", parsed.Type, TypeDetections)
	}

	var got DetectionsData
	if err := parsed.ParseData(&got); err != nil {
		t.Fatalf("parse data: %v", err)
	}
	if got.FrameID != 42 || len(got.Detections) != 2 {
		t.Errorf("frame = %+v, want 2 detections in frame 42", got)
	}
	if got.Detections[0].SizeY != 80 {
		t.Errorf("size_y = %v, want 80", got.Detections[0].SizeY)
	}
}

func TestParseMessage_Invalid(t *testing.T) {
	if _, err := ParseMessage([]byte("not json")); err == nil {
		t.Error("malformed payload must return an error")
	}
}

func TestMessage_NilData(t *testing.T) {
	msg, err := NewMessage(TypePing, nil)
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	var out StateData
	if err := msg.ParseData(&out); err != nil {
		t.Errorf("ParseData on nil data should be a no-op, got %v", err)
	}
}
