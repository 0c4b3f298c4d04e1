package testutil

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func TestLidarPayload(t *testing.T) {
	b := LidarPayload([4]float32{1, 2, 3, 4}, [4]float32{-1, 0, 0.5, 9})
	if len(b) != 32 {
		t.Fatalf("len = %d, want 32", len(b))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[16:])); got != -1 {
		t.Errorf("second x = %v, want -1", got)
	}
}

func TestRadarPayloadRecordSize(t *testing.T) {
	b := RadarPayload(RadarPoint{X: 1}, RadarPoint{X: 2})
	if len(b) != 86 {
		t.Fatalf("len = %d, want 86", len(b))
	}
}

func TestRadarPCD(t *testing.T) {
	b := RadarPCD(RadarPoint{X: 1})
	s := string(b)
	if !strings.Contains(s, "POINTS 1\nDATA binary\n") {
		t.Errorf("header missing POINTS/DATA lines:\n%s", s)
	}
	if len(b) != len(RadarHeader(1))+43 {
		t.Errorf("len = %d, want header + 43", len(b))
	}
}
