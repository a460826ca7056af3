package mysql

import (
	"math"
	"testing"
)

func TestVectorCodecRoundTrip(t *testing.T) {
	vector := []float32{0, 1, -1, 0.5, math.Pi, -42.42, math.MaxFloat32}

	blob := vectorToBytes(vector)
	if len(blob) != len(vector)*4 {
		t.Fatalf("expected %d bytes, got %d", len(vector)*4, len(blob))
	}

	got, err := bytesToVector(blob)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(got) != len(vector) {
		t.Fatalf("expected %d floats, got %d", len(vector), len(got))
	}
	for i := range vector {
		if got[i] != vector[i] {
			t.Errorf("element %d: expected %v, got %v", i, vector[i], got[i])
		}
	}
}

func TestBytesToVector_InvalidLength(t *testing.T) {
	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for blob length not divisible by 4")
	}
}

func TestBytesToVector_Empty(t *testing.T) {
	got, err := bytesToVector(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty vector, got %v", got)
	}
}
