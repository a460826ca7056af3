package imaging

import (
	"image/color"
	"testing"
)

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		name     string
		hash1    uint64
		hash2    uint64
		expected int
	}{
		{"identical", 0x0, 0x0, 0},
		{"completely different", 0xFFFFFFFFFFFFFFFF, 0x0, 64},
		{"one bit different", 0x1, 0x0, 1},
		{"four bits different", 0xF, 0x0, 4},
		{"half different", 0xFFFFFFFF00000000, 0x0, 32},
		{"alternating", 0xAAAAAAAAAAAAAAAA, 0x5555555555555555, 64},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := HammingDistance(tc.hash1, tc.hash2)
			if result != tc.expected {
				t.Errorf("HammingDistance(%x, %x) = %d; want %d",
					tc.hash1, tc.hash2, result, tc.expected)
			}
		})
	}
}

func TestSameImage(t *testing.T) {
	tests := []struct {
		name      string
		hash1     uint64
		hash2     uint64
		threshold int
		expected  bool
	}{
		{"identical at 0", 0x0, 0x0, 0, true},
		{"10 bits apart at 10", 0x0, 0x3FF, 10, true},
		{"11 bits apart at 10", 0x0, 0x7FF, 10, false},
		{"opposite at 10", 0xFFFFFFFFFFFFFFFF, 0x0, 10, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := SameImage(tc.hash1, tc.hash2, tc.threshold)
			if result != tc.expected {
				t.Errorf("SameImage(%x, %x, %d) = %v; want %v",
					tc.hash1, tc.hash2, tc.threshold, result, tc.expected)
			}
		})
	}
}

func TestDHash_Consistency(t *testing.T) {
	data := encodeJPEG(createGradientImage(100, 100))

	first, err := DHash(data)
	if err != nil {
		t.Fatalf("first DHash failed: %v", err)
	}
	second, err := DHash(data)
	if err != nil {
		t.Fatalf("second DHash failed: %v", err)
	}

	if first != second {
		t.Errorf("hash should be deterministic: %016x vs %016x", first, second)
	}
}

func TestDHash_GradientNonZero(t *testing.T) {
	// A horizontal gradient brightens left to right, so every row's
	// comparisons point the same way and the hash cannot be zero.
	hash, err := DHash(encodeJPEG(createGradientImage(100, 100)))
	if err != nil {
		t.Fatalf("DHash failed: %v", err)
	}

	if hash == 0 {
		t.Error("gradient image should produce a non-zero hash")
	}
}

func TestDHash_RecompressedCopyStaysClose(t *testing.T) {
	img := createGradientImage(120, 90)

	jpegHash, err := DHash(encodeJPEG(img))
	if err != nil {
		t.Fatalf("DHash of jpeg failed: %v", err)
	}
	pngHash, err := DHash(encodePNG(img))
	if err != nil {
		t.Fatalf("DHash of png failed: %v", err)
	}

	if d := HammingDistance(jpegHash, pngHash); d > 10 {
		t.Errorf("recompressed copy drifted %d bits; want <= 10", d)
	}
}

func TestDHash_FormatAgnostic(t *testing.T) {
	// Same pixels at different encodings should be treated as the same
	// picture by the duplicate check.
	img := createTestImage(80, 80, color.RGBA{200, 180, 160, 255})

	a, err := DHash(encodeJPEG(img))
	if err != nil {
		t.Fatalf("DHash failed: %v", err)
	}
	b, err := DHash(encodePNG(img))
	if err != nil {
		t.Fatalf("DHash failed: %v", err)
	}

	if !SameImage(a, b, 10) {
		t.Errorf("same picture should match across formats: %016x vs %016x", a, b)
	}
}

func TestDHash_InvalidImage(t *testing.T) {
	if _, err := DHash([]byte("not an image")); err == nil {
		t.Error("DHash should fail for invalid image data")
	}
}
