package imaging

import "image"

// DHash computes a 64-bit difference hash from encoded image bytes.
// The image is shrunk to 9x8 grayscale and each row contributes 8 bits
// of left-vs-right brightness comparisons. Near-identical images (a
// re-scraped thumbnail, a recompressed copy) land within a few bits of
// each other.
func DHash(data []byte) (uint64, error) {
	img, err := Decode(data)
	if err != nil {
		return 0, err
	}

	// 9 columns give 8 horizontal differences per row.
	gray := grayscale(scale(img, 9, 8))

	var hash uint64
	bit := 63
	for y := range 8 {
		for x := range 8 {
			if gray[x][y] > gray[x+1][y] {
				hash |= 1 << bit
			}
			bit--
		}
	}

	return hash, nil
}

// HammingDistance counts the differing bits between two 64-bit hashes.
func HammingDistance(hash1, hash2 uint64) int {
	xor := hash1 ^ hash2
	distance := 0
	for xor != 0 {
		distance++
		xor &= xor - 1 // Clear lowest set bit
	}
	return distance
}

// SameImage reports whether two hashes are close enough to treat the
// images as the same picture. A threshold of 10 bits catches recompressed
// and slightly rescaled copies without matching genuinely different shots.
func SameImage(hash1, hash2 uint64, threshold int) bool {
	return HammingDistance(hash1, hash2) <= threshold
}

// grayscale converts an image to a 2D array of luma values (0-255),
// indexed [x][y].
func grayscale(img *image.RGBA) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := make([][]float64, width)
	for x := range width {
		gray[x] = make([]float64, height)
		for y := range height {
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma formula.
			gray[x][y] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}

	return gray
}
