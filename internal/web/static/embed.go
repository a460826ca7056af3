// Package static holds the embedded review viewer.
package static

import _ "embed"

// Viewer is the single-page report viewer served at the root path.
//
//go:embed viewer.html
var Viewer []byte
