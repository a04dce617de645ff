//go:build darwin

package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

var (
	iconIdle    []byte
	iconIdleHi  []byte
	iconSmileHi []byte
	iconOffHi   []byte
	iconCalHi   []byte
)

func init() {
	green := color.RGBA{R: 52, G: 199, B: 89, A: 255}
	gray := color.RGBA{R: 142, G: 142, B: 147, A: 255}
	blue := color.RGBA{R: 0, G: 122, B: 255, A: 255}
	iconIdle = renderFace(22, color.Black, false)
	iconIdleHi = renderFace(44, color.Black, false)
	iconSmileHi = renderFace(44, green, true)
	iconOffHi = renderFace(44, gray, false)
	iconCalHi = renderFace(44, blue, true)
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}

// renderFace draws a filled circle face with two eyes and a mouth. The
// mouth curves up when smiling, stays flat otherwise.
func renderFace(size int, face color.Color, smiling bool) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	s := float64(size)
	cx, cy := s/2, s/2
	r := s/2 - 1

	eyeR := s / 11
	eyeDX := s * 0.18
	eyeY := cy - s*0.14

	mouthY := cy + s*0.18
	mouthHW := s * 0.26
	mouthTh := s / 14

	for y := range size {
		for x := range size {
			fx, fy := float64(x)+0.5, float64(y)+0.5
			if math.Hypot(fx-cx, fy-cy) > r {
				continue
			}
			px := face

			if math.Hypot(fx-(cx-eyeDX), fy-eyeY) <= eyeR ||
				math.Hypot(fx-(cx+eyeDX), fy-eyeY) <= eyeR {
				px = color.Transparent
			}

			dx := fx - cx
			if math.Abs(dx) <= mouthHW {
				my := mouthY
				if smiling {
					// Parabola: lowest in the middle, rising at the edges.
					my = mouthY - (dx/mouthHW)*(dx/mouthHW)*s*0.10 + s*0.05
				}
				if math.Abs(fy-my) <= mouthTh {
					px = color.Transparent
				}
			}

			img.Set(x, y, px)
		}
	}
	return encodePNG(img)
}
