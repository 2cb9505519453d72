// Package blur applies the box blur used for previews and rendered frames.
package blur

import (
	"errors"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// KernelSize maps a strength to the odd kernel edge length 2*strength+1,
// never smaller than 1.
func KernelSize(strength int) int {
	return max(1, 2*strength+1)
}

// ClampStrength limits strength to [0, maxStrength].
func ClampStrength(strength, maxStrength int) int {
	if maxStrength < 0 {
		maxStrength = 0
	}
	return min(max(strength, 0), maxStrength)
}

// Radius converts a kernel edge length into the box radius.
func Radius(kernel int) int {
	if kernel <= 1 {
		return 0
	}
	return (kernel - 1) / 2
}

// Apply blurs img with a kernel x kernel box average. A kernel of 1 or less
// returns an unmodified copy.
func Apply(img image.Image, kernel int) *image.RGBA {
	radius := Radius(kernel)
	if radius == 0 {
		return clone.AsRGBA(img)
	}
	return blur.Box(img, float64(radius))
}

// Preview blurs img and downsizes it to maxWidth, keeping the aspect ratio.
func Preview(img image.Image, kernel, maxWidth int) *image.RGBA {
	out := Apply(img, kernel)
	bounds := out.Bounds()
	if maxWidth <= 0 || bounds.Dx() <= maxWidth {
		return out
	}
	height := max(1, bounds.Dy()*maxWidth/bounds.Dx())
	return transform.Resize(out, maxWidth, height, transform.Linear)
}

// SavePNG writes img to path.
func SavePNG(path string, img image.Image) error {
	if img == nil {
		return errors.New("save preview: nil image")
	}
	return imgio.Save(path, img, imgio.PNGEncoder())
}
