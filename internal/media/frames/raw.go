package frames

import (
	"errors"
	"fmt"
	"image"
	"io"
)

// BytesPerPixel is the rawvideo stride for rgba.
const BytesPerPixel = 4

// FrameSize returns the number of bytes in one rgba frame.
func FrameSize(width, height int) int {
	return width * height * BytesPerPixel
}

// RawReader splits a rawvideo rgba stream into frames.
type RawReader struct {
	r      io.Reader
	width  int
	height int
}

// NewRawReader wraps r for frames of the given dimensions.
func NewRawReader(r io.Reader, width, height int) (*RawReader, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raw reader: invalid dimensions %dx%d", width, height)
	}
	return &RawReader{r: r, width: width, height: height}, nil
}

// Next reads the next frame. A clean end of stream returns io.EOF; a
// truncated trailing frame returns io.ErrUnexpectedEOF.
func (r *RawReader) Next() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	if _, err := io.ReadFull(r.r, img.Pix); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return img, nil
}

// RawWriter serialises frames into a rawvideo rgba stream.
type RawWriter struct {
	w      io.Writer
	width  int
	height int
}

// NewRawWriter wraps w for frames of the given dimensions.
func NewRawWriter(w io.Writer, width, height int) (*RawWriter, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raw writer: invalid dimensions %dx%d", width, height)
	}
	return &RawWriter{w: w, width: width, height: height}, nil
}

// Write emits img row by row so sub-images with a wider stride are handled.
func (w *RawWriter) Write(img *image.RGBA) error {
	if img == nil {
		return errors.New("raw writer: nil frame")
	}
	bounds := img.Bounds()
	if bounds.Dx() != w.width || bounds.Dy() != w.height {
		return fmt.Errorf("raw writer: frame is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), w.width, w.height)
	}
	rowBytes := w.width * BytesPerPixel
	if img.Stride == rowBytes {
		start := img.PixOffset(bounds.Min.X, bounds.Min.Y)
		_, err := w.w.Write(img.Pix[start : start+rowBytes*w.height])
		return err
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		start := img.PixOffset(bounds.Min.X, y)
		if _, err := w.w.Write(img.Pix[start : start+rowBytes]); err != nil {
			return err
		}
	}
	return nil
}
