package frames

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"sync"
)

func binaryOrDefault(binary string) string {
	if b := strings.TrimSpace(binary); b != "" {
		return b
	}
	return "ffmpeg"
}

// Decoder streams frames out of an ffmpeg subprocess.
type Decoder struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	reader *RawReader
	done   bool
	once   sync.Once
	err    error
}

// NewDecoder starts ffmpeg decoding opts.Path. Width and Height must match
// the source; callers get them from ffprobe.
func NewDecoder(ctx context.Context, opts DecoderOptions) (*Decoder, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("decoder: empty path")
	}
	cmd := exec.CommandContext(ctx, binaryOrDefault(opts.Binary), DecodeArgs(opts)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("decoder stdout: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	reader, err := NewRawReader(stdout, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start decoder: %w", err)
	}
	return &Decoder{cmd: cmd, stdout: stdout, stderr: stderr, reader: reader}, nil
}

// Next returns the next decoded frame or io.EOF once ffmpeg finishes cleanly.
func (d *Decoder) Next() (*image.RGBA, error) {
	if d.done {
		return nil, io.EOF
	}
	img, err := d.reader.Next()
	if err == nil {
		return img, nil
	}
	d.done = true
	if errors.Is(err, io.EOF) {
		if waitErr := d.wait(false); waitErr != nil {
			return nil, waitErr
		}
		return nil, io.EOF
	}
	_ = d.wait(true)
	return nil, fmt.Errorf("decode frame: %w", err)
}

// Close stops ffmpeg if it is still producing frames and reaps the process.
func (d *Decoder) Close() error {
	early := !d.done
	d.done = true
	return d.wait(early)
}

func (d *Decoder) wait(kill bool) error {
	d.once.Do(func() {
		if kill && d.cmd.Process != nil {
			_ = d.cmd.Process.Kill()
		}
		_ = d.stdout.Close()
		err := d.cmd.Wait()
		if err != nil && !kill {
			d.err = toolError("ffmpeg decode", err, d.stderr)
		}
	})
	return d.err
}

// Encoder feeds frames into an ffmpeg subprocess.
type Encoder struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	writer *RawWriter
	frames int
	once   sync.Once
	err    error
}

// NewEncoder starts ffmpeg writing opts.Path.
func NewEncoder(ctx context.Context, opts EncoderOptions) (*Encoder, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("encoder: empty path")
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("encoder: invalid fps %v", opts.FPS)
	}
	cmd := exec.CommandContext(ctx, binaryOrDefault(opts.Binary), EncodeArgs(opts)...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("encoder stdin: %w", err)
	}
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	writer, err := NewRawWriter(stdin, opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start encoder: %w", err)
	}
	return &Encoder{cmd: cmd, stdin: stdin, stderr: stderr, writer: writer}, nil
}

// Write sends one frame to ffmpeg.
func (e *Encoder) Write(img *image.RGBA) error {
	if err := e.writer.Write(img); err != nil {
		return fmt.Errorf("encode frame %d: %w", e.frames, err)
	}
	e.frames++
	return nil
}

// Frames reports how many frames were written.
func (e *Encoder) Frames() int {
	return e.frames
}

// Close flushes stdin and waits for ffmpeg to finalise the container.
func (e *Encoder) Close() error {
	e.once.Do(func() {
		closeErr := e.stdin.Close()
		if err := e.cmd.Wait(); err != nil {
			e.err = toolError("ffmpeg encode", err, e.stderr)
			return
		}
		if closeErr != nil && !errors.Is(closeErr, io.ErrClosedPipe) {
			e.err = fmt.Errorf("close encoder stdin: %w", closeErr)
		}
	})
	return e.err
}

// ExtractFrame decodes the single frame at index by seeking to index/fps.
func ExtractFrame(ctx context.Context, opts DecoderOptions, index int, fps float64) (*image.RGBA, error) {
	if index < 0 {
		return nil, fmt.Errorf("extract frame: negative index %d", index)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("extract frame: invalid fps %v", fps)
	}
	opts.StartSeconds = float64(index) / fps
	opts.MaxFrames = 1
	dec, err := NewDecoder(ctx, opts)
	if err != nil {
		return nil, err
	}
	img, err := dec.Next()
	closeErr := dec.Close()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("extract frame %d: no frame decoded", index)
		}
		return nil, fmt.Errorf("extract frame %d: %w", index, err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("extract frame %d: %w", index, closeErr)
	}
	return img, nil
}

func toolError(op string, err error, stderr *bytes.Buffer) error {
	detail := strings.TrimSpace(stderr.String())
	if detail == "" {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %s", op, err, detail)
}
