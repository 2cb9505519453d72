package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"vidblur/internal/blur"
)

// Source yields frames until io.EOF.
type Source interface {
	Next() (*image.RGBA, error)
}

// Sink consumes frames in order.
type Sink interface {
	Write(*image.RGBA) error
}

// Options tunes Run.
type Options struct {
	Workers    int
	QueueDepth int
	// MaxFrames stops reading after this many frames; zero reads to EOF.
	MaxFrames int
	// Progress is called from the writer after each frame with the running count.
	Progress func(written int)
}

type job struct {
	index int
	frame *image.RGBA
	done  chan *image.RGBA
}

// Run blurs every frame from src with the given kernel and writes them to
// sink in source order. It returns the number of frames written. The first
// error from any stage cancels the others.
func Run(ctx context.Context, src Source, sink Sink, kernel int, opts Options) (int, error) {
	if src == nil || sink == nil {
		return 0, errors.New("render: nil source or sink")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	depth := opts.QueueDepth
	if depth <= 0 {
		depth = workers * 2
	}

	g, gctx := errgroup.WithContext(ctx)
	pending := make(chan job, depth)
	work := make(chan job, depth)

	g.Go(func() error {
		defer close(pending)
		defer close(work)
		for index := 0; opts.MaxFrames <= 0 || index < opts.MaxFrames; index++ {
			frame, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read frame %d: %w", index, err)
			}
			j := job{index: index, frame: frame, done: make(chan *image.RGBA, 1)}
			select {
			case pending <- j:
			case <-gctx.Done():
				return gctx.Err()
			}
			select {
			case work <- j:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for range workers {
		g.Go(func() error {
			for j := range work {
				if err := gctx.Err(); err != nil {
					return err
				}
				j.done <- blur.Apply(j.frame, kernel)
			}
			return nil
		})
	}

	written := 0
	g.Go(func() error {
		for j := range pending {
			var out *image.RGBA
			select {
			case out = <-j.done:
			case <-gctx.Done():
				return gctx.Err()
			}
			if err := sink.Write(out); err != nil {
				return fmt.Errorf("write frame %d: %w", j.index, err)
			}
			written++
			if opts.Progress != nil {
				opts.Progress(written)
			}
		}
		return nil
	})

	err := g.Wait()
	return written, err
}
