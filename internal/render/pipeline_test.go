package render

import (
	"context"
	"errors"
	"image"
	"io"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// sliceSource yields frames whose first pixel byte encodes the frame index.
type sliceSource struct {
	mu    sync.Mutex
	total int
	next  int
	err   error
	errAt int
}

func (s *sliceSource) Next() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil && s.next == s.errAt {
		return nil, s.err
	}
	if s.next >= s.total {
		return nil, io.EOF
	}
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Pix[0] = byte(s.next)
	img.Pix[3] = 255
	s.next++
	return img, nil
}

type recordingSink struct {
	mu      sync.Mutex
	indices []int
	failAt  int
	delay   time.Duration
}

func (s *recordingSink) Write(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAt > 0 && len(s.indices) == s.failAt {
		return errors.New("disk full")
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.indices = append(s.indices, int(img.Pix[0]))
	return nil
}

func TestRunPreservesOrder(t *testing.T) {
	src := &sliceSource{total: 100}
	sink := &recordingSink{}
	var progress []int

	written, err := Run(context.Background(), src, sink, 1, Options{
		Workers:    8,
		QueueDepth: 4,
		Progress:   func(n int) { progress = append(progress, n) },
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if written != 100 {
		t.Fatalf("expected 100 frames, got %d", written)
	}
	for i, idx := range sink.indices {
		if idx != i {
			t.Fatalf("frame %d written out of order (got index %d)", i, idx)
		}
	}
	if len(progress) != 100 || progress[99] != 100 {
		t.Fatalf("unexpected progress callbacks: len=%d", len(progress))
	}
}

// countingSource counts every Next call so tests can see how far the reader
// got ahead of the writer.
type countingSource struct {
	total int
	reads atomic.Int64
}

func (s *countingSource) Next() (*image.RGBA, error) {
	n := int(s.reads.Add(1)) - 1
	if n >= s.total {
		return nil, io.EOF
	}
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Pix[0] = byte(n)
	return img, nil
}

// gatedSink parks the first Write until release is closed.
type gatedSink struct {
	recordingSink
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *gatedSink) Write(img *image.RGBA) error {
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return s.recordingSink.Write(img)
}

func TestRunBoundsReadAheadWhenSinkStalls(t *testing.T) {
	const depth = 4
	src := &countingSource{total: 50}
	sink := &gatedSink{entered: make(chan struct{}), release: make(chan struct{})}

	type result struct {
		written int
		err     error
	}
	done := make(chan result, 1)
	go func() {
		written, err := Run(context.Background(), src, sink, 1, Options{Workers: 2, QueueDepth: depth})
		done <- result{written, err}
	}()

	select {
	case <-sink.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("sink never received a frame")
	}
	time.Sleep(150 * time.Millisecond)

	// One frame held by the writer, depth buffered, one blocked in the reader.
	if reads := src.reads.Load(); reads > depth+2 {
		t.Fatalf("reader ran ahead of a stalled sink: %d reads with queue depth %d", reads, depth)
	}
	select {
	case res := <-done:
		t.Fatalf("Run returned while sink was stalled: %+v", res)
	default:
	}

	close(sink.release)
	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not finish after the sink was released")
	}
	if res.err != nil {
		t.Fatalf("Run returned error: %v", res.err)
	}
	if res.written != 50 {
		t.Fatalf("expected 50 frames, got %d", res.written)
	}
	for i, idx := range sink.indices {
		if idx != i {
			t.Fatalf("frame %d written out of order (got index %d)", i, idx)
		}
	}
}

// sizedSource encodes the frame index in the image width and gives each frame
// a random height, so blur work per frame varies and workers finish out of order.
type sizedSource struct {
	mu    sync.Mutex
	rng   *rand.Rand
	total int
	next  int
}

func (s *sizedSource) Next() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= s.total {
		return nil, io.EOF
	}
	img := image.NewRGBA(image.Rect(0, 0, s.next+1, 1+s.rng.Intn(64)))
	s.next++
	return img, nil
}

type widthSink struct {
	indices []int
}

func (s *widthSink) Write(img *image.RGBA) error {
	s.indices = append(s.indices, img.Bounds().Dx()-1)
	return nil
}

func TestRunPreservesOrderWithUnevenBlurWork(t *testing.T) {
	for _, kernel := range []int{3, 9, 21} {
		src := &sizedSource{rng: rand.New(rand.NewSource(int64(kernel))), total: 80}
		sink := &widthSink{}
		written, err := Run(context.Background(), src, sink, kernel, Options{Workers: 8, QueueDepth: 8})
		if err != nil {
			t.Fatalf("kernel %d: Run returned error: %v", kernel, err)
		}
		if written != 80 {
			t.Fatalf("kernel %d: expected 80 frames, got %d", kernel, written)
		}
		for i, idx := range sink.indices {
			if idx != i {
				t.Fatalf("kernel %d: frame %d written out of order (got index %d)", kernel, i, idx)
			}
		}
	}
}

func TestRunHonoursFrameLimit(t *testing.T) {
	src := &sliceSource{total: 50}
	sink := &recordingSink{}
	written, err := Run(context.Background(), src, sink, 3, Options{Workers: 2, QueueDepth: 2, MaxFrames: 10})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if written != 10 || len(sink.indices) != 10 {
		t.Fatalf("expected 10 frames, got written=%d sink=%d", written, len(sink.indices))
	}
	if src.next != 10 {
		t.Fatalf("expected reader to stop after 10 frames, read %d", src.next)
	}
}

func TestRunLimitLargerThanSource(t *testing.T) {
	src := &sliceSource{total: 5}
	sink := &recordingSink{}
	written, err := Run(context.Background(), src, sink, 1, Options{MaxFrames: 500})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if written != 5 {
		t.Fatalf("expected 5 frames, got %d", written)
	}
}

func TestRunPropagatesSourceError(t *testing.T) {
	boom := errors.New("corrupt packet")
	src := &sliceSource{total: 20, err: boom, errAt: 7}
	_, err := Run(context.Background(), src, &recordingSink{}, 1, Options{Workers: 2, QueueDepth: 2})
	if !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestRunPropagatesSinkError(t *testing.T) {
	src := &sliceSource{total: 1000}
	sink := &recordingSink{failAt: 3}
	written, err := Run(context.Background(), src, sink, 1, Options{Workers: 4, QueueDepth: 2})
	if err == nil {
		t.Fatal("expected sink error")
	}
	if written != 3 {
		t.Fatalf("expected 3 frames before failure, got %d", written)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &sliceSource{total: 10000}
	sink := &recordingSink{delay: time.Millisecond}
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	written, err := Run(ctx, src, sink, 1, Options{Workers: 2, QueueDepth: 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if written >= 10000 {
		t.Fatal("expected run to stop early")
	}
}

func TestRunRejectsNil(t *testing.T) {
	if _, err := Run(context.Background(), nil, &recordingSink{}, 1, Options{}); err == nil {
		t.Fatal("expected error for nil source")
	}
}
