package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"vidblur/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "sample", "mux", "ffmpeg exited", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"sample", "mux", "ffmpeg exited"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsCancellation(t *testing.T) {
	if !services.IsCancellation(services.Wrap(services.ErrCancelled, "preview", "", "operator aborted", nil)) {
		t.Fatal("expected wrapped ErrCancelled to be a cancellation")
	}
	if !services.IsCancellation(fmt.Errorf("decode: %w", context.Canceled)) {
		t.Fatal("expected context.Canceled to be a cancellation")
	}
	if services.IsCancellation(services.ErrNotFound) {
		t.Fatal("did not expect ErrNotFound to be a cancellation")
	}
}
