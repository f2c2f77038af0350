// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jeranaias/eventplan-tui/internal/api"
	"github.com/jeranaias/eventplan-tui/internal/controller"
	"github.com/jeranaias/eventplan-tui/internal/storage"
)

// flakyStreamer fails mid-stream on the first call and delivers the
// full plan on the retry.
type flakyStreamer struct {
	calls int
}

func (f *flakyStreamer) PlanEventStream(_ context.Context, _ api.PlanRequest, h api.StreamHandler) error {
	f.calls++
	if h.OnStart != nil {
		h.OnStart()
	}
	if f.calls == 1 {
		if h.OnChunk != nil {
			h.OnChunk("## Event: Dragon")
		}
		return &api.ClientError{Type: api.ErrTypeConnection, Message: "connection reset"}
	}
	for _, chunk := range []string{"## Event: Dragon Hunt\n\n", "Full plan body."} {
		if h.OnChunk != nil {
			h.OnChunk(chunk)
		}
	}
	return nil
}

func TestStreamPrinterPrintsDeltasOnly(t *testing.T) {
	var out bytes.Buffer
	printer := &streamPrinter{w: &out}
	var ctrl *controller.Controller
	ctrl = controller.New(&fakeChatStreamer{chunks: []string{"A", "B", "C"}}, storage.NewMemory(), controller.Options{
		Logger: NewCLILogger(Args{}),
		OnUpdate: func() {
			printer.onUpdate(ctrl.Snapshot())
		},
	})

	printer.reset()
	if err := ctrl.Submit(context.Background(), "plan something"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := out.String(); got != "ABC" {
		t.Errorf("printed %q, want %q", got, "ABC")
	}
}

// A retry after a mid-stream failure must print the retried plan from
// its first byte; the printer position from the failed attempt must not
// carry over.
func TestStreamPrinterResetsOnResend(t *testing.T) {
	var out bytes.Buffer
	printer := &streamPrinter{w: &out}
	var ctrl *controller.Controller
	ctrl = controller.New(&flakyStreamer{}, storage.NewMemory(), controller.Options{
		Logger: NewCLILogger(Args{}),
		OnUpdate: func() {
			printer.onUpdate(ctrl.Snapshot())
		},
	})

	printer.reset()
	if err := ctrl.Submit(context.Background(), "plan a dragon hunt"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	out.Reset()
	if err := resendLastError(ctrl, printer); err != nil {
		t.Fatalf("resendLastError: %v", err)
	}

	if !strings.HasPrefix(out.String(), "## Event: Dragon Hunt") {
		t.Errorf("retry output starts at %q; the stream head was swallowed", out.String())
	}
}

func TestResendLastErrorRequiresTrailingError(t *testing.T) {
	printer := &streamPrinter{w: &bytes.Buffer{}}
	ctrl := controller.New(&fakeChatStreamer{chunks: []string{"plan"}}, storage.NewMemory(), controller.Options{
		Logger: NewCLILogger(Args{}),
	})

	if err := resendLastError(ctrl, printer); err == nil {
		t.Error("expected an error on an empty conversation")
	}

	if err := ctrl.Submit(context.Background(), "plan a party"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := resendLastError(ctrl, printer); err == nil {
		t.Error("expected an error when the last submission succeeded")
	}
}

// fakeChatStreamer delivers a fixed successful stream.
type fakeChatStreamer struct {
	chunks []string
}

func (f *fakeChatStreamer) PlanEventStream(_ context.Context, _ api.PlanRequest, h api.StreamHandler) error {
	if h.OnStart != nil {
		h.OnStart()
	}
	for _, chunk := range f.chunks {
		if h.OnChunk != nil {
			h.OnChunk(chunk)
		}
	}
	return nil
}
