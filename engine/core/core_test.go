package core

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestClockUsesInjectedTime(t *testing.T) {
	now := 10.0
	c := &Clock{now: func() float64 { return now }}

	c.Update()
	if c.Elapsed() != 0 {
		t.Errorf("a clock that was never started should not advance, got %f", c.Elapsed())
	}

	c.Start()
	now = 12.5
	c.Update()
	if c.Elapsed() != 2.5 {
		t.Errorf("elapsed = %f, want 2.5", c.Elapsed())
	}

	c.Stop()
	now = 20
	c.Update()
	if c.Elapsed() != 2.5 {
		t.Errorf("a stopped clock should keep its elapsed time, got %f", c.Elapsed())
	}
}

func TestFrameStatsOneSecondWindows(t *testing.T) {
	s := NewFrameStats()
	closed := 0
	// 120 frames of 1/60s is two full windows.
	for i := 0; i < 120; i++ {
		if s.Update(1.0 / 60.0) {
			closed++
		}
	}
	if closed < 1 || closed > 2 {
		t.Fatalf("expected one or two closed windows, got %d", closed)
	}
	if s.FPS() < 59 || s.FPS() > 61 {
		t.Errorf("fps = %f, want about 60", s.FPS())
	}
	if s.FrameTime() < 16 || s.FrameTime() > 17.5 {
		t.Errorf("average frame time = %f ms, want about 16.6", s.FrameTime())
	}
}

func TestAlignedAlloc(t *testing.T) {
	for _, align := range []uint64{1, 16, 64, 256} {
		b := AlignedAlloc(1000, align)
		if len(b) != 1000 {
			t.Errorf("align %d: len = %d, want 1000", align, len(b))
		}
		if !IsAligned(b, align) {
			t.Errorf("align %d: slice is not aligned", align)
		}
	}
}

func TestEventBusFireStopsWhenHandled(t *testing.T) {
	bus := NewEventBus()
	calls := []string{}
	first, second := "first", "second"

	bus.Register(EVENT_CODE_RESIZED, first, func(l interface{}, ctx EventContext) bool {
		calls = append(calls, l.(string))
		return ctx.Width == 0
	})
	bus.Register(EVENT_CODE_RESIZED, second, func(l interface{}, ctx EventContext) bool {
		calls = append(calls, l.(string))
		return true
	})
	if bus.Register(EVENT_CODE_RESIZED, first, nil) {
		t.Error("duplicate listener registration should be refused")
	}

	bus.Fire(EventContext{Code: EVENT_CODE_RESIZED, Width: 0})
	if len(calls) != 1 {
		t.Fatalf("expected the first handler to stop propagation, calls = %v", calls)
	}

	calls = calls[:0]
	bus.Fire(EventContext{Code: EVENT_CODE_RESIZED, Width: 10})
	if len(calls) != 2 || calls[1] != second {
		t.Errorf("expected both handlers in order, calls = %v", calls)
	}

	if !bus.Unregister(EVENT_CODE_RESIZED, first) {
		t.Error("unregister of a known listener should succeed")
	}
	calls = calls[:0]
	bus.Fire(EventContext{Code: EVENT_CODE_RESIZED, Width: 0})
	if len(calls) != 1 || calls[0] != second {
		t.Errorf("expected only the second handler, calls = %v", calls)
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(errors.Wrap(ErrDeviceLost, "vkQueueSubmit")) {
		t.Error("a wrapped device lost error should be fatal")
	}
	if IsFatal(errors.Wrap(ErrSwapchainOutOfDate, "vkQueuePresentKHR")) {
		t.Error("an out of date swapchain is recoverable")
	}
}
