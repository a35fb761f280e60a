package position

import (
	"context"
	"fmt"
	"testing"

	"lectern/internal/config"
	"lectern/internal/errors"
	"lectern/internal/store"
)

func openTestTracker(t *testing.T) *Tracker {
	t.Helper()
	s, err := store.Open(t.TempDir(), config.DefaultConfig())
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	tr := openTestTracker(t)
	ctx := context.Background()

	if err := tr.Save(ctx, "book-1", "epubcfi(/6/4!/4/2)"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	locator, ok, err := tr.Load(ctx, "book-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("Load ok = false, want true")
	}
	if locator != "epubcfi(/6/4!/4/2)" {
		t.Errorf("locator = %q, want %q", locator, "epubcfi(/6/4!/4/2)")
	}
}

func TestLoad_NeverOpened(t *testing.T) {
	tr := openTestTracker(t)

	locator, ok, err := tr.Load(context.Background(), "book-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Errorf("Load ok = true (locator %q), want absent", locator)
	}
}

func TestSave_Overwrites(t *testing.T) {
	tr := openTestTracker(t)
	ctx := context.Background()

	for _, loc := range []string{"page-1", "page-2", "page-3"} {
		if err := tr.Save(ctx, "book-1", loc); err != nil {
			t.Fatalf("Save %q failed: %v", loc, err)
		}
	}

	locator, ok, err := tr.Load(ctx, "book-1")
	if err != nil || !ok {
		t.Fatalf("Load = %v, ok=%v", err, ok)
	}
	if locator != "page-3" {
		t.Errorf("locator = %q, want %q (last write wins)", locator, "page-3")
	}
}

func TestClear(t *testing.T) {
	tr := openTestTracker(t)
	ctx := context.Background()

	if err := tr.Save(ctx, "book-1", "page-1"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := tr.Clear(ctx, "book-1"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok, _ := tr.Load(ctx, "book-1"); ok {
		t.Error("Load after Clear should be absent")
	}
	// Clearing again is a no-op.
	if err := tr.Clear(ctx, "book-1"); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
}

func TestComputeProgress_Floors(t *testing.T) {
	tests := []struct {
		pct  float64
		want int
	}{
		{0, 0},
		{0.42, 42},
		{0.999, 99},
		{1.0, 100},
	}
	for _, tt := range tests {
		got, err := ComputeProgress("loc", func(string) (float64, error) { return tt.pct, nil })
		if err != nil {
			t.Fatalf("ComputeProgress(%v) failed: %v", tt.pct, err)
		}
		if got != tt.want {
			t.Errorf("ComputeProgress(%v) = %d, want %d", tt.pct, got, tt.want)
		}
	}
}

func TestComputeProgress_NilFunc(t *testing.T) {
	_, err := ComputeProgress("loc", nil)
	if !errors.Is(err, errors.ErrProgressUnavailable) {
		t.Errorf("ComputeProgress(nil fn) = %v, want PROGRESS_UNAVAILABLE", err)
	}
}

func TestComputeProgress_FuncError(t *testing.T) {
	_, err := ComputeProgress("loc", func(string) (float64, error) {
		return 0, fmt.Errorf("location index not built")
	})
	if !errors.Is(err, errors.ErrProgressUnavailable) {
		t.Errorf("ComputeProgress(failing fn) = %v, want PROGRESS_UNAVAILABLE", err)
	}
}

func TestComputeProgress_FuncPanics(t *testing.T) {
	_, err := ComputeProgress("loc", func(string) (float64, error) {
		panic("index out of range")
	})
	if !errors.Is(err, errors.ErrProgressUnavailable) {
		t.Errorf("ComputeProgress(panicking fn) = %v, want PROGRESS_UNAVAILABLE", err)
	}
}

func TestComputeProgress_OutOfRange(t *testing.T) {
	_, err := ComputeProgress("loc", func(string) (float64, error) { return 1.7, nil })
	if !errors.Is(err, errors.ErrProgressUnavailable) {
		t.Errorf("ComputeProgress(1.7) = %v, want PROGRESS_UNAVAILABLE", err)
	}
}
