package drive

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestProgressTask_RunsToCompletion(t *testing.T) {
	var got []int
	task := &ProgressTask{
		Step:     10,
		Interval: time.Millisecond,
		OnProgress: func(progress int) error {
			got = append(got, progress)
			return nil
		},
	}

	if err := task.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if len(got) != len(want) {
		t.Fatalf("progress = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("progress = %v, want %v", got, want)
		}
	}
}

func TestProgressTask_UnevenStepEndsAtMax(t *testing.T) {
	var last int
	task := &ProgressTask{
		Step:     30,
		Interval: time.Millisecond,
		OnProgress: func(progress int) error {
			last = progress
			return nil
		},
	}

	if err := task.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if last != 100 {
		t.Errorf("last progress = %d, want 100", last)
	}
}

func TestProgressTask_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	task := &ProgressTask{
		Step:     10,
		Interval: time.Millisecond,
		OnProgress: func(progress int) error {
			calls++
			if progress == 30 {
				cancel()
			}
			return nil
		},
	}

	err := task.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if calls != 4 {
		t.Errorf("OnProgress called %d times after cancel at 30, want 4", calls)
	}
}

func TestProgressTask_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	task := &ProgressTask{
		Step:     10,
		Interval: time.Millisecond,
		OnProgress: func(progress int) error {
			if progress == 20 {
				return stop
			}
			return nil
		},
	}

	if err := task.Run(context.Background()); !errors.Is(err, stop) {
		t.Fatalf("Run() error = %v, want %v", err, stop)
	}
}
