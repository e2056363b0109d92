package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"evhub/backend/services/admin-console/internal/models"
)

// stubPause replaces the inter-group wait and counts how often it ran.
func stubPause(t *testing.T) *int {
	t.Helper()
	original := pause
	var (
		mu    sync.Mutex
		count int
	)
	pause = func(ctx context.Context, _ time.Duration) error {
		mu.Lock()
		count++
		mu.Unlock()
		return ctx.Err()
	}
	t.Cleanup(func() { pause = original })
	return &count
}

func TestRunBatchGroupsAndResults(t *testing.T) {
	cases := []struct {
		items, size, groups int
	}{
		{items: 0, size: 3, groups: 0},
		{items: 1, size: 3, groups: 1},
		{items: 6, size: 3, groups: 2},
		{items: 7, size: 3, groups: 3},
		{items: 12, size: 5, groups: 3},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d_by_%d", tc.items, tc.size), func(t *testing.T) {
			pauses := stubPause(t)

			var (
				mu       sync.Mutex
				groupOf  = map[int]int{}
				inFlight int
				peak     int
			)
			items := make([]int, tc.items)
			for i := range items {
				items[i] = i
			}
			results := RunBatch(context.Background(), items, BatchOptions{Size: tc.size, Delay: time.Second}, func(_ context.Context, item int) (string, error) {
				mu.Lock()
				groupOf[item] = *pauses
				inFlight++
				if inFlight > peak {
					peak = inFlight
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inFlight--
				mu.Unlock()
				if item%2 == 1 {
					return "", errors.New("odd item rejected")
				}
				return fmt.Sprintf("item-%d", item), nil
			})

			if len(results) != tc.items {
				t.Fatalf("expected %d results, got %d", tc.items, len(results))
			}
			if tc.groups > 0 && *pauses != tc.groups-1 {
				t.Fatalf("expected %d pauses between %d groups, got %d", tc.groups-1, tc.groups, *pauses)
			}
			if peak > tc.size {
				t.Fatalf("expected at most %d concurrent calls, got %d", tc.size, peak)
			}
			for i, r := range results {
				if r.Index != i {
					t.Fatalf("result %d carries index %d", i, r.Index)
				}
				if groupOf[i] != i/tc.size {
					t.Fatalf("item %d ran in group %d, expected %d", i, groupOf[i], i/tc.size)
				}
				if i%2 == 1 {
					if r.Success || r.Error != "odd item rejected" {
						t.Fatalf("expected failure for item %d, got %+v", i, r)
					}
					continue
				}
				if !r.Success || r.Data != fmt.Sprintf("item-%d", i) {
					t.Fatalf("expected success for item %d, got %+v", i, r)
				}
			}
		})
	}
}

func TestRunBatchStopsBetweenGroupsOnCancel(t *testing.T) {
	original := pause
	t.Cleanup(func() { pause = original })

	ctx, cancel := context.WithCancel(context.Background())
	pause = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	var calls atomic.Int32
	results := RunBatch(ctx, []int{1, 2, 3, 4}, BatchOptions{Size: 2}, func(context.Context, int) (int, error) {
		calls.Add(1)
		return 0, nil
	})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("expected only the first group to run, got %d calls", n)
	}
	if results[2].Success || results[3].Error != context.Canceled.Error() {
		t.Fatalf("expected cancelled tail, got %+v", results[2:])
	}
}

func TestStationBatchCreateCollectsFailuresPerItem(t *testing.T) {
	stubPause(t)
	api := newFakeStationAPI()
	svc := NewStationService(api, BatchOptions{Size: 2}, nil)

	inputs := []models.StationInput{
		validStationInput("North Hub"),
		validStationInput("x"),
		validStationInput("Broken"),
		validStationInput("South Hub"),
		validStationInput("East Hub"),
	}
	results := svc.BatchCreate(context.Background(), inputs)
	if len(results) != len(inputs) {
		t.Fatalf("expected %d results, got %d", len(inputs), len(results))
	}
	wantSuccess := []bool{true, false, false, true, true}
	for i, r := range results {
		if r.Success != wantSuccess[i] {
			t.Fatalf("item %d: expected success=%v, got %+v", i, wantSuccess[i], r)
		}
	}
	if results[1].Error == "" || results[2].Error != "Failed to create station" {
		t.Fatalf("unexpected errors %q / %q", results[1].Error, results[2].Error)
	}
	if results[3].Data.ID != "st-South Hub" {
		t.Fatalf("unexpected created station %+v", results[3].Data)
	}
}
