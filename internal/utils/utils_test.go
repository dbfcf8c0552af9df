package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{
			name:   "returns empty when limit non-positive",
			input:  "python developer",
			limit:  0,
			expect: "",
		},
		{
			name:   "shorter than limit",
			input:  "python",
			limit:  10,
			expect: "python",
		},
		{
			name:   "truncates and adds ellipsis",
			input:  "python developer",
			limit:  6,
			expect: "python...",
		},
		{
			name:   "collapses whitespace",
			input:  "  jean\n\n dupont  ",
			limit:  20,
			expect: "jean dupont",
		},
		{
			name:   "counts runes",
			input:  "développeur",
			limit:  4,
			expect: "déve...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, TruncateForLog(tt.input, tt.limit))
		})
	}
}

func TestWaitFor(t *testing.T) {
	original := sleep
	defer func() { sleep = original }()

	var slept []time.Duration
	sleep = func(d time.Duration) { slept = append(slept, d) }

	require.NoError(t, WaitFor(context.Background(), 2*time.Second))
	assert.Equal(t, []time.Duration{2 * time.Second}, slept)

	require.NoError(t, WaitFor(context.Background(), 0))
	assert.Len(t, slept, 1)
}

func TestWaitForCancelled(t *testing.T) {
	original := sleep
	defer func() { sleep = original }()

	release := make(chan struct{})
	sleep = func(time.Duration) { <-release }
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitFor(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, time.Duration(0), Backoff(time.Second, 0))
	assert.Equal(t, time.Duration(0), Backoff(0, 3))
	assert.Equal(t, 3*time.Second, Backoff(time.Second, 3))
}
