// Package similarity defines the text similarity capability consumed by the
// scorer and provides lexical and composite implementations.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrEmptyText is returned when either text carries nothing to compare.
var ErrEmptyText = errors.New("similarity: empty text")

// Engine scores how similar two texts are, in [0,1]. Implementations must be
// safe for concurrent use and deterministic for fixed model weights.
type Engine interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
	Name() string
}

// Clamp forces a raw similarity into [0,1]. NaN maps to 0.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

// Cosine returns the cosine similarity of two dense vectors of equal length.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("similarity: vector length mismatch %d != %d", len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

type timeoutEngine struct {
	next    Engine
	timeout time.Duration
}

// WithTimeout bounds every call to next by d. A non-positive d returns next.
func WithTimeout(next Engine, d time.Duration) Engine {
	if d <= 0 {
		return next
	}
	return &timeoutEngine{next: next, timeout: d}
}

func (t *timeoutEngine) Name() string {
	return t.next.Name()
}

func (t *timeoutEngine) Similarity(ctx context.Context, a, b string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type outcome struct {
		value float64
		err   error
	}

	done := make(chan outcome, 1)
	go func() {
		v, err := t.next.Similarity(ctx, a, b)
		done <- outcome{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s similarity: %w", t.next.Name(), ctx.Err())
	case out := <-done:
		return out.value, out.err
	}
}
