package similarity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedEngine struct {
	name  string
	value float64
	err   error
	delay time.Duration
}

func (f *fixedEngine) Name() string { return f.name }

func (f *fixedEngine) Similarity(ctx context.Context, _, _ string) (float64, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return f.value, f.err
}

func TestLexicalSimilarity(t *testing.T) {
	l := NewLexical()
	ctx := context.Background()

	t.Run("identical texts", func(t *testing.T) {
		v, err := l.Similarity(ctx, "Python Django developer", "python django developer")
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v, 1e-9)
	})

	t.Run("disjoint texts", func(t *testing.T) {
		v, err := l.Similarity(ctx, "python django", "accounting payroll")
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("partial overlap is symmetric and bounded", func(t *testing.T) {
		a := "senior python developer with django and postgresql"
		b := "we need a python developer who knows react"
		ab, err := l.Similarity(ctx, a, b)
		require.NoError(t, err)
		ba, err := l.Similarity(ctx, b, a)
		require.NoError(t, err)
		assert.InDelta(t, ab, ba, 1e-12)
		assert.Greater(t, ab, 0.0)
		assert.Less(t, ab, 1.0)
	})

	t.Run("accents are folded", func(t *testing.T) {
		v, err := l.Similarity(ctx, "développeur expérimenté", "developpeur experimente")
		require.NoError(t, err)
		assert.InDelta(t, 1.0, v, 1e-9)
	})

	t.Run("stop words only", func(t *testing.T) {
		v, err := l.Similarity(ctx, "the and of", "python")
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := l.Similarity(ctx, "  ", "python")
		assert.ErrorIs(t, err, ErrEmptyText)
	})
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"c++", "c#", "go", "developpeur"}, tokenize("C++, C#; Go. Le développeur a"))
}

func TestBlend(t *testing.T) {
	ctx := context.Background()

	b, err := NewBlend(
		Weighted{Engine: &fixedEngine{name: "semantic", value: 0.8}, Weight: 65},
		Weighted{Engine: &fixedEngine{name: "lexical", value: 0.4}, Weight: 35},
		Weighted{Engine: &fixedEngine{name: "unused", value: 1}, Weight: 0},
	)
	require.NoError(t, err)
	assert.Equal(t, "blend(semantic+lexical)", b.Name())

	v, err := b.Similarity(ctx, "a", "b")
	require.NoError(t, err)
	assert.InDelta(t, 0.65*0.8+0.35*0.4, v, 1e-9)

	failing, err := NewBlend(
		Weighted{Engine: &fixedEngine{name: "semantic", err: errors.New("quota")}, Weight: 1},
		Weighted{Engine: &fixedEngine{name: "lexical", value: 0.4}, Weight: 1},
	)
	require.NoError(t, err)
	_, err = failing.Similarity(ctx, "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "semantic")

	_, err = NewBlend()
	assert.Error(t, err)
	_, err = NewBlend(Weighted{Engine: &fixedEngine{name: "x"}, Weight: -1})
	assert.Error(t, err)
	_, err = NewBlend(Weighted{Weight: 1})
	assert.Error(t, err)
}

func TestWithTimeout(t *testing.T) {
	slow := &fixedEngine{name: "slow", value: 0.9, delay: time.Second}

	_, err := WithTimeout(slow, 10*time.Millisecond).Similarity(context.Background(), "a", "b")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	fast := &fixedEngine{name: "fast", value: 0.3}
	v, err := WithTimeout(fast, time.Second).Similarity(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 0.3, v)

	assert.Same(t, Engine(fast), WithTimeout(fast, 0))
}

func TestCosineAndClamp(t *testing.T) {
	v, err := Cosine([]float64{1, 0}, []float64{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-12)

	v, err = Cosine([]float64{0, 0}, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	_, err = Cosine([]float64{1}, []float64{1, 2})
	assert.Error(t, err)

	assert.Equal(t, 0.0, Clamp(-0.2))
	assert.Equal(t, 1.0, Clamp(1.5))
	assert.Equal(t, 0.5, Clamp(0.5))
}
