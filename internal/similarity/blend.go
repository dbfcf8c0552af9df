package similarity

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Weighted pairs an engine with its share of a blended score.
type Weighted struct {
	Engine Engine
	Weight float64
}

// Blend averages several engines. Weights are renormalized to sum to 1 and a
// failure of any engine fails the whole call.
type Blend struct {
	parts []Weighted
	name  string
}

func NewBlend(parts ...Weighted) (*Blend, error) {
	kept := make([]Weighted, 0, len(parts))
	total := 0.0
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Engine == nil {
			return nil, errors.New("blend: nil engine")
		}
		if p.Weight < 0 {
			return nil, fmt.Errorf("blend: negative weight %v for %s", p.Weight, p.Engine.Name())
		}
		if p.Weight == 0 {
			continue
		}
		kept = append(kept, p)
		total += p.Weight
		names = append(names, p.Engine.Name())
	}

	if len(kept) == 0 {
		return nil, errors.New("blend: at least one engine with a positive weight is required")
	}

	for i := range kept {
		kept[i].Weight /= total
	}

	return &Blend{parts: kept, name: "blend(" + strings.Join(names, "+") + ")"}, nil
}

func (b *Blend) Name() string {
	return b.name
}

func (b *Blend) Similarity(ctx context.Context, x, y string) (float64, error) {
	score := 0.0
	for _, p := range b.parts {
		v, err := p.Engine.Similarity(ctx, x, y)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", p.Engine.Name(), err)
		}
		score += p.Weight * Clamp(v)
	}
	return Clamp(score), nil
}
