package ranking

import (
	"context"
	"strings"

	"github.com/spigell/cvrank/internal/extract"
)

// Candidate is one résumé submitted for ranking.
type Candidate struct {
	ID   string
	Text string
	// Identity is optional; missing parts are extracted from Text.
	Identity extract.Identity
	// Source references the original document, used to re-extract text when
	// the supplied one is empty or too short to analyze.
	Source string
}

// TextSource re-extracts the text of a document reference.
type TextSource interface {
	Text(ctx context.Context, ref string) (string, error)
}

// Step describes the result of the candidate selection.
type Step struct {
	Initial int `json:"initial"`
	Dropped int `json:"dropped"`
	Left    int `json:"left"`
}

// Select keeps the candidates whose ID is listed, in input order. An empty
// list keeps everyone. IDs are compared after trimming.
func Select(candidates []Candidate, ids []string) ([]Candidate, Step) {
	step := Step{Initial: len(candidates)}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			wanted[id] = struct{}{}
		}
	}

	if len(wanted) == 0 {
		step.Left = len(candidates)
		return candidates, step
	}

	selected := make([]Candidate, 0, len(wanted))
	for _, c := range candidates {
		if _, ok := wanted[strings.TrimSpace(c.ID)]; ok {
			selected = append(selected, c)
		}
	}

	step.Left = len(selected)
	step.Dropped = step.Initial - step.Left
	return selected, step
}

func requestedCount(candidates []Candidate, ids []string) int {
	unique := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			unique[id] = struct{}{}
		}
	}
	if len(unique) == 0 {
		return len(candidates)
	}
	return len(unique)
}
