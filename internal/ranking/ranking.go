package ranking

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spigell/cvrank/internal/extract"
	"github.com/spigell/cvrank/internal/scoring"
)

// Alternate references a lower-scoring résumé of an already ranked candidate.
type Alternate struct {
	SourceID string  `json:"sourceId"`
	Score    float64 `json:"score"`
}

// Entry is one ranked candidate.
type Entry struct {
	Identity      extract.Identity `json:"identity"`
	SourceID      string           `json:"sourceId"`
	Result        scoring.Result   `json:"result"`
	Alternates    []Alternate      `json:"alternates,omitempty"`
	Failed        bool             `json:"failed,omitempty"`
	FailureReason string           `json:"failureReason,omitempty"`
}

type Summary struct {
	TotalRequested        int  `json:"totalRequested"`
	TotalFound            int  `json:"totalFound"`
	TotalAnalyzed         int  `json:"totalAnalyzed"`
	TotalFailed           int  `json:"totalFailed"`
	TotalUniqueCandidates int  `json:"totalUniqueCandidates"`
	Selection             Step `json:"selection"`
}

// Ranking is the ordered outcome of one batch: deduplicated valid entries by
// score descending, then failed entries in input order.
type Ranking struct {
	RunID    string  `json:"runId"`
	Page     int     `json:"page,omitempty"`
	PageSize int     `json:"pageSize,omitempty"`
	Summary  Summary `json:"summary"`
	Entries  []Entry `json:"entries"`
}

func (r *Ranking) Len() int {
	return len(r.Entries)
}

// FindBySourceID returns the entry ranked for a source document, including
// documents only kept as alternates.
func (r *Ranking) FindBySourceID(id string) *Entry {
	for i := range r.Entries {
		if r.Entries[i].SourceID == id {
			return &r.Entries[i]
		}
		for _, alt := range r.Entries[i].Alternates {
			if alt.SourceID == id {
				return &r.Entries[i]
			}
		}
	}
	return nil
}

func (r *Ranking) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "ranking_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByCandidate groups entries by candidate for display.
func (r *Ranking) ReportByCandidate() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for i, entry := range r.Entries {
		key := entry.Identity.Name
		if entry.Identity.Email != "" {
			key = fmt.Sprintf("%s (%s)", entry.Identity.Name, entry.Identity.Email)
		}

		row := map[string]string{
			"rank":     fmt.Sprintf("%d", i+1),
			"document": entry.SourceID,
			"score":    fmt.Sprintf("%.2f", entry.Result.Score),
		}

		if entry.Failed {
			row["status"] = "failed"
			row["reason"] = entry.FailureReason
			report[key] = append(report[key], row)
			continue
		}

		row["matched skills"] = strings.Join(entry.Result.MatchedSkills, ", ")
		row["missing skills"] = strings.Join(entry.Result.MissingSkills, ", ")
		row["experience"] = fmt.Sprintf("%d years", entry.Result.ExperienceYears)

		switch {
		case entry.Result.Degraded:
			row["status"] = "degraded"
			row["reason"] = entry.Result.Error
		case entry.Result.LowConfidence:
			row["status"] = "low confidence"
		default:
			row["status"] = "ok"
		}

		if len(entry.Alternates) > 0 {
			alts := make([]string, 0, len(entry.Alternates))
			for _, alt := range entry.Alternates {
				alts = append(alts, fmt.Sprintf("%s (%.2f)", alt.SourceID, alt.Score))
			}
			row["alternates"] = strings.Join(alts, ", ")
		}

		report[key] = append(report[key], row)
	}
	return report
}
