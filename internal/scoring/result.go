package scoring

// Result is the outcome of one résumé against one job description. Failures
// are carried as data: the scorer never returns an error.
type Result struct {
	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`
	Summary       string   `json:"summary"`

	SemanticScore   float64 `json:"semanticScore"`
	LexicalScore    float64 `json:"lexicalScore"`
	ExperienceYears int     `json:"experienceYears"`
	WordCount       int     `json:"wordCount"`

	// LowConfidence marks a résumé too short to analyze. Score is then a fixed
	// minimum while the skill lists still reflect the overlap found.
	LowConfidence bool `json:"lowConfidence,omitempty"`
	// Degraded marks a failed similarity call; Score is the lexical part only,
	// floored at a minimum.
	Degraded bool   `json:"degraded,omitempty"`
	Error    string `json:"error,omitempty"`
}

func emptyResult(summary string) Result {
	return Result{
		MatchedSkills: []string{},
		MissingSkills: []string{},
		Summary:       summary,
	}
}
