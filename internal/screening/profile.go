package screening

// CandidateProfile carries one candidate through a screening run. The Scorer
// fills the score fields exactly once; everything else is read-only input
// produced by the extraction collaborator.
type CandidateProfile struct {
	CandidateID     string   `json:"candidate_id"`
	Name            string   `json:"name,omitempty"`
	Email           string   `json:"email,omitempty"`
	Phone           string   `json:"phone,omitempty"`
	ExperienceYears int      `json:"experience_years"`
	FullText        string   `json:"-"`
	Skills          SkillSet `json:"-"`

	SimilarityScore float64  `json:"similarity_score"`
	SkillMatchRate  float64  `json:"skill_match_rate"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	FinalScore      float64  `json:"final_score"`
	Shortlisted     bool     `json:"shortlisted"`
}

// JobRequirement is the screening target. Immutable for the duration of one run.
type JobRequirement struct {
	FullText string
	Skills   SkillSet
}

// ScoredBatch is a rank-ordered sequence of scored candidates. Order matters:
// display and shortlisting depend on it.
type ScoredBatch []CandidateProfile
