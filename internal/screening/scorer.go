package screening

import (
	"fmt"
	"math"

	"hr-engine/internal/engine"
)

// Default weighting: overall semantic fit matters more than checkbox skills.
// Someone with 5/7 skills but strong experience often beats someone with 7/7
// skills and a poor fit.
const (
	DefaultSemanticWeight = 0.6
	DefaultSkillWeight    = 0.4
)

// Scorer combines semantic similarity and discrete skill overlap into a single
// 0-100 fitness score. It is a pure function over its inputs: no hidden state,
// no randomness.
type Scorer struct {
	semanticWeight float64
	skillWeight    float64
}

// NewScorer validates the weights once at setup. Weights must be non-negative
// and sum to 1.0.
func NewScorer(semanticWeight, skillWeight float64) (*Scorer, error) {
	if semanticWeight < 0 || skillWeight < 0 || math.Abs(semanticWeight+skillWeight-1.0) > 1e-9 {
		return nil, fmt.Errorf("%w: score weights must be non-negative and sum to 1.0 (semantic=%.2f skill=%.2f)",
			engine.ErrInvalidConfig, semanticWeight, skillWeight)
	}
	return &Scorer{semanticWeight: semanticWeight, skillWeight: skillWeight}, nil
}

// Score fills the score fields of the candidate from the job requirement and
// the externally computed cosine similarity (metric range, clamped to [0,1]
// before scaling to 0-100). The candidate is returned with scores populated;
// the job is never mutated.
//
// A job with no required skills grants full skill credit (rate 1.0) rather
// than dividing by zero.
func (s *Scorer) Score(candidate CandidateProfile, job JobRequirement, similarity float64) CandidateProfile {
	matched := candidate.Skills.Intersect(job.Skills)
	missing := job.Skills.Difference(candidate.Skills)

	skillRate := 1.0
	if len(job.Skills) > 0 {
		skillRate = float64(len(matched)) / float64(len(job.Skills))
	}

	similarityScore := clamp01(similarity) * 100
	skillScore := skillRate * 100

	candidate.SimilarityScore = round2(similarityScore)
	candidate.SkillMatchRate = round2(skillScore)
	candidate.MatchedSkills = matched.Sorted()
	candidate.MissingSkills = missing.Sorted()
	candidate.FinalScore = round2(similarityScore*s.semanticWeight + skillScore*s.skillWeight)
	return candidate
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
