package screening

import (
	"sort"
	"strings"
)

// SkillSet holds normalized, deduplicated skill names.
type SkillSet map[string]struct{}

// NormalizeSkill lowercases and collapses inner whitespace. Matching is exact
// after normalization; alias resolution ("K8s" vs "Kubernetes") belongs to the
// extraction collaborator, which canonicalizes names before they reach us.
func NormalizeSkill(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// NewSkillSet builds a set from raw skill names, dropping empties.
func NewSkillSet(skills []string) SkillSet {
	set := make(SkillSet, len(skills))
	for _, s := range skills {
		if n := NormalizeSkill(s); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func (s SkillSet) Contains(skill string) bool {
	_, ok := s[NormalizeSkill(skill)]
	return ok
}

// Intersect returns the skills present in both sets.
func (s SkillSet) Intersect(other SkillSet) SkillSet {
	out := make(SkillSet)
	for skill := range s {
		if _, ok := other[skill]; ok {
			out[skill] = struct{}{}
		}
	}
	return out
}

// Difference returns the skills in s that are missing from other.
func (s SkillSet) Difference(other SkillSet) SkillSet {
	out := make(SkillSet)
	for skill := range s {
		if _, ok := other[skill]; !ok {
			out[skill] = struct{}{}
		}
	}
	return out
}

// Sorted returns the skills in lexicographic order for deterministic output.
func (s SkillSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for skill := range s {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}
