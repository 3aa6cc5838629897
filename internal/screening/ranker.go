package screening

import "sort"

// Rank orders scored candidates by final score, best first, keeping the
// caller's order for equal scores, and shortlists everyone whose score meets
// threshold (a percentage in [0,100]). Scores are never modified; Rank is a
// view over already-scored input.
func Rank(candidates []CandidateProfile, threshold float64) (ScoredBatch, map[string]bool) {
	batch := make(ScoredBatch, len(candidates))
	copy(batch, candidates)

	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].FinalScore > batch[j].FinalScore
	})

	shortlisted := make(map[string]bool)
	for i := range batch {
		batch[i].Shortlisted = batch[i].FinalScore >= threshold
		if batch[i].Shortlisted {
			shortlisted[batch[i].CandidateID] = true
		}
	}
	return batch, shortlisted
}
