package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOrdersByScoreAndShortlists(t *testing.T) {
	candidates := []CandidateProfile{
		{CandidateID: "a", FinalScore: 82.1},
		{CandidateID: "b", FinalScore: 40},
		{CandidateID: "c", FinalScore: 55},
	}

	batch, shortlisted := Rank(candidates, 50)
	require.Len(t, batch, 3)
	assert.Equal(t, "a", batch[0].CandidateID)
	assert.Equal(t, "c", batch[1].CandidateID)
	assert.Equal(t, "b", batch[2].CandidateID)

	assert.True(t, batch[0].Shortlisted)
	assert.True(t, batch[1].Shortlisted)
	assert.False(t, batch[2].Shortlisted)
	assert.Equal(t, map[string]bool{"a": true, "c": true}, shortlisted)
}

func TestRankThresholdIsInclusive(t *testing.T) {
	batch, shortlisted := Rank([]CandidateProfile{{CandidateID: "edge", FinalScore: 50}}, 50)
	assert.True(t, batch[0].Shortlisted)
	assert.True(t, shortlisted["edge"])
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	candidates := []CandidateProfile{
		{CandidateID: "first", FinalScore: 70},
		{CandidateID: "second", FinalScore: 70},
		{CandidateID: "third", FinalScore: 70},
	}
	for i := 0; i < 5; i++ {
		batch, _ := Rank(candidates, 0)
		assert.Equal(t, "first", batch[0].CandidateID)
		assert.Equal(t, "second", batch[1].CandidateID)
		assert.Equal(t, "third", batch[2].CandidateID)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	candidates := []CandidateProfile{
		{CandidateID: "low", FinalScore: 10},
		{CandidateID: "high", FinalScore: 90},
	}
	_, _ = Rank(candidates, 50)
	assert.Equal(t, "low", candidates[0].CandidateID)
	assert.False(t, candidates[0].Shortlisted)
}

func TestRankEmptyInput(t *testing.T) {
	batch, shortlisted := Rank(nil, 50)
	assert.Empty(t, batch)
	assert.Empty(t, shortlisted)
}
