package screening

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// WriteCSV projects a scored batch into one row per candidate for download.
// Pure projection; ordering follows the batch.
func WriteCSV(w io.Writer, batch ScoredBatch) error {
	cw := csv.NewWriter(w)

	header := []string{
		"candidate_id", "name", "email", "experience_years",
		"final_score", "similarity_score", "skill_match_rate",
		"matched_skills", "missing_skills", "shortlisted",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, c := range batch {
		row := []string{
			c.CandidateID,
			c.Name,
			c.Email,
			strconv.Itoa(c.ExperienceYears),
			strconv.FormatFloat(c.FinalScore, 'f', 2, 64),
			strconv.FormatFloat(c.SimilarityScore, 'f', 2, 64),
			strconv.FormatFloat(c.SkillMatchRate, 'f', 2, 64),
			strings.Join(c.MatchedSkills, "; "),
			strings.Join(c.MissingSkills, "; "),
			strconv.FormatBool(c.Shortlisted),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
