// Package scoring quantizes provider scores onto a fixed grid so repeated
// analyses of near-identical inputs settle on the same values.
package scoring

import (
	"math"

	"github.com/xxxsen/resumatch/internal/model"
)

const (
	Step     = 2
	MinScore = 0
	MaxScore = 100
)

// Quantize rounds v to the nearest multiple of Step (halves go to the even
// multiple) and clamps it into [MinScore, MaxScore]. NaN maps to MinScore.
func Quantize(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	q := math.RoundToEven(v/Step) * Step
	if q < MinScore {
		return MinScore
	}
	if q > MaxScore {
		return MaxScore
	}
	return q
}

// Normalize returns a copy of report with the overall score, every skill
// match, experience.match and education.match quantized. Absent fields stay
// absent; the input is not modified.
func Normalize(report *model.MatchReport) *model.MatchReport {
	if report == nil {
		return nil
	}
	out := *report
	if report.OverallMatch != nil {
		overall := *report.OverallMatch
		overall.Score = quantizePtr(overall.Score)
		out.OverallMatch = &overall
	}
	if report.SkillsAnalysis != nil {
		out.SkillsAnalysis = make([]model.SkillMatch, len(report.SkillsAnalysis))
		for i, skill := range report.SkillsAnalysis {
			skill.Match = quantizePtr(skill.Match)
			out.SkillsAnalysis[i] = skill
		}
	}
	out.Experience = normalizeSection(report.Experience)
	out.Education = normalizeSection(report.Education)
	return &out
}

func normalizeSection(section *model.SectionMatch) *model.SectionMatch {
	if section == nil {
		return nil
	}
	cp := *section
	cp.Match = quantizePtr(cp.Match)
	return &cp
}

func quantizePtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	q := Quantize(*v)
	return &q
}
