package model

import "encoding/json"

// MatchReport is the structured payload produced by the matching provider.
// Every section is optional; score fields are pointers so that absent values
// can be told apart from zero.
type MatchReport struct {
	OverallMatch       *OverallMatch   `json:"overall_match,omitempty"`
	SkillsAnalysis     []SkillMatch    `json:"skills_analysis,omitempty"`
	Experience         *SectionMatch   `json:"experience,omitempty"`
	Education          *SectionMatch   `json:"education,omitempty"`
	Risks              json.RawMessage `json:"risks,omitempty"`
	InterviewQuestions json.RawMessage `json:"interview_questions,omitempty"`
	Profession         string          `json:"profession,omitempty"`
	Degraded           bool            `json:"degraded,omitempty"`
}

type OverallMatch struct {
	Score      *float64 `json:"score,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
}

type SkillMatch struct {
	Skill     string   `json:"skill"`
	Category  string   `json:"category,omitempty"`
	Match     *float64 `json:"match,omitempty"`
	Context   string   `json:"context,omitempty"`
	Relevance string   `json:"relevance,omitempty"`
}

type SectionMatch struct {
	Match   *float64        `json:"match,omitempty"`
	Summary string          `json:"summary,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// OverallScore returns the overall score, or 0 when the report has none.
func (r *MatchReport) OverallScore() float64 {
	if r == nil || r.OverallMatch == nil || r.OverallMatch.Score == nil {
		return 0
	}
	return *r.OverallMatch.Score
}

func Float(v float64) *float64 {
	return &v
}
