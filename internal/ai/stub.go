package ai

import (
	"encoding/json"
	"strings"

	"github.com/xxxsen/resumatch/internal/model"
)

const (
	ProfessionIT      = "it"
	ProfessionHR      = "hr"
	ProfessionFinance = "finance"
	ProfessionMedical = "medical"
	ProfessionSales   = "sales"
	ProfessionLegal   = "legal"
	ProfessionGeneral = "general"
)

type professionProfile struct {
	name       string
	keywords   []string
	skills     []string
	experience string
	education  string
	questions  []string
}

// professions is ordered: on equal keyword hits the earlier entry wins.
var professions = []professionProfile{
	{
		name:       ProfessionIT,
		keywords:   []string{"программирование", "разработка", "javascript", "python", "developer", "программист", "golang", "software engineer"},
		skills:     []string{"JavaScript", "React", "TypeScript", "Node.js", "Git"},
		experience: "The candidate has software development experience with modern technologies.",
		education:  "Education matches the requirements for an IT position.",
		questions: []string{
			"Describe a project similar to this one that you worked on.",
			"Which development methodologies have you used?",
			"How do you work within a development team?",
		},
	},
	{
		name:       ProfessionHR,
		keywords:   []string{"hr", "кадры", "персонал", "рекрутинг", "делопроизводство", "recruiting", "recruiter"},
		skills:     []string{"Recruitment", "HR administration", "Payroll systems", "Labor law"},
		experience: "The candidate has experience in HR and personnel management.",
		education:  "Education matches the requirements for an HR position.",
		questions: []string{
			"What is the largest team you have hired for?",
			"Which employee assessment methods do you use?",
			"How do you keep up with labor law changes?",
		},
	},
	{
		name:       ProfessionFinance,
		keywords:   []string{"финансы", "бухгалтер", "бухгалтерия", "аудит", "экономист", "accountant", "accounting", "finance"},
		skills:     []string{"Accounting software", "Financial analysis", "Budgeting", "Excel", "Tax accounting"},
		experience: "The candidate has experience in finance.",
		education:  "Education matches the requirements for a finance position.",
		questions: []string{
			"Which taxation systems have you worked with?",
			"How do you track regulatory changes?",
			"Walk through a financial analysis you prepared.",
		},
	},
	{
		name:       ProfessionMedical,
		keywords:   []string{"врач", "медицинский", "медсестра", "больница", "клиника", "physician", "nurse", "clinic", "hospital"},
		skills:     []string{"Diagnostics", "Therapy", "Medical records", "First aid"},
		experience: "The candidate has experience in healthcare.",
		education:  "The candidate has a medical education.",
		questions: []string{
			"Describe a complex case you handled.",
			"How do you approach communication with patients?",
			"Which current treatment methods do you use?",
		},
	},
	{
		name:       ProfessionSales,
		keywords:   []string{"продажи", "менеджер по продажам", "sales", "клиенты", "продавец", "account manager"},
		skills:     []string{"Negotiation", "Client relations", "CRM systems", "Presentations"},
		experience: "The candidate has experience in sales and client work.",
		education:  "Education matches the requirements for a sales position.",
		questions: []string{
			"What are your key sales achievements?",
			"How do you handle objections?",
			"How would you present our product?",
		},
	},
	{
		name:       ProfessionLegal,
		keywords:   []string{"юрист", "правовой", "адвокат", "юридический", "законодательство", "lawyer", "attorney", "legal counsel"},
		skills:     []string{"Contract work", "Corporate law", "Litigation", "Legal consulting"},
		experience: "The candidate has experience in the legal field.",
		education:  "The candidate has a higher legal education.",
		questions: []string{
			"Describe a complex legal case you worked on.",
			"What is your area of legal specialization?",
			"How do you follow legislative changes?",
		},
	},
}

var generalProfile = professionProfile{
	name:       ProfessionGeneral,
	skills:     []string{"Communication", "Teamwork", "MS Office", "Organization", "Adaptability"},
	experience: "The candidate has relevant work experience.",
	education:  "The candidate's education matches the position.",
	questions: []string{
		"Tell us about your experience in this field.",
		"What did you achieve at your previous job?",
		"What motivates you to apply for this position?",
	},
}

var stubSkillMatches = []float64{94, 90, 84, 80, 76}

const (
	stubOverallScore    = 82
	stubExperienceScore = 90
	stubEducationScore  = 90
	stubSummary         = "Preliminary result: the matching service is temporarily unavailable, " +
		"so this estimate is based on the detected profession only. Repeat the analysis later for a detailed report."
)

// ClassifyProfession picks the profession whose keywords occur most often in
// text. Zero hits yields ProfessionGeneral.
func ClassifyProfession(text string) string {
	return classify(text).name
}

func classify(text string) professionProfile {
	lower := strings.ToLower(text)
	best, bestHits := generalProfile, 0
	for _, p := range professions {
		hits := 0
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = p, hits
		}
	}
	return best
}

// DegradedReport builds the deterministic placeholder report returned when
// no provider answered. Its scores already sit on the quantization grid.
func DegradedReport(resumeText, jobText string) *model.MatchReport {
	p := classify(resumeText + " " + jobText)
	skills := make([]model.SkillMatch, 0, len(stubSkillMatches))
	for i, match := range stubSkillMatches {
		if i >= len(p.skills) {
			break
		}
		skills = append(skills, model.SkillMatch{
			Skill:    p.skills[i],
			Category: "hard_skill",
			Match:    model.Float(match),
		})
	}
	questions := make([]map[string]string, 0, len(p.questions))
	for _, q := range p.questions {
		questions = append(questions, map[string]string{"question": q})
	}
	rawQuestions, _ := json.Marshal(questions)
	return &model.MatchReport{
		OverallMatch: &model.OverallMatch{
			Score:   model.Float(stubOverallScore),
			Summary: stubSummary,
		},
		SkillsAnalysis:     skills,
		Experience:         &model.SectionMatch{Match: model.Float(stubExperienceScore), Summary: p.experience},
		Education:          &model.SectionMatch{Match: model.Float(stubEducationScore), Summary: p.education},
		InterviewQuestions: rawQuestions,
		Profession:         p.name,
		Degraded:           true,
	}
}
