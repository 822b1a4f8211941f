package model

// Analysis is the cached match report for one (resume, job description)
// document pair. At most one row exists per pair.
type Analysis struct {
	ID               string      `json:"id"`
	ResumeDocumentID string      `json:"resume_document_id"`
	JobDocumentID    string      `json:"job_document_id"`
	Score            float64     `json:"score"`
	Result           MatchReport `json:"result"`
	ProviderName     string      `json:"provider_name"`
	ProviderModel    string      `json:"provider_model"`
	ProcessingTime   float64     `json:"processing_time"`
	Ctime            int64       `json:"ctime"`
	LastAccessTime   int64       `json:"last_access_time"`
	AccessCount      int64       `json:"access_count"`
}

type AnalysisSummary struct {
	ID               string  `json:"id"`
	Score            float64 `json:"score"`
	ResumeFilename   string  `json:"resume_filename"`
	JobFilename      string  `json:"job_description_filename"`
	ResumeDocumentID string  `json:"resume_document_id"`
	JobDocumentID    string  `json:"job_document_id"`
	AccessCount      int64   `json:"access_count"`
	Ctime            int64   `json:"ctime"`
	LastAccessTime   int64   `json:"last_access_time"`
}

type Origin string

const (
	OriginCached   Origin = "cached"
	OriginFresh    Origin = "fresh"
	OriginDegraded Origin = "degraded"
)

// MatchResult is what a comparison hands back to the API layer. Analysis is
// nil for degraded results, which are never persisted.
type MatchResult struct {
	Origin           Origin       `json:"origin"`
	Report           *MatchReport `json:"result"`
	Analysis         *Analysis    `json:"-"`
	AnalysisID       string       `json:"analysis_id,omitempty"`
	ResumeDocumentID string       `json:"resume_document_id"`
	JobDocumentID    string       `json:"job_document_id"`
	Score            float64      `json:"score"`
	ProcessingTime   float64      `json:"processing_time"`
}
