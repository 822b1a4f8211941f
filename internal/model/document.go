package model

type DocumentKind string

const (
	DocumentKindResume         DocumentKind = "resume"
	DocumentKindJobDescription DocumentKind = "job_description"
)

func (k DocumentKind) Valid() bool {
	return k == DocumentKindResume || k == DocumentKindJobDescription
}

// Document is the normalized text of one uploaded file. Content is never
// rewritten after the first insert.
type Document struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"owner_id"`
	ScopeOwner   string       `json:"-"`
	Kind         DocumentKind `json:"kind"`
	Fingerprint  string       `json:"fingerprint"`
	Filename     string       `json:"filename"`
	Content      string       `json:"content"`
	MimeType     string       `json:"mime_type"`
	ByteSize     int64        `json:"byte_size"`
	Ctime        int64        `json:"ctime"`
	LastUsedTime int64        `json:"last_used_time"`
}
