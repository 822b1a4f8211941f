package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xxxsen/resumatch/internal/model"
	appErr "github.com/xxxsen/resumatch/internal/pkg/errors"
)

// memDocumentRepo enforces the (fingerprint, kind, scope_owner) unique key
// the way the postgres upsert does.
type memDocumentRepo struct {
	mu        sync.Mutex
	byID      map[string]*model.Document
	byKey     map[string]string
	uploaders map[string]struct{}
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{
		byID:      map[string]*model.Document{},
		byKey:     map[string]string{},
		uploaders: map[string]struct{}{},
	}
}

func (r *memDocumentRepo) Upsert(_ context.Context, doc *model.Document) (*model.Document, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := doc.Fingerprint + "|" + string(doc.Kind) + "|" + doc.ScopeOwner
	if id, ok := r.byKey[key]; ok {
		existing := r.byID[id]
		if doc.LastUsedTime > existing.LastUsedTime {
			existing.LastUsedTime = doc.LastUsedTime
		}
		cp := *existing
		return &cp, false, nil
	}
	cp := *doc
	r.byID[doc.ID] = &cp
	r.byKey[key] = doc.ID
	out := cp
	return &out, true, nil
}

func (r *memDocumentRepo) GetByID(_ context.Context, id string) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.byID[id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (r *memDocumentRepo) AddUploader(_ context.Context, documentID, ownerID string, _ int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[documentID]; !ok {
		return appErr.ErrNotFound
	}
	r.uploaders[documentID+"|"+ownerID] = struct{}{}
	return nil
}

func (r *memDocumentRepo) IsUploader(_ context.Context, documentID, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.uploaders[documentID+"|"+ownerID]
	return ok, nil
}

func (r *memDocumentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// memAnalysisRepo enforces the (resume_document_id, job_document_id) unique
// key the way the postgres insert-or-get does.
type memAnalysisRepo struct {
	mu     sync.Mutex
	docs   *memDocumentRepo
	byID   map[string]*model.Analysis
	byPair map[string]string
}

func newMemAnalysisRepo(docs *memDocumentRepo) *memAnalysisRepo {
	return &memAnalysisRepo{docs: docs, byID: map[string]*model.Analysis{}, byPair: map[string]string{}}
}

func pairKey(resumeID, jobID string) string {
	return resumeID + "|" + jobID
}

func (r *memAnalysisRepo) Touch(_ context.Context, resumeDocID, jobDocID string, now int64) (*model.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPair[pairKey(resumeDocID, jobDocID)]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	item := r.byID[id]
	item.AccessCount++
	if now > item.LastAccessTime {
		item.LastAccessTime = now
	}
	cp := *item
	return &cp, nil
}

func (r *memAnalysisRepo) InsertOrGet(_ context.Context, item *model.Analysis) (*model.Analysis, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := pairKey(item.ResumeDocumentID, item.JobDocumentID)
	if id, ok := r.byPair[key]; ok {
		existing := r.byID[id]
		existing.AccessCount++
		if item.LastAccessTime > existing.LastAccessTime {
			existing.LastAccessTime = item.LastAccessTime
		}
		cp := *existing
		return &cp, false, nil
	}
	cp := *item
	r.byID[item.ID] = &cp
	r.byPair[key] = item.ID
	out := cp
	return &out, true, nil
}

func (r *memAnalysisRepo) GetByID(_ context.Context, id string) (*model.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.byID[id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *memAnalysisRepo) ListByOwner(ctx context.Context, ownerID string, limit uint) ([]model.AnalysisSummary, error) {
	r.mu.Lock()
	items := make([]model.Analysis, 0, len(r.byID))
	for _, item := range r.byID {
		items = append(items, *item)
	}
	r.mu.Unlock()
	sort.Slice(items, func(i, j int) bool { return items[i].Ctime > items[j].Ctime })
	out := make([]model.AnalysisSummary, 0)
	for _, item := range items {
		uploaded, err := r.docs.IsUploader(ctx, item.ResumeDocumentID, ownerID)
		if err != nil || !uploaded {
			continue
		}
		resume, err := r.docs.GetByID(ctx, item.ResumeDocumentID)
		if err != nil {
			continue
		}
		job, err := r.docs.GetByID(ctx, item.JobDocumentID)
		if err != nil {
			continue
		}
		out = append(out, model.AnalysisSummary{
			ID:               item.ID,
			Score:            item.Score,
			ResumeFilename:   resume.Filename,
			JobFilename:      job.Filename,
			ResumeDocumentID: item.ResumeDocumentID,
			JobDocumentID:    item.JobDocumentID,
			AccessCount:      item.AccessCount,
			Ctime:            item.Ctime,
			LastAccessTime:   item.LastAccessTime,
		})
		if uint(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (r *memAnalysisRepo) DeleteBefore(_ context.Context, cutoff int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, item := range r.byID {
		if item.Ctime < cutoff {
			delete(r.byID, id)
			delete(r.byPair, pairKey(item.ResumeDocumentID, item.JobDocumentID))
			deleted++
		}
	}
	return deleted, nil
}

func (r *memAnalysisRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// fakeMatcher answers with score(call) for the n-th call (0 based), or
// fails with err. gate, when set, blocks every call until closed.
type fakeMatcher struct {
	mu    sync.Mutex
	calls int
	score func(call int) float64
	err   error
	gate  chan struct{}
}

func (m *fakeMatcher) Analyze(ctx context.Context, _, _ string) (*model.MatchReport, error) {
	m.mu.Lock()
	call := m.calls
	m.calls++
	m.mu.Unlock()
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	score := 77.0
	if m.score != nil {
		score = m.score(call)
	}
	return &model.MatchReport{
		OverallMatch:   &model.OverallMatch{Score: model.Float(score), Summary: "fit"},
		SkillsAnalysis: []model.SkillMatch{{Skill: "Go", Match: model.Float(79)}},
		Experience:     &model.SectionMatch{Match: model.Float(101)},
	}, nil
}

func (m *fakeMatcher) ProviderName() string { return "fake" }
func (m *fakeMatcher) ModelName() string    { return "fake-1" }

func (m *fakeMatcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// fakeClock advances by step on every read.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}
