package service

import (
	"bytes"
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/xxxsen/resumatch/internal/ai"
	"github.com/xxxsen/resumatch/internal/extract"
	"github.com/xxxsen/resumatch/internal/filestore"
	"github.com/xxxsen/resumatch/internal/model"
)

// IMatcher produces a match report for a resume and a job description.
// Errors mean no report could be obtained after the matcher's own retries.
type IMatcher interface {
	Analyze(ctx context.Context, resumeText, jobText string) (*model.MatchReport, error)
	ProviderName() string
	ModelName() string
}

type MatchingService struct {
	extractor extract.IExtractor
	docs      *DocumentService
	cache     *AnalysisCache
	matcher   IMatcher
	archive   filestore.Store
	flights   *singleflight.Group
	now       func() time.Time
	// onFlight runs right before a request joins the in-process flight.
	onFlight func()
}

type MatchingOptions struct {
	// Archive keeps the original uploads; nil disables archiving.
	Archive filestore.Store
	// SingleFlight coalesces concurrent provider calls for the same pair
	// inside this process.
	SingleFlight bool
}

func NewMatchingService(extractor extract.IExtractor, docs *DocumentService, cache *AnalysisCache, matcher IMatcher, opts MatchingOptions) *MatchingService {
	s := &MatchingService{
		extractor: extractor,
		docs:      docs,
		cache:     cache,
		matcher:   matcher,
		archive:   opts.Archive,
		now:       time.Now,
	}
	if opts.SingleFlight {
		s.flights = &singleflight.Group{}
	}
	return s
}

type UploadFile struct {
	Filename string
	Data     []byte
}

type CompareInput struct {
	OwnerID string
	Resume  UploadFile
	Job     UploadFile
}

type CompareTextInput struct {
	OwnerID        string
	ResumeText     string
	JobText        string
	ResumeFilename string
	JobFilename    string
}

// Compare extracts both uploads and returns their match result, from the
// cache when the pair was analysed before.
func (s *MatchingService) Compare(ctx context.Context, in CompareInput) (*model.MatchResult, error) {
	resumeText, err := s.extractor.Extract(ctx, in.Resume.Data, in.Resume.Filename)
	if err != nil {
		return nil, err
	}
	jobText, err := s.extractor.Extract(ctx, in.Job.Data, in.Job.Filename)
	if err != nil {
		return nil, err
	}
	s.archiveUpload(ctx, in.Resume)
	s.archiveUpload(ctx, in.Job)
	return s.match(ctx,
		DocumentInput{
			OwnerID:  in.OwnerID,
			Kind:     model.DocumentKindResume,
			Text:     resumeText,
			Filename: in.Resume.Filename,
			MimeType: extract.MimeType(in.Resume.Filename),
			ByteSize: int64(len(in.Resume.Data)),
		},
		DocumentInput{
			OwnerID:  in.OwnerID,
			Kind:     model.DocumentKindJobDescription,
			Text:     jobText,
			Filename: in.Job.Filename,
			MimeType: extract.MimeType(in.Job.Filename),
			ByteSize: int64(len(in.Job.Data)),
		},
	)
}

// CompareText runs the same pipeline on already extracted text.
func (s *MatchingService) CompareText(ctx context.Context, in CompareTextInput) (*model.MatchResult, error) {
	return s.match(ctx,
		DocumentInput{
			OwnerID:  in.OwnerID,
			Kind:     model.DocumentKindResume,
			Text:     in.ResumeText,
			Filename: textFilename(in.ResumeFilename, "resume.txt"),
			MimeType: "text/plain",
			ByteSize: int64(len(in.ResumeText)),
		},
		DocumentInput{
			OwnerID:  in.OwnerID,
			Kind:     model.DocumentKindJobDescription,
			Text:     in.JobText,
			Filename: textFilename(in.JobFilename, "job_description.txt"),
			MimeType: "text/plain",
			ByteSize: int64(len(in.JobText)),
		},
	)
}

type flightResult struct {
	analysis *model.Analysis
	report   *model.MatchReport
	origin   model.Origin
	elapsed  float64
}

func (s *MatchingService) match(ctx context.Context, resumeIn, jobIn DocumentInput) (*model.MatchResult, error) {
	resumeDoc, err := s.docs.GetOrCreate(ctx, resumeIn)
	if err != nil {
		return nil, err
	}
	jobDoc, err := s.docs.GetOrCreate(ctx, jobIn)
	if err != nil {
		return nil, err
	}
	logger := logutil.GetLogger(ctx).With(
		zap.String("resume_document_id", resumeDoc.ID),
		zap.String("job_document_id", jobDoc.ID),
	)

	cached, ok, err := s.cache.Lookup(ctx, resumeDoc.ID, jobDoc.ID)
	if err != nil {
		return nil, err
	}
	if ok {
		logger.Info("analysis cache hit", zap.String("analysis_id", cached.ID), zap.Int64("access_count", cached.AccessCount))
		return newMatchResult(model.OriginCached, cached, &cached.Result, resumeDoc, jobDoc, cached.ProcessingTime), nil
	}
	logger.Info("analysis cache miss")

	if s.flights == nil {
		res, err := s.analyze(ctx, resumeDoc, jobDoc)
		if err != nil {
			return nil, err
		}
		return newMatchResult(res.origin, res.analysis, res.report, resumeDoc, jobDoc, res.elapsed), nil
	}

	leader := false
	key := resumeDoc.ID + ":" + jobDoc.ID
	if s.onFlight != nil {
		s.onFlight()
	}
	v, err, _ := s.flights.Do(key, func() (interface{}, error) {
		leader = true
		return s.analyze(context.WithoutCancel(ctx), resumeDoc, jobDoc)
	})
	if err != nil {
		return nil, err
	}
	res := v.(*flightResult)
	if leader || res.analysis == nil {
		return newMatchResult(res.origin, res.analysis, res.report, resumeDoc, jobDoc, res.elapsed), nil
	}
	// another request of this process ran the provider; count our access
	shared, ok, err := s.cache.Lookup(ctx, resumeDoc.ID, jobDoc.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		shared = res.analysis
	}
	logger.Debug("joined in-flight analysis", zap.String("analysis_id", shared.ID))
	return newMatchResult(model.OriginCached, shared, &shared.Result, resumeDoc, jobDoc, shared.ProcessingTime), nil
}

// analyze calls the provider and stores its report. Provider failures end
// in the degraded report, which is never stored.
func (s *MatchingService) analyze(ctx context.Context, resumeDoc, jobDoc *model.Document) (*flightResult, error) {
	logger := logutil.GetLogger(ctx).With(
		zap.String("resume_document_id", resumeDoc.ID),
		zap.String("job_document_id", jobDoc.ID),
	)
	start := s.now()
	report, err := s.matcher.Analyze(ctx, resumeDoc.Content, jobDoc.Content)
	elapsed := s.now().Sub(start).Seconds()
	if err != nil {
		logger.Warn("provider failed, returning degraded analysis",
			zap.String("provider", s.matcher.ProviderName()),
			zap.Float64("elapsed", elapsed),
			zap.Error(err),
		)
		return &flightResult{
			report:  ai.DegradedReport(resumeDoc.Content, jobDoc.Content),
			origin:  model.OriginDegraded,
			elapsed: elapsed,
		}, nil
	}
	stored, created, err := s.cache.Store(ctx, StoreInput{
		ResumeDocumentID: resumeDoc.ID,
		JobDocumentID:    jobDoc.ID,
		Report:           report,
		ProviderName:     s.matcher.ProviderName(),
		ProviderModel:    s.matcher.ModelName(),
		ProcessingTime:   elapsed,
	})
	if err != nil {
		return nil, err
	}
	origin := model.OriginFresh
	if !created {
		origin = model.OriginCached
	}
	logger.Info("analysis stored",
		zap.String("analysis_id", stored.ID),
		zap.Bool("created", created),
		zap.Float64("score", stored.Score),
		zap.Float64("elapsed", elapsed),
	)
	return &flightResult{analysis: stored, report: &stored.Result, origin: origin, elapsed: stored.ProcessingTime}, nil
}

// archiveUpload keeps the original bytes of an upload. Failures only log.
func (s *MatchingService) archiveUpload(ctx context.Context, f UploadFile) {
	if s.archive == nil || len(f.Data) == 0 {
		return
	}
	key := filestore.Key(f.Data, f.Filename)
	logger := logutil.GetLogger(ctx).With(zap.String("key", key), zap.String("store", s.archive.Type()))
	exists, err := s.archive.Exists(ctx, key)
	if err != nil {
		logger.Warn("check archived upload failed", zap.Error(err))
		return
	}
	if exists {
		return
	}
	if err := s.archive.Save(ctx, key, bytes.NewReader(f.Data), int64(len(f.Data))); err != nil {
		logger.Warn("archive upload failed", zap.Error(err))
		return
	}
	logger.Debug("upload archived", zap.Int("size", len(f.Data)))
}

func (s *MatchingService) History(ctx context.Context, ownerID string, limit uint) ([]model.AnalysisSummary, error) {
	return s.cache.History(ctx, ownerID, limit)
}

// GetAnalysis returns the analysis if ownerID uploaded its resume.
func (s *MatchingService) GetAnalysis(ctx context.Context, ownerID, id string) (*model.Analysis, error) {
	item, err := s.cache.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.docs.CheckAccess(ctx, item.ResumeDocumentID, ownerID); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *MatchingService) GetDocument(ctx context.Context, ownerID, id string) (*model.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.docs.CheckAccess(ctx, doc.ID, ownerID); err != nil {
		return nil, err
	}
	return doc, nil
}

func newMatchResult(origin model.Origin, analysis *model.Analysis, report *model.MatchReport, resumeDoc, jobDoc *model.Document, elapsed float64) *model.MatchResult {
	res := &model.MatchResult{
		Origin:           origin,
		Report:           report,
		Analysis:         analysis,
		ResumeDocumentID: resumeDoc.ID,
		JobDocumentID:    jobDoc.ID,
		Score:            report.OverallScore(),
		ProcessingTime:   elapsed,
	}
	if analysis != nil {
		res.AnalysisID = analysis.ID
		res.Score = analysis.Score
	}
	return res
}

func textFilename(name, def string) string {
	if name == "" {
		return def
	}
	return name
}
