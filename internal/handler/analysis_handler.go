package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/resumatch/internal/extract"
	"github.com/xxxsen/resumatch/internal/model"
	"github.com/xxxsen/resumatch/internal/pkg/errcode"
	"github.com/xxxsen/resumatch/internal/pkg/response"
	"github.com/xxxsen/resumatch/internal/service"
)

const (
	formResume = "resume"
	formJob    = "job_description"

	defaultHistoryLimit = 10
)

type Matcher interface {
	Compare(ctx context.Context, in service.CompareInput) (*model.MatchResult, error)
	CompareText(ctx context.Context, in service.CompareTextInput) (*model.MatchResult, error)
	History(ctx context.Context, ownerID string, limit uint) ([]model.AnalysisSummary, error)
	GetAnalysis(ctx context.Context, ownerID, id string) (*model.Analysis, error)
}

type Sweeper interface {
	Sweep(ctx context.Context, retentionDays int) (int64, error)
	RetentionDays() int
}

type AnalysisHandler struct {
	matcher       Matcher
	janitor       Sweeper
	maxUploadSize int64
}

func NewAnalysisHandler(matcher Matcher, janitor Sweeper, maxUploadSize int64) *AnalysisHandler {
	return &AnalysisHandler{matcher: matcher, janitor: janitor, maxUploadSize: maxUploadSize}
}

type compareTextRequest struct {
	ResumeText     string `json:"resume_text"`
	JobText        string `json:"job_description_text"`
	ResumeFilename string `json:"resume_filename"`
	JobFilename    string `json:"job_description_filename"`
}

type historyResponse struct {
	Items []model.AnalysisSummary `json:"items"`
}

type clearCacheResponse struct {
	Deleted       int64 `json:"deleted"`
	RetentionDays int   `json:"retention_days"`
}

func (h *AnalysisHandler) Compare(c *gin.Context) {
	if h.maxUploadSize > 0 {
		// two files plus multipart framing
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*h.maxUploadSize+1<<20)
	}
	resume, ok := h.readUpload(c, formResume)
	if !ok {
		return
	}
	job, ok := h.readUpload(c, formJob)
	if !ok {
		return
	}
	result, err := h.matcher.Compare(c.Request.Context(), service.CompareInput{
		OwnerID: getUserID(c),
		Resume:  resume,
		Job:     job,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *AnalysisHandler) readUpload(c *gin.Context, field string) (service.UploadFile, bool) {
	file, err := c.FormFile(field)
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, field+" file is required")
		return service.UploadFile{}, false
	}
	if msg, tooLarge := uploadTooLarge(field, file.Size, h.maxUploadSize); tooLarge {
		response.Error(c, errcode.ErrFileTooLarge, msg)
		return service.UploadFile{}, false
	}
	if !extract.Supported(file.Filename) {
		response.Error(c, errcode.ErrInvalidFile, field+" must be a pdf, docx, txt or md file")
		return service.UploadFile{}, false
	}
	data, err := readMultipartFile(file)
	if err != nil {
		logutil.GetLogger(c.Request.Context()).Warn("read upload failed", zap.String("field", field), zap.Error(err))
		response.Error(c, errcode.ErrUploadFailed, "failed to read "+field)
		return service.UploadFile{}, false
	}
	return service.UploadFile{Filename: file.Filename, Data: data}, true
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	opened, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer opened.Close()
	return io.ReadAll(opened)
}

func (h *AnalysisHandler) CompareText(c *gin.Context) {
	var req compareTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.matcher.CompareText(c.Request.Context(), service.CompareTextInput{
		OwnerID:        getUserID(c),
		ResumeText:     req.ResumeText,
		JobText:        req.JobText,
		ResumeFilename: req.ResumeFilename,
		JobFilename:    req.JobFilename,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *AnalysisHandler) History(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultHistoryLimit)
	if err != nil {
		handleError(c, err)
		return
	}
	items, err := h.matcher.History(c.Request.Context(), getUserID(c), uint(limit))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, historyResponse{Items: items})
}

func (h *AnalysisHandler) Get(c *gin.Context) {
	item, err := h.matcher.GetAnalysis(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, item)
}

func (h *AnalysisHandler) ClearCache(c *gin.Context) {
	days, err := queryInt(c, "days", 0)
	if err != nil {
		handleError(c, err)
		return
	}
	if days == 0 {
		days = h.janitor.RetentionDays()
	}
	deleted, err := h.janitor.Sweep(c.Request.Context(), days)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, clearCacheResponse{Deleted: deleted, RetentionDays: days})
}
