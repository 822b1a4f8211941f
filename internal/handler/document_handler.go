package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/resumatch/internal/model"
	"github.com/xxxsen/resumatch/internal/pkg/response"
)

type DocumentReader interface {
	GetDocument(ctx context.Context, ownerID, id string) (*model.Document, error)
}

type DocumentHandler struct {
	docs DocumentReader
}

func NewDocumentHandler(docs DocumentReader) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.docs.GetDocument(c.Request.Context(), getUserID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, doc)
}
