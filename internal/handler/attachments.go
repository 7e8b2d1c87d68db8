package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psds-microservice/tracker-service/internal/freshdesk"
)

// Uploads: серверные обработчики загрузки вложений (freshdesk.Client).
type Uploads interface {
	UploadAttachment(ctx context.Context, up freshdesk.NoteUpload) (*freshdesk.UploadResult, error)
	UploadTicketWithAttachments(ctx context.Context, up freshdesk.TicketUpload) (*freshdesk.UploadResult, error)
}

type AttachmentHandler struct {
	uploads Uploads
}

func NewAttachmentHandler(uploads Uploads) *AttachmentHandler {
	return &AttachmentHandler{uploads: uploads}
}

func (h *AttachmentHandler) Note(c *gin.Context) {
	var req freshdesk.NoteUpload
	if !bindUpload(c, &req) {
		return
	}
	res, err := h.uploads.UploadAttachment(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *AttachmentHandler) Ticket(c *gin.Context) {
	var req freshdesk.TicketUpload
	if !bindUpload(c, &req) {
		return
	}
	res, err := h.uploads.UploadTicketWithAttachments(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
