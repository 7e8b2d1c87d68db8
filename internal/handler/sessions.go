package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/psds-microservice/tracker-service/internal/errs"
	"github.com/psds-microservice/tracker-service/internal/model"
	"github.com/psds-microservice/tracker-service/internal/service"
	"github.com/psds-microservice/tracker-service/internal/tracker"
)

const maxWait = 30 * time.Second

type SessionHandler struct {
	app *service.TrackerApp
}

func NewSessionHandler(app *service.TrackerApp) *SessionHandler {
	return &SessionHandler{app: app}
}

type openSessionRequest struct {
	Template       string `json:"template" binding:"required"`
	SourceTicketID int64  `json:"source_ticket_id"`
}

func (h *SessionHandler) Open(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	s, err := h.app.OpenSession(c.Request.Context(), req.Template, req.SourceTicketID)
	if err != nil {
		writeError(c, err)
		return
	}
	if waitRequested(c) {
		h.wait(c, s)
	}
	c.JSON(http.StatusCreated, h.app.View(s))
}

func (h *SessionHandler) session(c *gin.Context) (*service.Session, bool) {
	s, err := h.app.Session(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return s, true
}

func waitRequested(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.Query("wait"))
	return v
}

// wait ждёт заполнения из контекста или дедлайна запроса.
func (h *SessionHandler) wait(c *gin.Context, s *service.Session) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), maxWait)
	defer cancel()
	_ = s.WaitReady(ctx)
}

// Get возвращает сессию; с ?wait=true сначала ждёт заполнения.
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if waitRequested(c) {
		h.wait(c, s)
	}
	c.JSON(http.StatusOK, h.app.View(s))
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.app.CloseSession(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setFieldsRequest struct {
	Fields map[string]interface{} `json:"fields" binding:"required"`
}

// fieldText превращает JSON-значение в ввод формы: список становится
// выбором через запятую, bool становится Yes/No.
func fieldText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func (h *SessionHandler) SetFields(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req setFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	values := make(map[string]string, len(req.Fields))
	for k, v := range req.Fields {
		values[k] = fieldText(v)
	}
	if err := h.app.SetFields(s, values); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.View(s))
}

type setVersionRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// SetVersion вводит своё значение в список с вариантом "Other".
func (h *SessionHandler) SetVersion(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req setVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if err := h.app.SetCustomValue(s, req.Field, req.Value); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.View(s))
}

func (h *SessionHandler) Validate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	subject := s.Tracker.Form.Value(tracker.FieldFormattedSubject)
	c.JSON(http.StatusOK, gin.H{
		"fields":  h.app.Validate(s),
		"subject": tracker.ApplyTemplateRules(subject, s.Template().Name),
	})
}

func (h *SessionHandler) Demo(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	n, err := h.app.FillDemo(s)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filled": n, "session": h.app.View(s)})
}

// QueueAttachment ставит файл в очередь, он уйдёт заметкой после создания тикета.
func (h *SessionHandler) QueueAttachment(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var a model.Attachment
	if !bindUpload(c, &a) {
		return
	}
	if a.Name == "" || a.Content == "" {
		writeError(c, fmt.Errorf("%w: name and content are required", errs.ErrInvalidUpload))
		return
	}
	if _, err := base64.StdEncoding.DecodeString(a.Content); err != nil {
		writeError(c, fmt.Errorf("%w: content is not base64", errs.ErrInvalidUpload))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"queued": s.QueueAttachment(a)})
}

// Submit создаёт тикет, при успехе сессия закрывается.
func (h *SessionHandler) Submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	res, err := h.app.CreateTicket(c.Request.Context(), s)
	if err != nil {
		writeError(c, err)
		return
	}
	_ = h.app.CloseSession(s.ID)
	c.JSON(http.StatusCreated, res)
}

// Associations: тикеты, связанные с тикетом трекера.
func (h *SessionHandler) Associations(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return
	}
	sum, err := h.app.Associations(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
