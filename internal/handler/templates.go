package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psds-microservice/tracker-service/internal/service"
	"github.com/psds-microservice/tracker-service/internal/tracker"
)

type TemplateHandler struct {
	app *service.TrackerApp
}

func NewTemplateHandler(app *service.TrackerApp) *TemplateHandler {
	return &TemplateHandler{app: app}
}

type templateSummary struct {
	Name        string                `json:"name"`
	Title       string                `json:"title"`
	Icon        string                `json:"icon,omitempty"`
	Description string                `json:"description"`
	Format      tracker.SubjectFormat `json:"format"`
}

func (h *TemplateHandler) List(c *gin.Context) {
	list := h.app.Registry().List()
	out := make([]templateSummary, 0, len(list))
	for _, t := range list {
		out = append(out, templateSummary{
			Name:        t.Name,
			Title:       t.Title,
			Icon:        t.Icon,
			Description: t.Description,
			Format:      t.Subject.Format,
		})
	}
	c.JSON(http.StatusOK, gin.H{"templates": out, "total": len(out)})
}

func (h *TemplateHandler) Get(c *gin.Context) {
	t, err := h.app.Registry().Get(c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"template": t,
		"rules":    tracker.TemplateRules(t.Name),
	})
}

type subjectRequest struct {
	Template string                 `json:"template"`
	Format   tracker.SubjectFormat  `json:"format"`
	Values   map[string]interface{} `json:"values"`
}

// Subject собирает тему без открытия сессии.
func (h *TemplateHandler) Subject(c *gin.Context) {
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	p, err := h.app.FormatSubject(req.Template, req.Format, req.Values)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
