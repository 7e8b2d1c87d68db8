package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/psds-microservice/helpy/paths"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/psds-microservice/tracker-service/api"
	"github.com/psds-microservice/tracker-service/internal/handler"
)

const pathMetrics = "/metrics"

// Handlers: всё, что монтируется в роутер.
type Handlers struct {
	Templates   *handler.TemplateHandler
	Sessions    *handler.SessionHandler
	Attachments *handler.AttachmentHandler
	Readiness   handler.Readiness
	// UploadLimit: предел тела запросов с вложениями, 0 означает handler.DefaultUploadLimit.
	UploadLimit int64
}

func New(h Handlers) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(paths.PathHealth, handler.Health)
	r.GET(paths.PathReady, h.Readiness.Ready)
	r.GET(pathMetrics, gin.WrapH(promhttp.Handler()))
	r.GET(paths.PathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, paths.PathSwagger+"/") })
	r.GET(paths.PathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = paths.PathSwagger + "/index.html"
			c.Request.RequestURI = paths.PathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(paths.PathSwagger+"/openapi.json"))(c)
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/templates", h.Templates.List)
		v1.GET("/templates/:name", h.Templates.Get)
		v1.POST("/subject", h.Templates.Subject)

		v1.POST("/sessions", h.Sessions.Open)
		v1.GET("/sessions/:id", h.Sessions.Get)
		v1.DELETE("/sessions/:id", h.Sessions.Delete)
		v1.PATCH("/sessions/:id/fields", h.Sessions.SetFields)
		v1.POST("/sessions/:id/version", h.Sessions.SetVersion)
		v1.GET("/sessions/:id/validate", h.Sessions.Validate)
		v1.POST("/sessions/:id/demo", h.Sessions.Demo)
		v1.POST("/sessions/:id/attachments", handler.LimitBody(h.UploadLimit), h.Sessions.QueueAttachment)
		v1.POST("/sessions/:id/submit", h.Sessions.Submit)

		v1.GET("/tickets/:id/associations", h.Sessions.Associations)

		if h.Attachments != nil {
			v1.POST("/attachments/notes", handler.LimitBody(h.UploadLimit), h.Attachments.Note)
			v1.POST("/attachments/tickets", handler.LimitBody(h.UploadLimit), h.Attachments.Ticket)
		}
	}

	return r
}
