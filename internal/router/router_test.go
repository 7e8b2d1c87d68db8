package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/helpy/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psds-microservice/tracker-service/internal/handler"
	"github.com/psds-microservice/tracker-service/internal/sdk"
	"github.com/psds-microservice/tracker-service/internal/sdk/sdktest"
	"github.com/psds-microservice/tracker-service/internal/service"
	"github.com/psds-microservice/tracker-service/internal/tracker"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg, err := tracker.LoadRegistry()
	require.NoError(t, err)
	app, err := service.NewTrackerApp(service.Deps{
		Registry: reg,
		SDK:      sdktest.New().Client(sdk.StaticIParams{}),
	})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return New(Handlers{
		Templates: handler.NewTemplateHandler(app),
		Sessions:  handler.NewSessionHandler(app),
		Readiness: handler.Readiness{Templates: func() int { return len(reg.Names()) }},
	})
}

func TestRoutes(t *testing.T) {
	r := newRouter(t)
	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"health", http.MethodGet, paths.PathHealth, http.StatusOK},
		{"ready", http.MethodGet, paths.PathReady, http.StatusOK},
		{"metrics", http.MethodGet, pathMetrics, http.StatusOK},
		{"swagger redirect", http.MethodGet, paths.PathSwagger, http.StatusFound},
		{"openapi", http.MethodGet, paths.PathSwagger + "/openapi.json", http.StatusOK},
		{"templates", http.MethodGet, "/api/v1/templates", http.StatusOK},
		{"unknown session", http.MethodGet, "/api/v1/sessions/nope", http.StatusNotFound},
		{"uploads not mounted", http.MethodPost, "/api/v1/attachments/notes", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestOpenAPIDocument(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, paths.PathSwagger+"/openapi.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "/api/v1/sessions/{id}/submit")
}
