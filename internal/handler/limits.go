package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psds-microservice/tracker-service/internal/errs"
)

// DefaultUploadLimit: предел тела запроса с вложением (base64 в JSON).
const DefaultUploadLimit int64 = 32 << 20

// LimitBody обрезает тело запроса до n байт; n <= 0 означает DefaultUploadLimit.
func LimitBody(n int64) gin.HandlerFunc {
	if n <= 0 {
		n = DefaultUploadLimit
	}
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// bindUpload читает JSON тела загрузки. Пишет ответ сам и возвращает false при ошибке.
func bindUpload(c *gin.Context, v interface{}) bool {
	err := c.ShouldBindJSON(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(c, fmt.Errorf("%w: limit is %d bytes", errs.ErrUploadTooLarge, tooLarge.Limit))
		return false
	}
	badRequest(c, "invalid body")
	return false
}
