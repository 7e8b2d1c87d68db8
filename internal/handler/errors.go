package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psds-microservice/tracker-service/internal/errs"
	"github.com/psds-microservice/tracker-service/internal/sdk"
	"github.com/psds-microservice/tracker-service/internal/tracker"
)

// statusOf: ошибки сервиса в HTTP-коды.
func statusOf(err error) int {
	var missing *errs.MissingFieldError
	var submission *errs.SubmissionError
	var apiErr *sdk.APIError
	switch {
	case errors.Is(err, errs.ErrTemplateNotFound), errors.Is(err, errs.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrUnknownField), errors.Is(err, tracker.ErrReadOnlyField),
		errors.Is(err, tracker.ErrUnknownFormat), errors.Is(err, errs.ErrInvalidUpload),
		errors.As(err, &missing):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrDemoDisabled):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrSubmitInProgress):
		return http.StatusConflict
	case errors.Is(err, errs.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &submission), errors.As(err, &apiErr),
		errors.Is(err, errs.ErrSourceTicket), errors.Is(err, errs.ErrMissingIParam):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	body := gin.H{"error": err.Error()}
	var missing *errs.MissingFieldError
	if errors.As(err, &missing) {
		body["field"] = missing.Field
	}
	var submission *errs.SubmissionError
	if errors.As(err, &submission) && submission.Status != 0 {
		body["upstream_status"] = submission.Status
	}
	if status == http.StatusInternalServerError {
		log.Printf("handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
