package errs

import (
	"errors"
	"fmt"
)

var (
	ErrTemplateNotFound = errors.New("tracker template not found")
	ErrSessionNotFound  = errors.New("tracker session not found")
	ErrMissingIParam    = errors.New("installation parameter is not set")
	ErrSourceTicket     = errors.New("source ticket unavailable")
	ErrInvalidUpload    = errors.New("invalid attachment upload")
	ErrDemoDisabled     = errors.New("demo data is disabled")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrUploadTooLarge   = errors.New("attachment upload too large")
)

// SubmitPrefix начинает каждое сообщение об ошибке создания тикета.
const SubmitPrefix = "Failed to create ticket: "

// MissingFieldError: обязательное поле тикета пустое (email, subject, description).
type MissingFieldError struct {
	Field   string
	Message string
}

func (e *MissingFieldError) Error() string {
	if e.Message != "" {
		return SubmitPrefix + e.Message
	}
	return fmt.Sprintf("%s%s is required to create a ticket", SubmitPrefix, e.Field)
}

// SubmissionError: ошибка создания тикета, уже сведённая к одному сообщению для пользователя.
type SubmissionError struct {
	Message string
	Status  int
	Err     error
}

func (e *SubmissionError) Error() string {
	return SubmitPrefix + e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Submit добавляет SubmitPrefix к ошибке, если его ещё нет.
// errors.Is и errors.As продолжают видеть исходную ошибку.
func Submit(err error) error {
	if err == nil {
		return nil
	}
	var missing *MissingFieldError
	var se *SubmissionError
	if errors.As(err, &missing) || errors.As(err, &se) {
		return err
	}
	return fmt.Errorf("%s%w", SubmitPrefix, err)
}
