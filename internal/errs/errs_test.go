package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmitPrefixesOnce(t *testing.T) {
	assert.Nil(t, Submit(nil))

	err := Submit(ErrSubmitInProgress)
	assert.Equal(t, "Failed to create ticket: submission already in progress", err.Error())
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	missing := &MissingFieldError{Field: "email", Message: "Requester email is required to create a ticket"}
	assert.Same(t, missing, Submit(missing))
	assert.Equal(t, "Failed to create ticket: Requester email is required to create a ticket", missing.Error())
	assert.Equal(t, "Failed to create ticket: subject is required to create a ticket", (&MissingFieldError{Field: "subject"}).Error())

	se := &SubmissionError{Message: "Invalid field: email", Err: errors.New("400")}
	assert.Same(t, se, Submit(se))
	assert.Equal(t, "Failed to create ticket: Invalid field: email", se.Error())
}
