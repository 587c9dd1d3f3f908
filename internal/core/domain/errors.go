package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrValidation         = errors.New("invalid input")
	ErrInternalServer     = errors.New("internal server error")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// Application flow errors
var (
	ErrBatchClosed        = errors.New("batch is closed for applications")
	ErrDuplicateApplicant = errors.New("an application already exists for this applicant")
	ErrInvalidToken       = errors.New("invalid resumption token")
	ErrPreconditionFailed = errors.New("stage completion criteria not met")
	ErrApplicationLocked  = errors.New("application can no longer be modified")
)
