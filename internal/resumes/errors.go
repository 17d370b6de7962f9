package resumes

import "errors"

var (
	// ErrNotFound covers both missing résumés and résumés owned by someone else.
	ErrNotFound       = errors.New("resume not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrContentChanged = errors.New("resume content changed")
)
