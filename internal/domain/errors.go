package domain

import "errors"

var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrGenerationFailed  = errors.New("caption generation failed")
	ErrTimeout           = errors.New("caption generation timed out")
	ErrImageLookupFailed = errors.New("image lookup failed")
	ErrUsageUnavailable  = errors.New("usage log unavailable")
)
