package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrStoreUnavailable   = errors.New("identity store unavailable")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrTokenSignature     = errors.New("token signature invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrRefreshNotEligible = errors.New("token not yet within refresh window")
	ErrRefreshReplayed    = errors.New("token already refreshed")
	ErrUpstream           = errors.New("upstream service failure")
)
