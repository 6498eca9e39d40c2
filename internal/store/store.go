// Package store owns all persistence. Each aggregate gets its own store over
// a shared *sql.DB; multi-step domain operations run inside a single
// transaction so a failure partway leaves nothing behind.
package store

import "errors"

// Sentinel errors for business-rule failures. Handlers map these to HTTP
// status codes with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyReviewed    = errors.New("completion already reviewed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrOutOfStock         = errors.New("out of stock")
	ErrInsufficientPoints = errors.New("insufficient points")
)
