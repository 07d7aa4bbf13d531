package domain

import "errors"

// Failure kinds returned by the service layer. The delivery layer maps each
// kind to an HTTP status with errors.Is, so wrapped errors must keep one of
// these sentinels in the chain.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrOutOfStock       = errors.New("out of stock")
	ErrAlreadyExists    = errors.New("already exists")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUploadFailed     = errors.New("asset upload failed")
	ErrStoreUnavailable = errors.New("store unavailable")
)
