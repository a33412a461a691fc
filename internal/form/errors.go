package form

import "errors"

var (
	ErrImageNotFound   = errors.New("image not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidValue    = errors.New("invalid value")
)
